package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/api/shared"
	"github.com/phrazzld/booking-api/internal/domain"
)

// Query parameters accepted by list endpoints.
const (
	pageParam  = "page"
	limitParam = "limit"
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrValidation, paramName)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", domain.ErrInvalidID, paramName)
	}
	return id, nil
}

// getPathInt64 extracts and parses a positive integer path parameter.
func getPathInt64(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %s", domain.ErrInvalidID, paramName)
	}
	return id, nil
}

// getPageRequest reads page and limit query parameters. Missing values take
// the defaults; non-numeric values are rejected.
func getPageRequest(r *http.Request) (domain.PageRequest, error) {
	var page domain.PageRequest
	q := r.URL.Query()

	for param, dst := range map[string]*int{pageParam: &page.Page, limitParam: &page.Limit} {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return domain.PageRequest{}, fmt.Errorf("%w: %s must be a positive integer", domain.ErrValidation, param)
		}
		*dst = n
	}
	return page.Normalize(), nil
}

// decodeAndValidate decodes the JSON body into v and validates it, writing
// a 400 response on failure. It reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		HandleAPIError(w, r, errors.Join(errInvalidRequestBody, err))
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err)
		return false
	}
	return true
}
