package domain

// Pagination defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest selects a 1-based page of a listing.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize fills defaults and clamps the limit.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// Offset is the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageInfo describes where a page sits in the full listing.
type PageInfo struct {
	Total        int `json:"total"`
	Count        int `json:"count"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
}

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T      `json:"items"`
	Pagination PageInfo `json:"pagination"`
}

// NewPage assembles a Page from the items of one page and the total count.
// req must already be normalized.
func NewPage[T any](items []T, total int, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if req.Limit > 0 {
		totalPages = (total + req.Limit - 1) / req.Limit
	}
	return Page[T]{
		Items: items,
		Pagination: PageInfo{
			Total:        total,
			Count:        len(items),
			ItemsPerPage: req.Limit,
			TotalPages:   totalPages,
			CurrentPage:  req.Page,
		},
	}
}
