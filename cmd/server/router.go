package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/booking-api/internal/api"
	"github.com/phrazzld/booking-api/internal/api/middleware"
	"github.com/phrazzld/booking-api/internal/domain"
)

// route declares one protected endpoint and the permissions its caller's
// role must cover.
type route struct {
	method      string
	pattern     string
	handler     http.HandlerFunc
	permissions []domain.Permission
}

func perm(resource domain.Resource, actions ...domain.Action) []domain.Permission {
	return []domain.Permission{domain.NewPermission(resource, actions...)}
}

// protectedRoutes is the route table for every endpoint behind the
// authentication and authorization guards. Patterns are relative to /api.
func (app *application) protectedRoutes() []route {
	authHandler := api.NewAuthHandler(app.auth)
	users := api.NewUserHandler(app.users)
	roles := api.NewRoleHandler(app.roles)
	services := api.NewServiceHandler(app.catalog)

	const (
		u = domain.ResourceUsers
		r = domain.ResourceRoles
		s = domain.ResourceServices
	)

	return []route{
		{http.MethodGet, "/auth/profile", authHandler.Profile, perm(u, domain.ActionRead)},

		{http.MethodGet, "/users", users.List, perm(u, domain.ActionRead)},
		{http.MethodGet, "/users/archive", users.Archive, perm(u, domain.ActionAll)},
		{http.MethodGet, "/users/{id}", users.Get, perm(u, domain.ActionRead)},
		{http.MethodPost, "/users", users.Create, perm(u, domain.ActionCreate)},
		{http.MethodPut, "/users/{id}", users.Update, perm(u, domain.ActionWrite)},
		{http.MethodDelete, "/users/{id}", users.SoftDelete, perm(u, domain.ActionAll)},
		{http.MethodPut, "/users/{id}/restore", users.Restore, perm(u, domain.ActionAdmin)},
		{http.MethodDelete, "/users/{id}/delete", users.Delete, perm(u, domain.ActionAdmin)},

		{http.MethodGet, "/roles", roles.List, perm(r, domain.ActionRead)},
		{http.MethodPost, "/roles", roles.Create, perm(r, domain.ActionCreate)},
		{http.MethodGet, "/roles/{id}", roles.Get, perm(r, domain.ActionRead)},
		{http.MethodGet, "/roles/by-name/{name}", roles.GetByName, perm(r, domain.ActionRead)},

		{http.MethodGet, "/services", services.List, perm(s, domain.ActionRead)},
		{http.MethodGet, "/services/archive", services.Archive, perm(s, domain.ActionAll)},
		{http.MethodGet, "/services/{id}", services.Get, perm(s, domain.ActionRead)},
		{http.MethodPost, "/services", services.Create, perm(s, domain.ActionCreate)},
		{http.MethodPut, "/services/{id}", services.Update, perm(s, domain.ActionWrite)},
		{http.MethodDelete, "/services/{id}", services.SoftDelete, perm(s, domain.ActionAll)},
		{http.MethodPut, "/services/{id}/restore", services.Restore, perm(s, domain.ActionAdmin)},
		{http.MethodDelete, "/services/{id}/delete", services.Delete, perm(s, domain.ActionAdmin)},
	}
}

// setupRouter builds the HTTP handler: trace IDs and metrics on every
// request, public auth endpoints, then the guarded route table.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewTraceMiddleware(app.logger))
	r.Use(app.metrics.Instrument)

	authHandler := api.NewAuthHandler(app.auth)
	authn := middleware.NewAuthMiddleware(app.issuer, app.auth)
	authz := middleware.NewAuthorizeMiddleware(app.authorizer)

	login := http.Handler(http.HandlerFunc(authHandler.Login))
	if rl := app.config.RateLimit; rl.LoginPerSecond > 0 {
		trusted, err := middleware.ParseTrustedProxies(rl.TrustedProxies)
		if err != nil {
			app.logger.Warn("ignoring trusted proxies, keying login limit on peer address", "error", err)
			trusted = nil
		}
		limiter := middleware.NewRateLimiter(rl.LoginPerSecond, rl.LoginBurst, rl.TrackedClients, trusted...)
		login = limiter.Limit(login)
	}

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/auth/login", login)
		r.Post("/auth/refresh", authHandler.RefreshToken)
		r.Post("/auth/logout", authHandler.Logout)

		for _, rt := range app.protectedRoutes() {
			r.With(authn.Authenticate, authz.Require(rt.permissions...)).
				Method(rt.method, rt.pattern, rt.handler)
		}
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
