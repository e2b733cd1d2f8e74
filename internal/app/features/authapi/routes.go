package authapi

import (
	"net/http"

	"github.com/dalemusser/stratapay/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the login API endpoints.
//
// When mounted at /api/auth:
//   - POST /api/auth/login/step1 - email + password check (public)
//   - POST /api/auth/login/step2 - employee ID + proof token (public)
//   - GET  /api/auth/me          - current user (session required)
//   - POST /api/auth/logout      - expire the session cookie (session required)
//
// The session middleware (LoadSessionUser) is installed globally in
// bootstrap; only the signed-in guard is applied here.
func Routes(h *Handler, sessionMgr *auth.Manager) http.Handler {
	r := chi.NewRouter()

	r.Post("/login/step1", h.Step1Handler)
	r.Post("/login/step2", h.Step2Handler)

	r.Group(func(sr chi.Router) {
		sr.Use(sessionMgr.RequireSignedIn)
		sr.Get("/me", h.MeHandler)
		sr.Post("/logout", h.LogoutHandler)
	})

	return r
}
