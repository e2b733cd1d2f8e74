package loginsapi

import (
	"net/http"

	"github.com/dalemusser/stratapay/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the login-record admin endpoints.
// All routes require the admin role.
func Routes(h *Handler, sessionMgr *auth.Manager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireRole("admin"))

	r.Get("/", h.ListHandler)
	r.Delete("/{id}", h.DeleteHandler)

	return r
}
