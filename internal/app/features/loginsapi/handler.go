// Package loginsapi provides the admin API over employee login records.
//
// Endpoints (admin only):
//   - GET    /api/employee-logins      - list recent logins (optional user_id, limit)
//   - DELETE /api/employee-logins/{id} - delete a login record
package loginsapi

import (
	"net/http"
	"strconv"

	loginstore "github.com/dalemusser/stratapay/internal/app/store/logins"
	"github.com/dalemusser/stratapay/internal/app/system/auditlog"
	"github.com/dalemusser/stratapay/internal/app/system/auth"
	"github.com/dalemusser/stratapay/internal/app/system/jsonutil"
	"github.com/dalemusser/stratapay/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultListLimit = 100

// Handler handles login-record admin requests.
type Handler struct {
	logins      *loginstore.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a loginsapi handler.
func NewHandler(db *mongo.Database, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		logins:      loginstore.New(db),
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// ListHandler handles GET /api/employee-logins.
// Query params: user_id (hex ObjectID, optional), limit (optional, default 100).
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultListLimit)
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			jsonutil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	var (
		records []models.LoginRecord
		err     error
	)
	if s := r.URL.Query().Get("user_id"); s != "" {
		oid, idErr := primitive.ObjectIDFromHex(s)
		if idErr != nil {
			jsonutil.BadRequest(w, "invalid user_id")
			return
		}
		records, err = h.logins.GetByUser(r.Context(), oid, limit)
	} else {
		records, err = h.logins.GetRecent(r.Context(), limit)
	}
	if err != nil {
		h.logger.Error("login record list failed", zap.Error(err))
		jsonutil.InternalError(w, "internal error")
		return
	}

	if records == nil {
		records = []models.LoginRecord{}
	}
	jsonutil.OK(w, map[string]any{"records": records})
}

// DeleteHandler handles DELETE /api/employee-logins/{id}.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		jsonutil.BadRequest(w, "invalid record id")
		return
	}

	deleted, err := h.logins.Delete(r.Context(), oid)
	if err != nil {
		h.logger.Error("login record delete failed", zap.Error(err))
		jsonutil.InternalError(w, "internal error")
		return
	}
	if deleted == 0 {
		jsonutil.NotFound(w, "login record not found")
		return
	}

	if u, ok := auth.CurrentUser(r); ok {
		h.auditLogger.LoginRecordDeleted(r.Context(), r, u.UserID(), id)
	}
	jsonutil.OK(w, map[string]string{"status": "deleted"})
}
