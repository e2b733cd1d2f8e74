// Package auditapi provides the admin API over audit events.
//
// Endpoints (admin only):
//   - GET    /api/audit      - list audit events (optional filters)
//   - DELETE /api/audit/{id} - delete an audit entry
package auditapi

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/stratapay/internal/app/store/audit"
	"github.com/dalemusser/stratapay/internal/app/system/auditlog"
	"github.com/dalemusser/stratapay/internal/app/system/auth"
	"github.com/dalemusser/stratapay/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles audit-log admin requests.
type Handler struct {
	store       *audit.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates an auditapi handler.
func NewHandler(db *mongo.Database, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		store:       audit.New(db),
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// ListHandler handles GET /api/audit.
// Query params: user_id, category, event_type, limit, offset (all optional).
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := audit.QueryFilter{
		Category:  q.Get("category"),
		EventType: q.Get("event_type"),
	}

	if s := q.Get("user_id"); s != "" {
		oid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			jsonutil.BadRequest(w, "invalid user_id")
			return
		}
		filter.UserID = &oid
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			jsonutil.BadRequest(w, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			jsonutil.BadRequest(w, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	events, err := h.store.Query(r.Context(), filter)
	if err != nil {
		h.logger.Error("audit query failed", zap.Error(err))
		jsonutil.InternalError(w, "internal error")
		return
	}

	if events == nil {
		events = []audit.Event{}
	}
	jsonutil.OK(w, map[string]any{"events": events})
}

// DeleteHandler handles DELETE /api/audit/{id}.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		jsonutil.BadRequest(w, "invalid entry id")
		return
	}

	deleted, err := h.store.Delete(r.Context(), oid)
	if err != nil {
		h.logger.Error("audit entry delete failed", zap.Error(err))
		jsonutil.InternalError(w, "internal error")
		return
	}
	if deleted == 0 {
		jsonutil.NotFound(w, "audit entry not found")
		return
	}

	if u, ok := auth.CurrentUser(r); ok {
		h.auditLogger.AuditEntryDeleted(r.Context(), r, u.UserID(), id)
	}
	jsonutil.OK(w, map[string]string{"status": "deleted"})
}
