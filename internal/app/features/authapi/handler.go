// Package authapi implements the two-step login API.
//
// Endpoints:
//   - POST /api/auth/login/step1 - email + password, returns a proof token
//   - POST /api/auth/login/step2 - employee ID + proof token, returns a session token
//   - GET  /api/auth/me          - current user (session required)
//   - POST /api/auth/logout      - expire the session cookie
//
// Step 1 verifies the password. Step 2 confirms the employee ID belongs to
// the account that passed step 1; only step-2 employee-ID mismatches count
// toward the account lockout. Step-1 failures are audited but never touch
// the lockout counter, matching the portal's established policy (password
// guessing is gated only by the bcrypt comparison cost).
package authapi

import (
	"context"
	"net/http"
	"time"

	loginstore "github.com/dalemusser/stratapay/internal/app/store/logins"
	userstore "github.com/dalemusser/stratapay/internal/app/store/users"
	"github.com/dalemusser/stratapay/internal/app/system/auditlog"
	"github.com/dalemusser/stratapay/internal/app/system/auth"
	"github.com/dalemusser/stratapay/internal/app/system/authutil"
	"github.com/dalemusser/stratapay/internal/app/system/jsonutil"
	"github.com/dalemusser/stratapay/internal/app/system/lockhint"
	"github.com/dalemusser/stratapay/internal/app/system/lockout"
	"github.com/dalemusser/stratapay/internal/app/system/network"
	"github.com/dalemusser/stratapay/internal/app/system/token"
	"github.com/dalemusser/stratapay/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Client-facing messages. The credential errors are deliberately vague so
// responses cannot be used to probe which emails have accounts.
const (
	msgMissingCredentials = "email and password are required"
	msgMissingStep2Fields = "employee ID and proof token are required"
	msgInvalidCredentials = "invalid email or password"
	msgProofRejected      = "session expired, please login again"
	msgEmployeeIDMismatch = "employee ID does not match"
	msgAccountLocked      = "account locked due to multiple failed attempts"
)

// LockedRedirect is where clients should send a locked-out user.
const LockedRedirect = "/account-locked"

// Handler handles the login API requests.
type Handler struct {
	users       *userstore.Store
	logins      *loginstore.Store
	guard       *lockout.Guard
	codec       *token.Codec
	sessionMgr  *auth.Manager
	lockHints   *lockhint.Manager
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates an authapi handler.
func NewHandler(
	db *mongo.Database,
	codec *token.Codec,
	sessionMgr *auth.Manager,
	lockHints *lockhint.Manager,
	auditLogger *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	users := userstore.New(db)
	return &Handler{
		users:       users,
		logins:      loginstore.New(db),
		guard:       lockout.New(users, logger),
		codec:       codec,
		sessionMgr:  sessionMgr,
		lockHints:   lockHints,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Step1Handler handles POST /api/auth/login/step1.
//
// Request body: {"email": "...", "password": "..."}
// Response (200): {"proof_token": "..."}
//
// Unknown email and wrong password return the same 401 body. No lock state
// is read or written here, and no counter moves.
func (h *Handler) Step1Handler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, msgMissingCredentials)
		return
	}
	if in.Email == "" || in.Password == "" {
		jsonutil.BadRequest(w, msgMissingCredentials)
		return
	}

	u, err := h.users.GetByEmail(r.Context(), in.Email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.auditLogger.LoginFailedUserNotFound(r.Context(), r)
			jsonutil.Unauthorized(w, msgInvalidCredentials)
			return
		}
		h.logger.Error("step1 user lookup failed", zap.Error(err))
		jsonutil.InternalError(w, "internal error")
		return
	}

	if !authutil.CheckPassword(in.Password, u.PasswordHash) {
		h.auditLogger.LoginFailedWrongPassword(r.Context(), r, u.ID)
		jsonutil.Unauthorized(w, msgInvalidCredentials)
		return
	}

	proof, err := h.codec.IssueProof(u.Email)
	if err != nil {
		h.logger.Error("proof token issue failed", zap.Error(err))
		jsonutil.InternalError(w, "internal error")
		return
	}

	jsonutil.OK(w, map[string]string{"proof_token": proof})
}

// Step2Handler handles POST /api/auth/login/step2.
//
// Request body: {"employee_id": "...", "proof_token": "..."}
// Response (200): {"session_token": "...", "role": "..."}
//
// The proof token pins the request to the email verified in step 1. The
// employee ID must belong to that same account; an ID that exists but is
// attached to a different email is a mismatch, not a success.
func (h *Handler) Step2Handler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		EmployeeID string `json:"employee_id"`
		ProofToken string `json:"proof_token"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, msgMissingStep2Fields)
		return
	}
	if in.EmployeeID == "" || in.ProofToken == "" {
		jsonutil.BadRequest(w, msgMissingStep2Fields)
		return
	}

	email, err := h.codec.VerifyProof(in.ProofToken)
	if err != nil {
		h.auditLogger.LoginFailedProofRejected(r.Context(), r)
		jsonutil.Unauthorized(w, msgProofRejected)
		return
	}

	u, err := h.users.GetByEmployeeIDAndEmail(r.Context(), in.EmployeeID, email)
	switch {
	case err == nil:
		h.finishLogin(w, r, u)
	case err == mongo.ErrNoDocuments:
		h.handleMismatch(w, r, email)
	default:
		h.logger.Error("step2 user lookup failed", zap.Error(err))
		jsonutil.InternalError(w, "internal error")
	}
}

// finishLogin completes step 2 for the matched account: lock gate, state
// reset, session issue, and the fire-and-forget success records.
func (h *Handler) finishLogin(w http.ResponseWriter, r *http.Request, u *models.User) {
	allowed, lockedUntil, err := h.guard.CheckAllowed(r.Context(), u)
	if err != nil {
		h.logger.Error("lockout check failed", zap.Error(err))
		jsonutil.InternalError(w, "internal error")
		return
	}
	if !allowed {
		h.respondLocked(w, r, u, *lockedUntil)
		return
	}

	if err := h.guard.ClearOnSuccess(r.Context(), u); err != nil {
		h.logger.Error("lockout reset failed", zap.Error(err))
		jsonutil.InternalError(w, "internal error")
		return
	}

	session, err := h.codec.IssueSession(u.ID.Hex(), u.EmployeeID, u.Role)
	if err != nil {
		h.logger.Error("session token issue failed", zap.Error(err))
		jsonutil.InternalError(w, "internal error")
		return
	}

	h.sessionMgr.SetSessionCookie(w, session)
	h.lockHints.Clear(w)

	// Success bookkeeping is fire-and-forget: the login must not block on,
	// or fail because of, the audit trail. Request values are captured
	// before the goroutine since r is dead once the handler returns.
	rec := models.LoginRecord{
		UserID:     u.ID.Hex(),
		EmployeeID: u.EmployeeID,
		IP:         network.GetClientIP(r),
		UserAgent:  network.GetUserAgent(r),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.logins.Create(ctx, rec); err != nil {
			h.logger.Warn("login record write failed",
				zap.String("user_id", rec.UserID),
				zap.Error(err))
		}
	}()
	h.auditLogger.LoginSuccess(r, u.ID, u.EmployeeID)

	jsonutil.OK(w, map[string]string{
		"session_token": session,
		"role":          u.Role,
	})
}

// handleMismatch runs when the employee ID does not pair with the proven
// email. The lock gate applies here too: a wrong ID during an active lock
// is refused without moving the counter, and an expired lock heals before
// the new failure is recorded.
func (h *Handler) handleMismatch(w http.ResponseWriter, r *http.Request, email string) {
	u, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// The proven account vanished between steps.
			h.auditLogger.LoginFailedUserNotFound(r.Context(), r)
			jsonutil.Unauthorized(w, msgInvalidCredentials)
			return
		}
		h.logger.Error("step2 email lookup failed", zap.Error(err))
		jsonutil.InternalError(w, "internal error")
		return
	}

	allowed, lockedUntil, err := h.guard.CheckAllowed(r.Context(), u)
	if err != nil {
		h.logger.Error("lockout check failed", zap.Error(err))
		jsonutil.InternalError(w, "internal error")
		return
	}
	if !allowed {
		h.respondLocked(w, r, u, *lockedUntil)
		return
	}

	lockedOut, until, attemptsLeft, err := h.guard.RecordFailure(r.Context(), u)
	if err != nil {
		h.logger.Error("lockout record failed", zap.Error(err))
		jsonutil.InternalError(w, "internal error")
		return
	}
	if lockedOut {
		h.respondLocked(w, r, u, *until)
		return
	}

	h.auditLogger.LoginEmployeeIDMismatch(r.Context(), r, u.ID, attemptsLeft)
	jsonutil.JSON(w, http.StatusUnauthorized, map[string]any{
		"error":         msgEmployeeIDMismatch,
		"attempts_left": attemptsLeft,
	})
}

// respondLocked writes the 403 locked response and the advisory hint cookie.
func (h *Handler) respondLocked(w http.ResponseWriter, r *http.Request, u *models.User, lockUntil time.Time) {
	h.lockHints.Set(w, lockhint.Hint{
		Email:     u.Email,
		LockUntil: lockUntil,
	})
	h.auditLogger.LoginLockedOut(r.Context(), r, u.ID, lockUntil)
	jsonutil.JSON(w, http.StatusForbidden, map[string]any{
		"error":      msgAccountLocked,
		"lock_until": lockUntil.UTC().Format(time.RFC3339),
		"redirect":   LockedRedirect,
	})
}

// MeHandler handles GET /api/auth/me.
// The session middleware has already fetched fresh user data; a deleted
// account never reaches this point.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "unauthorized")
		return
	}
	jsonutil.OK(w, map[string]string{
		"id":          u.ID,
		"full_name":   u.Name,
		"email":       u.Email,
		"employee_id": u.EmployeeID,
		"role":        u.Role,
	})
}

// LogoutHandler handles POST /api/auth/logout.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.auditLogger.Logout(r.Context(), r, u.ID)
	}
	h.sessionMgr.ClearSessionCookie(w)
	jsonutil.OK(w, map[string]string{"status": "logged out"})
}
