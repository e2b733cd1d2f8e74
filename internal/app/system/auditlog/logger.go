// internal/app/system/auditlog/logger.go
package auditlog

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - EmployeeID: the badge identifier confirmed in login step 2

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/stratapay/internal/app/store/audit"
	"github.com/dalemusser/stratapay/internal/app/system/network"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login steps, logout).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for admin action events (record deletions).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// LogAsync records an audit event on a detached goroutine with its own
// timeout. Used on the login success path, where audit writes must never
// block or fail the response.
func (l *Logger) LogAsync(event audit.Event) {
	if l == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.Log(ctx, event)
	}()
}

// --- Authentication Events ---

// LoginSuccess logs a completed two-step login.
func (l *Logger) LoginSuccess(r *http.Request, userID primitive.ObjectID, employeeID string) {
	l.LogAsync(audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        network.GetClientIP(r),
		UserAgent: network.GetUserAgent(r),
		Success:   true,
		Details: map[string]string{
			"employee_id": employeeID,
		},
	})
}

// LoginFailedUserNotFound logs a step-1 or step-2 failure where no account matched.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		IP:            network.GetClientIP(r),
		UserAgent:     network.GetUserAgent(r),
		Success:       false,
		FailureReason: "user not found",
	})
}

// LoginFailedWrongPassword logs a step-1 failure due to wrong password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        &userID,
		IP:            network.GetClientIP(r),
		UserAgent:     network.GetUserAgent(r),
		Success:       false,
		FailureReason: "wrong password",
	})
}

// LoginFailedProofRejected logs a step-2 failure due to a missing, expired,
// or tampered proof token.
func (l *Logger) LoginFailedProofRejected(ctx context.Context, r *http.Request) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedProofRejected,
		IP:            network.GetClientIP(r),
		UserAgent:     network.GetUserAgent(r),
		Success:       false,
		FailureReason: "proof token rejected",
	})
}

// LoginEmployeeIDMismatch logs a step-2 failure where the typed employee ID
// did not belong to the step-1 account.
func (l *Logger) LoginEmployeeIDMismatch(ctx context.Context, r *http.Request, userID primitive.ObjectID, attemptsLeft int) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginEmployeeIDMismatch,
		UserID:        &userID,
		IP:            network.GetClientIP(r),
		UserAgent:     network.GetUserAgent(r),
		Success:       false,
		FailureReason: "employee ID mismatch",
		Details: map[string]string{
			"attempts_left": strconv.Itoa(attemptsLeft),
		},
	})
}

// LoginLockedOut logs an attempt against a locked account (or the attempt
// that triggered the lock).
func (l *Logger) LoginLockedOut(ctx context.Context, r *http.Request, userID primitive.ObjectID, lockUntil time.Time) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginLockedOut,
		UserID:        &userID,
		IP:            network.GetClientIP(r),
		UserAgent:     network.GetUserAgent(r),
		Success:       false,
		FailureReason: "account locked",
		Details: map[string]string{
			"lock_until": lockUntil.UTC().Format(time.RFC3339),
		},
	})
}

// Logout logs a user logout.
// Accepts the string ID from SessionUser and converts it to an ObjectID.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var userID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}

	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		IP:        network.GetClientIP(r),
		UserAgent: network.GetUserAgent(r),
		Success:   true,
	})
}

// --- Admin Events ---

// LoginRecordDeleted logs an admin deleting a login record.
func (l *Logger) LoginRecordDeleted(ctx context.Context, r *http.Request, actorID primitive.ObjectID, recordID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventLoginRecordDeleted,
		ActorID:   &actorID,
		IP:        network.GetClientIP(r),
		UserAgent: network.GetUserAgent(r),
		Success:   true,
		Details: map[string]string{
			"record_id": recordID,
		},
	})
}

// AuditEntryDeleted logs an admin deleting an audit entry.
func (l *Logger) AuditEntryDeleted(ctx context.Context, r *http.Request, actorID primitive.ObjectID, entryID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAuditEntryDeleted,
		ActorID:   &actorID,
		IP:        network.GetClientIP(r),
		UserAgent: network.GetUserAgent(r),
		Success:   true,
		Details: map[string]string{
			"entry_id": entryID,
		},
	})
}
