// internal/app/system/auth/auth.go
package auth

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - EmployeeID: the badge identifier confirmed in login step 2

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/stratapay/internal/app/system/jsonutil"
	"github.com/dalemusser/stratapay/internal/app/system/token"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultCookieName is the session cookie set by login step 2.
const DefaultCookieName = "token"

/*─────────────────────────────────────────────────────────────────────────────*
| Manager - injectable session management                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// Manager authenticates requests carrying a session token, either as a
// Bearer Authorization header or as the session cookie. Use NewManager
// to create an instance.
type Manager struct {
	codec        *token.Codec
	logger       *zap.Logger
	cookieName   string
	cookieDomain string
	secure       bool
	userFetcher  UserFetcher
}

// NewManager creates a Manager.
//
// Parameters:
//   - codec: the token codec that verifies session JWTs
//   - cookieName: session cookie name (defaults to "token" if empty)
//   - cookieDomain: cookie domain (empty means current host)
//   - secure: if true, cookies are marked Secure (HTTPS production)
//   - logger: zap logger for session diagnostics
func NewManager(codec *token.Codec, cookieName, cookieDomain string, secure bool, logger *zap.Logger) *Manager {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	logger.Info("session manager initialized",
		zap.Bool("secure", secure),
		zap.String("cookie", cookieName),
		zap.String("domain", cookieDomain))
	return &Manager{
		codec:        codec,
		logger:       logger,
		cookieName:   cookieName,
		cookieDomain: cookieDomain,
		secure:       secure,
	}
}

// CookieName returns the configured session cookie name.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// SetUserFetcher sets the UserFetcher used by LoadSessionUser to fetch fresh
// user data on each request. This must be called after database initialization.
func (m *Manager) SetUserFetcher(uf UserFetcher) {
	m.userFetcher = uf
}

/*─────────────────────────────────────────────────────────────────────────────*
| UserFetcher interface                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// UserFetcher fetches fresh user data from the database.
// Implementations should return nil if the user is not found or any other
// condition that should invalidate the session.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser represents the authenticated user in the request context.
// The identity comes from the verified session token; profile data is
// fetched fresh from the database on each request so role changes and
// deleted accounts take effect immediately.
type SessionUser struct {
	ID         string
	Name       string
	Email      string
	EmployeeID string
	Role       string
	Token      string // the raw session JWT this request authenticated with
}

// UserID returns the user's ID as an ObjectID.
// If the ID is invalid, returns a zero ObjectID.
func (u *SessionUser) UserID() primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag from the request context.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionUser returns middleware that injects the user into context when
// the request carries a valid session token. Requests with no token, or an
// invalid one, simply continue unauthenticated; route guards decide whether
// that is acceptable.
func (m *Manager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := m.extractToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.codec.VerifySession(raw)
		if err != nil {
			m.logger.Debug("session token rejected",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr))
			next.ServeHTTP(w, r)
			return
		}

		if m.userFetcher != nil {
			u := m.userFetcher.FetchUser(r.Context(), claims.UserID)
			if u == nil {
				// Token is valid but the account is gone; treat as signed out.
				m.logger.Info("session invalidated: user not found",
					zap.String("user_id", claims.UserID),
					zap.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}
			u.Token = raw
			r = withUser(r, u)
		} else {
			// No UserFetcher configured: fall back to claim data.
			r = withUser(r, &SessionUser{
				ID:         claims.UserID,
				EmployeeID: claims.EmployeeID,
				Role:       claims.Role,
				Token:      raw,
			})
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn returns middleware that ensures there is a user in context.
func (m *Manager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		jsonutil.Unauthorized(w, "unauthorized")
	})
}

// RequireRole returns middleware that ensures there is a user with one of
// the allowed roles.
func (m *Manager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				jsonutil.Unauthorized(w, "unauthorized")
				return
			}
			if _, has := set[strings.ToLower(strings.TrimSpace(u.Role))]; !has {
				jsonutil.Forbidden(w, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session cookie                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// SetSessionCookie delivers the session token as an HttpOnly cookie so
// browser clients authenticate without handling the JWT in script.
func (m *Manager) SetSessionCookie(w http.ResponseWriter, sessionToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    sessionToken,
		Path:     "/",
		Domain:   m.cookieDomain,
		MaxAge:   int(m.codec.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie.
func (m *Manager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.cookieDomain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// extractToken pulls the session token from the Authorization header
// (Bearer scheme) or, failing that, from the session cookie.
func (m *Manager) extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if c, err := r.Cookie(m.cookieName); err == nil {
		return c.Value
	}
	return ""
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a SessionUser into the request context for testing.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}
