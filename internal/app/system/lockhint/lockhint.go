// internal/app/system/lockhint/lockhint.go

// Package lockhint manages a signed cookie that tells well-behaved clients
// an account is locked and until when, so they can render the locked page
// without another round trip.
//
// The hint is advisory only. The server never reads it to skip lock
// enforcement; the user document remains the single source of truth, and a
// client that drops or forges the cookie still hits the 403 on its next
// attempt.
package lockhint

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// CookieName is the lock-hint cookie set on locked responses.
const CookieName = "stratapay_lock_hint"

// Hint is the payload carried by the cookie.
type Hint struct {
	Email     string    `json:"email"`
	LockUntil time.Time `json:"lock_until"`
}

// Manager signs and verifies lock-hint cookies.
type Manager struct {
	sc     *securecookie.SecureCookie
	domain string
	secure bool
	logger *zap.Logger
}

// New creates a Manager. The key should be the app's cookie signing key
// (32+ random chars in production).
func New(key, domain string, secure bool, logger *zap.Logger) *Manager {
	sc := securecookie.New([]byte(key), nil)
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &Manager{
		sc:     sc,
		domain: domain,
		secure: secure,
		logger: logger,
	}
}

// Set writes the hint cookie. The cookie expires with the lock, so a stale
// hint disappears on its own.
func (m *Manager) Set(w http.ResponseWriter, hint Hint) {
	maxAge := int(time.Until(hint.LockUntil).Seconds())
	if maxAge <= 0 {
		return
	}

	encoded, err := m.sc.Encode(CookieName, hint)
	if err != nil {
		// Advisory cookie: log and move on, the 403 response still carries
		// the lock details in its body.
		m.logger.Warn("failed to encode lock hint cookie", zap.Error(err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   maxAge,
		HttpOnly: false, // client script reads it to render the locked page
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Get reads and verifies the hint cookie from a request. Returns nil when
// the cookie is absent, tampered with, or describes a lock already expired.
func (m *Manager) Get(r *http.Request) *Hint {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	var hint Hint
	if err := m.sc.Decode(CookieName, c.Value, &hint); err != nil {
		return nil
	}
	if !time.Now().Before(hint.LockUntil) {
		return nil
	}
	return &hint
}

// Clear expires the hint cookie. Called after a successful login.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
