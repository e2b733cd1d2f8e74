package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/stratapay/internal/app/system/token"
	"go.uber.org/zap"
)

const testSecret = "test-secret-0123456789ABCDEF-0123456789"

// fakeFetcher returns a canned user for one ID and nil for everything else.
type fakeFetcher struct {
	id   string
	user *SessionUser
}

func (f *fakeFetcher) FetchUser(_ context.Context, userID string) *SessionUser {
	if f.user != nil && userID == f.id {
		u := *f.user
		return &u
	}
	return nil
}

func newTestManager(t *testing.T) (*Manager, *token.Codec) {
	t.Helper()
	codec := token.New(testSecret, 5*time.Minute, 24*time.Hour)
	mgr := NewManager(codec, "", "", false, zap.NewNop())
	mgr.SetUserFetcher(&fakeFetcher{
		id: "64b0c3f0a1b2c3d4e5f60718",
		user: &SessionUser{
			ID:         "64b0c3f0a1b2c3d4e5f60718",
			Name:       "Session Test",
			Email:      "session@test.com",
			EmployeeID: "EMP-500",
			Role:       "employee",
		},
	})
	return mgr, codec
}

// echoUser writes the context user's email, or "anonymous".
func echoUser(w http.ResponseWriter, r *http.Request) {
	if u, ok := CurrentUser(r); ok {
		w.Write([]byte(u.Email))
		return
	}
	w.Write([]byte("anonymous"))
}

func TestLoadSessionUserBearer(t *testing.T) {
	mgr, codec := newTestManager(t)

	sessionToken, err := codec.IssueSession("64b0c3f0a1b2c3d4e5f60718", "EMP-500", "employee")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	r := httptest.NewRequest("GET", "/me", nil)
	r.Header.Set("Authorization", "Bearer "+sessionToken)
	w := httptest.NewRecorder()
	mgr.LoadSessionUser(http.HandlerFunc(echoUser)).ServeHTTP(w, r)

	if got := w.Body.String(); got != "session@test.com" {
		t.Errorf("body = %q, want session@test.com", got)
	}
}

func TestLoadSessionUserCookie(t *testing.T) {
	mgr, codec := newTestManager(t)

	sessionToken, err := codec.IssueSession("64b0c3f0a1b2c3d4e5f60718", "EMP-500", "employee")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	r := httptest.NewRequest("GET", "/me", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: sessionToken})
	w := httptest.NewRecorder()
	mgr.LoadSessionUser(http.HandlerFunc(echoUser)).ServeHTTP(w, r)

	if got := w.Body.String(); got != "session@test.com" {
		t.Errorf("body = %q, want session@test.com", got)
	}
}

func TestLoadSessionUserInvalidToken(t *testing.T) {
	mgr, _ := newTestManager(t)

	cases := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no token", func(r *http.Request) {}},
		{"garbage bearer", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not.a.jwt")
		}},
		{"wrong signing key", func(r *http.Request) {
			other := token.New("other-secret-0123456789ABCDEF-012345", 5*time.Minute, 24*time.Hour)
			tok, err := other.IssueSession("64b0c3f0a1b2c3d4e5f60718", "EMP-500", "employee")
			if err != nil {
				t.Fatalf("IssueSession: %v", err)
			}
			r.Header.Set("Authorization", "Bearer "+tok)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/me", nil)
			tc.setup(r)
			w := httptest.NewRecorder()
			mgr.LoadSessionUser(http.HandlerFunc(echoUser)).ServeHTTP(w, r)
			if got := w.Body.String(); got != "anonymous" {
				t.Errorf("body = %q, want anonymous", got)
			}
		})
	}
}

func TestLoadSessionUserDeletedAccount(t *testing.T) {
	mgr, codec := newTestManager(t)

	// Valid token for an ID the fetcher does not know.
	sessionToken, err := codec.IssueSession("64b0c3f0a1b2c3d4e5f60799", "EMP-999", "employee")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	r := httptest.NewRequest("GET", "/me", nil)
	r.Header.Set("Authorization", "Bearer "+sessionToken)
	w := httptest.NewRecorder()
	mgr.LoadSessionUser(http.HandlerFunc(echoUser)).ServeHTTP(w, r)

	if got := w.Body.String(); got != "anonymous" {
		t.Errorf("body = %q, want anonymous", got)
	}
}

func TestRequireSignedIn(t *testing.T) {
	mgr, _ := newTestManager(t)
	handler := mgr.RequireSignedIn(http.HandlerFunc(echoUser))

	t.Run("unauthenticated", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/me", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/me", nil)
		r = WithTestUser(r, &SessionUser{ID: "x", Email: "in@test.com"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	mgr, _ := newTestManager(t)
	handler := mgr.RequireRole("admin")(http.HandlerFunc(echoUser))

	cases := []struct {
		name string
		user *SessionUser
		want int
	}{
		{"no user", nil, http.StatusUnauthorized},
		{"wrong role", &SessionUser{ID: "x", Role: "employee"}, http.StatusForbidden},
		{"admin", &SessionUser{ID: "x", Role: "admin"}, http.StatusOK},
		{"case-insensitive role", &SessionUser{ID: "x", Role: " Admin "}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/admin", nil)
			if tc.user != nil {
				r = WithTestUser(r, tc.user)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestSessionCookieLifecycle(t *testing.T) {
	mgr, _ := newTestManager(t)

	w := httptest.NewRecorder()
	mgr.SetSessionCookie(w, "tok-value")
	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != DefaultCookieName || c.Value != "tok-value" {
		t.Errorf("cookie = %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
	if c.MaxAge != int((24 * time.Hour).Seconds()) {
		t.Errorf("MaxAge = %d, want session TTL", c.MaxAge)
	}

	w = httptest.NewRecorder()
	mgr.ClearSessionCookie(w)
	cleared := w.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("clear cookie = %+v", cleared)
	}
}

func TestExtractTokenPrefersBearer(t *testing.T) {
	mgr, codec := newTestManager(t)

	bearerTok, err := codec.IssueSession("64b0c3f0a1b2c3d4e5f60718", "EMP-500", "employee")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	r := httptest.NewRequest("GET", "/me", nil)
	r.Header.Set("Authorization", "Bearer "+bearerTok)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "stale-cookie-token"})

	if got := mgr.extractToken(r); got != strings.TrimSpace(bearerTok) {
		t.Error("extractToken did not prefer the Authorization header")
	}
}
