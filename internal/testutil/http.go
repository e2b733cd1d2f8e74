package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/stratapay/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID         string
	Name       string
	Email      string
	EmployeeID string
	Role       string
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:         primitive.NewObjectID().Hex(),
		Name:       "Test Admin",
		Email:      "admin@test.com",
		EmployeeID: "ADM-001",
		Role:       "admin",
	}
}

// EmployeeUser returns a TestUser with employee role.
func EmployeeUser() TestUser {
	return TestUser{
		ID:         primitive.NewObjectID().Hex(),
		Name:       "Test Employee",
		Email:      "employee@test.com",
		EmployeeID: "EMP-001",
		Role:       "employee",
	}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		EmployeeID: user.EmployeeID,
		Role:       user.Role,
	}
	return auth.WithTestUser(r, sessionUser)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates an HTTP request with a JSON body for testing.
func NewJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	body := r.Body.String()
	if !strings.Contains(body, expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
