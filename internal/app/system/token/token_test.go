package token

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "unit-test-signing-secret-0123456789"

func newTestCodec() *Codec {
	return New(testSecret, 5*time.Minute, 24*time.Hour)
}

func TestProofRoundTrip(t *testing.T) {
	c := newTestCodec()

	tok, err := c.IssueProof("jane@example.com")
	if err != nil {
		t.Fatalf("IssueProof: %v", err)
	}

	email, err := c.VerifyProof(tok)
	if err != nil {
		t.Fatalf("VerifyProof: %v", err)
	}
	if email != "jane@example.com" {
		t.Errorf("email = %q, want jane@example.com", email)
	}
}

func TestProofExpired(t *testing.T) {
	c := New(testSecret, -1*time.Minute, 24*time.Hour)

	tok, err := c.IssueProof("jane@example.com")
	if err != nil {
		t.Fatalf("IssueProof: %v", err)
	}

	if _, err := c.VerifyProof(tok); !errors.Is(err, ErrInvalidProof) {
		t.Errorf("VerifyProof(expired) = %v, want ErrInvalidProof", err)
	}
}

func TestProofWrongSecret(t *testing.T) {
	c := newTestCodec()
	other := New("a-completely-different-secret-value", 5*time.Minute, 24*time.Hour)

	tok, err := other.IssueProof("jane@example.com")
	if err != nil {
		t.Fatalf("IssueProof: %v", err)
	}

	if _, err := c.VerifyProof(tok); !errors.Is(err, ErrInvalidProof) {
		t.Errorf("VerifyProof(foreign signature) = %v, want ErrInvalidProof", err)
	}
}

func TestProofGarbage(t *testing.T) {
	c := newTestCodec()
	for _, tok := range []string{"", "not-a-jwt", "aaaa.bbbb.cccc"} {
		if _, err := c.VerifyProof(tok); !errors.Is(err, ErrInvalidProof) {
			t.Errorf("VerifyProof(%q) = %v, want ErrInvalidProof", tok, err)
		}
	}
}

func TestSessionRoundTrip(t *testing.T) {
	c := newTestCodec()

	tok, err := c.IssueSession("64f000000000000000000001", "EMP-42", "admin")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	claims, err := c.VerifySession(tok)
	if err != nil {
		t.Fatalf("VerifySession: %v", err)
	}
	if claims.UserID != "64f000000000000000000001" {
		t.Errorf("UserID = %q", claims.UserID)
	}
	if claims.EmployeeID != "EMP-42" {
		t.Errorf("EmployeeID = %q", claims.EmployeeID)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q", claims.Role)
	}
	if claims.ID == "" {
		t.Error("jti claim is empty")
	}
}

func TestSessionJTIUnique(t *testing.T) {
	c := newTestCodec()

	a, err := c.IssueSession("u1", "E1", "employee")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	b, err := c.IssueSession("u1", "E1", "employee")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	ca, _ := c.VerifySession(a)
	cb, _ := c.VerifySession(b)
	if ca.ID == cb.ID {
		t.Error("two sessions share the same jti")
	}
}

func TestSessionRejectsProofToken(t *testing.T) {
	// A proof token presented as a session token must not authenticate:
	// its claims carry no user_id.
	c := newTestCodec()

	proof, err := c.IssueProof("jane@example.com")
	if err != nil {
		t.Fatalf("IssueProof: %v", err)
	}

	if _, err := c.VerifySession(proof); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("VerifySession(proof token) = %v, want ErrInvalidSession", err)
	}
}

func TestSessionExpired(t *testing.T) {
	c := New(testSecret, 5*time.Minute, -1*time.Minute)

	tok, err := c.IssueSession("u1", "E1", "employee")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	if _, err := c.VerifySession(tok); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("VerifySession(expired) = %v, want ErrInvalidSession", err)
	}
}
