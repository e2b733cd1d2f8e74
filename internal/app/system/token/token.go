// internal/app/system/token/token.go

// Package token issues and verifies the two JWTs used by the login flow:
//
//   - Proof token: returned by step 1 after a successful email/password
//     check. It binds the upcoming step-2 request to the verified email
//     and is short-lived (minutes). It grants no access on its own.
//   - Session token: returned by step 2 after the employee ID is
//     confirmed. It authenticates subsequent API requests.
//
// Both are HS256-signed with the same app secret. Verification failures
// are collapsed into a single sentinel per token kind so handlers cannot
// leak why a token was rejected.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidProof is returned for any unusable proof token:
	// bad signature, expired, malformed, or wrong claim shape.
	ErrInvalidProof = errors.New("invalid or expired proof token")
	// ErrInvalidSession is returned for any unusable session token.
	ErrInvalidSession = errors.New("invalid or expired session token")
)

// ProofClaims bind a step-1 success to an email address.
type ProofClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// SessionClaims identify an authenticated user for the session lifetime.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
}

// Codec signs and verifies proof and session tokens.
type Codec struct {
	secret     []byte
	proofTTL   time.Duration
	sessionTTL time.Duration
}

// New creates a Codec. proofTTL should be short (minutes); sessionTTL is
// the full login session lifetime (default 24h).
func New(secret string, proofTTL, sessionTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		proofTTL:   proofTTL,
		sessionTTL: sessionTTL,
	}
}

// SessionTTL returns the configured session token lifetime.
// Used to set the session cookie MaxAge to match.
func (c *Codec) SessionTTL() time.Duration {
	return c.sessionTTL
}

// IssueProof signs a proof token for the given email.
func (c *Codec) IssueProof(email string) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, ProofClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.proofTTL)),
		},
		Email: email,
	})
	return tok.SignedString(c.secret)
}

// VerifyProof checks a proof token and returns the email it was issued for.
func (c *Codec) VerifyProof(tokenString string) (string, error) {
	claims := &ProofClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid || claims.Email == "" {
		return "", ErrInvalidProof
	}
	return claims.Email, nil
}

// IssueSession signs a session token for an authenticated user.
// The jti claim makes each issued session distinguishable in logs.
func (c *Codec) IssueSession(userID, employeeID, role string) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.sessionTTL)),
		},
		UserID:     userID,
		EmployeeID: employeeID,
		Role:       role,
	})
	return tok.SignedString(c.secret)
}

// VerifySession checks a session token and returns its claims.
func (c *Codec) VerifySession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid || claims.UserID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	return c.secret, nil
}
