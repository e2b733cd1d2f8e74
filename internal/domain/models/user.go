// internal/domain/models/user.go
package models

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Email: the address the user types in login step 1 (stored and matched exactly)
//   - EmployeeID: the badge identifier the user types in login step 2

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an employee account.
//
// Auth fields:
//   - Email: step-1 credential lookup key (unique, matched byte-for-byte as stored)
//   - EmployeeID: step-2 verification key (unique)
//   - PasswordHash: bcrypt hash, never serialized to JSON
//
// Lockout fields:
//   - FailedAttempts counts step-2 employee-ID mismatches only; it resets to
//     zero on successful login or when an expired lock is observed.
//   - IsLocked + LockUntil describe an active lock. A lock past its LockUntil
//     is stale and is cleared lazily the next time the account is checked.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	Email      string             `bson:"email" json:"email"`
	EmployeeID string             `bson:"employee_id" json:"employee_id"`

	PasswordHash string `bson:"password_hash" json:"-"`

	// Role is carried into the session token and checked by route middleware;
	// the login flow itself does not interpret it.
	Role string `bson:"role" json:"role"`

	// Lockout state
	FailedAttempts int        `bson:"failed_attempts" json:"-"`
	IsLocked       bool       `bson:"is_locked" json:"-"`
	LockUntil      *time.Time `bson:"lock_until,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
