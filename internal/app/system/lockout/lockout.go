// internal/app/system/lockout/lockout.go

// Package lockout implements progressive account lockout for login step 2.
//
// The policy: only employee-ID mismatches in step 2 count as failures.
// Five failures lock the account for ten minutes. Locks expire lazily; an
// expired lock is cleared the next time the account is checked, and the
// attempt that observed it proceeds against a fresh counter.
package lockout

import (
	"context"
	"time"

	userstore "github.com/dalemusser/stratapay/internal/app/store/users"
	"github.com/dalemusser/stratapay/internal/domain/models"
	"go.uber.org/zap"
)

// Lockout policy. These are fixed policy values, not configuration.
const (
	MaxAttempts  = 5
	LockDuration = 10 * time.Minute
)

// Guard evaluates and mutates per-account lockout state. All state lives on
// the user document; every mutation is a single server-side update, so
// concurrent logins against the same account stay consistent.
type Guard struct {
	users  *userstore.Store
	logger *zap.Logger
}

// New creates a Guard over the users store.
func New(users *userstore.Store, logger *zap.Logger) *Guard {
	return &Guard{users: users, logger: logger}
}

// CheckAllowed reports whether the account may proceed with a login attempt.
//
// Three states:
//   - actively locked (lock_until in the future): not allowed, returns the expiry
//   - stale lock (lock_until passed): the lock and counter are cleared in the
//     store, the in-memory user is updated to match, and the attempt proceeds
//   - unlocked: allowed
//
// The stale-lock heal happens on observation, regardless of whether the
// attempt that triggered it ultimately succeeds.
func (g *Guard) CheckAllowed(ctx context.Context, u *models.User) (allowed bool, lockedUntil *time.Time, err error) {
	if !u.IsLocked {
		return true, nil, nil
	}

	if u.LockUntil != nil && time.Now().Before(*u.LockUntil) {
		return false, u.LockUntil, nil
	}

	// Lock has expired (or was set without an expiry, which we treat the
	// same way): clear it and let the attempt proceed with a fresh counter.
	if err := g.users.ClearLock(ctx, u.ID); err != nil {
		return false, nil, err
	}
	g.logger.Debug("expired lock cleared",
		zap.String("user_id", u.ID.Hex()))

	u.IsLocked = false
	u.LockUntil = nil
	u.FailedAttempts = 0
	return true, nil, nil
}

// RecordFailure registers an employee-ID mismatch. The counter increment is
// atomic; when the post-increment count reaches MaxAttempts the account is
// locked for LockDuration.
//
// Returns whether this failure locked the account, the lock expiry when it
// did, and the attempts remaining when it did not.
func (g *Guard) RecordFailure(ctx context.Context, u *models.User) (lockedOut bool, lockedUntil *time.Time, attemptsLeft int, err error) {
	count, err := g.users.IncrementFailedAttempts(ctx, u.ID)
	if err != nil {
		return false, nil, 0, err
	}

	if count >= MaxAttempts {
		until := time.Now().Add(LockDuration)
		if err := g.users.SetLock(ctx, u.ID, until); err != nil {
			return false, nil, 0, err
		}
		g.logger.Info("account locked after repeated employee ID mismatches",
			zap.String("user_id", u.ID.Hex()),
			zap.Int("failed_attempts", count),
			zap.Time("lock_until", until))
		return true, &until, 0, nil
	}

	return false, nil, MaxAttempts - count, nil
}

// ClearOnSuccess resets the lockout state after a fully successful login.
// One idempotent store update; calling it on an already-clean account
// changes nothing.
func (g *Guard) ClearOnSuccess(ctx context.Context, u *models.User) error {
	return g.users.ClearLock(ctx, u.ID)
}
