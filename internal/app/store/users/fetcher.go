// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	"github.com/dalemusser/stratapay/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Fetcher adapts the user store to the auth.UserFetcher interface so the
// session middleware can load fresh user data on each request.
type Fetcher struct {
	store  *Store
	logger *zap.Logger
}

// NewFetcher creates a Fetcher backed by the users collection.
func NewFetcher(db *mongo.Database, logger *zap.Logger) *Fetcher {
	return &Fetcher{store: New(db), logger: logger}
}

// FetchUser retrieves a user by hex ID. Returns nil if the ID is malformed,
// the user no longer exists, or the lookup fails; a nil result invalidates
// the session.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	u, err := f.store.GetByID(ctx, oid)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			f.logger.Warn("session user fetch failed",
				zap.String("user_id", userID),
				zap.Error(err))
		}
		return nil
	}

	return &auth.SessionUser{
		ID:         u.ID.Hex(),
		Name:       u.FullName,
		Email:      u.Email,
		EmployeeID: u.EmployeeID,
		Role:       u.Role,
	}
}
