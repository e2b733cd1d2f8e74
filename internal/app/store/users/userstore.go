// internal/app/store/users/userstore.go
package userstore

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Email: the step-1 credential lookup key (unique, matched exactly as stored)
//   - EmployeeID: the step-2 verification key (unique)

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratapay/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateUser is returned when creating a user whose email or
	// employee_id collides with an existing account.
	ErrDuplicateUser = errors.New("a user with this email or employee ID already exists")

	errMissingEmail      = errors.New("email is required")
	errMissingEmployeeID = errors.New("employee ID is required")
	errMissingPassword   = errors.New("password hash is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the unique lookup indexes for the login flow.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_users_email"),
		},
		{
			Keys:    bson.D{{Key: "employee_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_users_employee_id"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by email, matched exactly as stored.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmployeeIDAndEmail looks up the user whose employee_id AND email both
// match. Step 2 uses this to confirm the typed employee ID belongs to the
// account that passed step 1. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmployeeIDAndEmail(ctx context.Context, employeeID, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{
		"employee_id": employeeID,
		"email":       email,
	}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. The caller supplies the bcrypt hash.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.Email == "" {
		return models.User{}, errMissingEmail
	}
	if u.EmployeeID == "" {
		return models.User{}, errMissingEmployeeID
	}
	if u.PasswordHash == "" {
		return models.User{}, errMissingPassword
	}

	u.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUser
		}
		return models.User{}, err
	}
	return u, nil
}

// IncrementFailedAttempts atomically bumps the failed-attempt counter and
// returns the post-increment count. The increment happens server-side in a
// single FindOneAndUpdate so concurrent failures each land exactly once.
func (s *Store) IncrementFailedAttempts(ctx context.Context, id primitive.ObjectID) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"failed_attempts": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		opts,
	).Decode(&u)
	if err != nil {
		return 0, err
	}
	return u.FailedAttempts, nil
}

// SetLock marks the account locked until the given time. One-shot $set, so
// concurrent lockers converge on the same final state.
func (s *Store) SetLock(ctx context.Context, id primitive.ObjectID, until time.Time) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"is_locked":  true,
			"lock_until": until,
			"updated_at": time.Now().UTC(),
		}},
	)
	return err
}

// ClearLock resets the full lockout state (counter, flag, and expiry) in a
// single update. Idempotent: clearing an already-clear account is a no-op.
func (s *Store) ClearLock(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"failed_attempts": 0,
			"is_locked":       false,
			"lock_until":      nil,
			"updated_at":      time.Now().UTC(),
		}},
	)
	return err
}

// Count returns the number of users matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
