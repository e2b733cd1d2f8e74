// internal/app/store/logins/loginstore.go
package loginstore

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - EmployeeID: the badge identifier confirmed in login step 2

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/stratapay/internal/app/system/network"
	"github.com/dalemusser/stratapay/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_records")}
}

// EnsureIndexes creates indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Per-user recent logins (latest-first)
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_logins_user_created"),
		},
		// Site-wide recent logins (latest-first)
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_logins_created"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a LoginRecord. If CreatedAt is zero, it's set to time.Now().UTC().
func (s *Store) Create(ctx context.Context, rec models.LoginRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.IP == "" {
		rec.IP = network.UnknownValue
	}
	if rec.UserAgent == "" {
		rec.UserAgent = network.UnknownValue
	}
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// CreateFrom builds a LoginRecord from the HTTP request and inserts it.
// Client IP comes from X-Forwarded-For → X-Real-IP → RemoteAddr; IP and
// user agent fall back to "Unknown" when absent.
func (s *Store) CreateFrom(ctx context.Context, r *http.Request, userID primitive.ObjectID, employeeID string) error {
	return s.Create(ctx, models.LoginRecord{
		UserID:     userID.Hex(),
		EmployeeID: employeeID,
		IP:         network.GetClientIP(r),
		UserAgent:  network.GetUserAgent(r),
		CreatedAt:  time.Now().UTC(),
	})
}

// GetByUser retrieves recent login records for a user, latest first.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.LoginRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"user_id": userID.Hex()}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.LoginRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetRecent retrieves the most recent login records across all users.
func (s *Store) GetRecent(ctx context.Context, limit int64) ([]models.LoginRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.LoginRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes a login record by ID.
// Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
