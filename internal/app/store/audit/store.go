// internal/app/store/audit/store.go
package audit

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - EmployeeID: the badge identifier confirmed in login step 2

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Auth event types
const (
	EventLoginSuccess              = "login_success"
	EventLoginFailedUserNotFound   = "login_failed_user_not_found"
	EventLoginFailedWrongPassword  = "login_failed_wrong_password"
	EventLoginFailedProofRejected  = "login_failed_proof_rejected"
	EventLoginEmployeeIDMismatch   = "login_failed_employee_id_mismatch"
	EventLoginLockedOut            = "login_locked_out"
	EventLogout                    = "logout"
)

// Admin event types
const (
	EventLoginRecordDeleted = "login_record_deleted"
	EventAuditEntryDeleted  = "audit_entry_deleted"
)

// Event represents an audit event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	// Event classification
	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	// Who
	UserID  *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`   // affected user
	ActorID *primitive.ObjectID `bson:"actor_id,omitempty" json:"actor_id,omitempty"` // who performed action (for admin actions)

	// Context
	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`

	// Outcome
	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	// Additional details (varies by event type)
	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	UserID    *primitive.ObjectID
	Category  string
	EventType string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_logs")}
}

// EnsureIndexes creates indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Query by user (affected user)
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_user"),
		},
		// Query by event type
		{
			Keys:    bson.D{{Key: "event_type", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_event_type"),
		},
		// Time-based queries
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_created"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query retrieves audit events matching the given filter, latest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	query := buildQuery(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, buildQuery(filter))
}

// GetByUser retrieves recent audit events for a specific user.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{
		UserID: &userID,
		Limit:  limit,
	})
}

// Delete removes an audit event by ID.
// Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func buildQuery(filter QueryFilter) bson.M {
	query := bson.M{}

	if filter.UserID != nil {
		query["user_id"] = filter.UserID
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}

	if filter.StartTime != nil || filter.EndTime != nil {
		timeQuery := bson.M{}
		if filter.StartTime != nil {
			timeQuery["$gte"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			timeQuery["$lte"] = *filter.EndTime
		}
		query["created_at"] = timeQuery
	}

	return query
}
