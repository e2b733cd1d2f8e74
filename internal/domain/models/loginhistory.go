// internal/domain/models/loginhistory.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginRecord captures a single completed login (both steps passed).
// Failed attempts are never recorded here; they go to the audit log.
// CreatedAt is indexed for recent-activity views.
type LoginRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"user_id" json:"user_id"`
	EmployeeID string             `bson:"employee_id" json:"employee_id"`
	IP         string             `bson:"ip" json:"ip"`
	UserAgent  string             `bson:"user_agent" json:"user_agent"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
