// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/stratapay/internal/app/store/audit"
	loginstore "github.com/dalemusser/stratapay/internal/app/store/logins"
	userstore "github.com/dalemusser/stratapay/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
)

/*
EnsureAll is called at startup (and by test setup). Each store's
EnsureIndexes is idempotent. Errors are aggregated so any problem is
visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := userstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := loginstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "login_records: "+err.Error())
	}
	if err := audit.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "audit_logs: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New("index creation failed: " + strings.Join(problems, "; "))
	}
	return nil
}
