package testutil

import (
	"testing"

	userstore "github.com/dalemusser/stratapay/internal/app/store/users"
	"github.com/dalemusser/stratapay/internal/app/system/authutil"
	"github.com/dalemusser/stratapay/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedUser inserts a user with a bcrypt-hashed password and returns the
// stored document. Fails the test on any error.
func SeedUser(t *testing.T, db *mongo.Database, email, employeeID, password, role string) models.User {
	t.Helper()

	hash, err := authutil.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	ctx, cancel := TestContext()
	defer cancel()

	u, err := userstore.New(db).Create(ctx, models.User{
		FullName:     "Test User",
		Email:        email,
		EmployeeID:   employeeID,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}
