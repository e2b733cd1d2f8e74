// The test package is external because testutil reaches this store through
// the shared index setup.
package loginstore_test

import (
	"net/http/httptest"
	"testing"
	"time"

	loginstore "github.com/dalemusser/stratapay/internal/app/store/logins"
	"github.com/dalemusser/stratapay/internal/domain/models"
	"github.com/dalemusser/stratapay/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateAndGetByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		err := store.Create(ctx, models.LoginRecord{
			UserID:     userID.Hex(),
			EmployeeID: "EMP-001",
			IP:         "203.0.113.9",
			UserAgent:  "test-agent",
			CreatedAt:  time.Now().UTC().Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}
	if err := store.Create(ctx, models.LoginRecord{
		UserID:     otherID.Hex(),
		EmployeeID: "EMP-002",
	}); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	records, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	// Latest first.
	for i := 1; i < len(records); i++ {
		if records[i].CreatedAt.After(records[i-1].CreatedAt) {
			t.Errorf("records out of order at %d", i)
		}
	}
}

func TestCreateDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if err := store.Create(ctx, models.LoginRecord{
		UserID:     userID.Hex(),
		EmployeeID: "EMP-003",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	records, err := store.GetByUser(ctx, userID, 1)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.IP != "Unknown" || rec.UserAgent != "Unknown" {
		t.Errorf("defaults = ip:%q ua:%q, want Unknown/Unknown", rec.IP, rec.UserAgent)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt not defaulted")
	}
}

func TestCreateFromRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	r := httptest.NewRequest("POST", "/api/auth/login/step2", nil)
	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	r.Header.Set("User-Agent", "stratapay-test/1.0")

	userID := primitive.NewObjectID()
	if err := store.CreateFrom(ctx, r, userID, "EMP-004"); err != nil {
		t.Fatalf("CreateFrom: %v", err)
	}

	records, err := store.GetByUser(ctx, userID, 1)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].IP != "198.51.100.7" {
		t.Errorf("ip = %q, want first X-Forwarded-For entry", records[0].IP)
	}
	if records[0].UserAgent != "stratapay-test/1.0" {
		t.Errorf("user agent = %q", records[0].UserAgent)
	}
	if records[0].EmployeeID != "EMP-004" {
		t.Errorf("employee id = %q", records[0].EmployeeID)
	}
}

func TestGetRecentAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 5; i++ {
		if err := store.Create(ctx, models.LoginRecord{
			UserID:     primitive.NewObjectID().Hex(),
			EmployeeID: "EMP-005",
		}); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	records, err := store.GetRecent(ctx, 3)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	deleted, err := store.Delete(ctx, records[0].ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	deleted, err = store.Delete(ctx, records[0].ID)
	if err != nil {
		t.Fatalf("Delete (repeat): %v", err)
	}
	if deleted != 0 {
		t.Errorf("repeat delete = %d, want 0", deleted)
	}
}
