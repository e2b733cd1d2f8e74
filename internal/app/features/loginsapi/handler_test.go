package loginsapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/stratapay/internal/app/store/audit"
	loginstore "github.com/dalemusser/stratapay/internal/app/store/logins"
	"github.com/dalemusser/stratapay/internal/app/system/auditlog"
	"github.com/dalemusser/stratapay/internal/app/system/auth"
	"github.com/dalemusser/stratapay/internal/app/system/token"
	"github.com/dalemusser/stratapay/internal/domain/models"
	"github.com/dalemusser/stratapay/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (http.Handler, *loginstore.Store, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	codec := token.New("logins-test-secret-0123456789ABCDEF", 5*time.Minute, 24*time.Hour)
	sessionMgr := auth.NewManager(codec, "", "", false, logger)
	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "db", Admin: "db"})

	h := NewHandler(db, auditLogger, logger)
	return Routes(h, sessionMgr), loginstore.New(db), db
}

func seedRecords(t *testing.T, store *loginstore.Store, userID primitive.ObjectID, n int) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	for i := 0; i < n; i++ {
		err := store.Create(ctx, models.LoginRecord{
			UserID:     userID.Hex(),
			EmployeeID: "EMP-001",
			IP:         "203.0.113.9",
		})
		if err != nil {
			t.Fatalf("seed record %d: %v", i, err)
		}
	}
}

func TestListRequiresAdmin(t *testing.T) {
	router, _, _ := newTestRouter(t)

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewRequest("GET", "/"))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("employee", func(t *testing.T) {
		r := testutil.NewAuthenticatedRequest("GET", "/", testutil.EmployeeUser())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})
}

func TestList(t *testing.T) {
	router, store, _ := newTestRouter(t)

	userID := primitive.NewObjectID()
	seedRecords(t, store, userID, 3)
	seedRecords(t, store, primitive.NewObjectID(), 2)

	t.Run("all recent", func(t *testing.T) {
		r := testutil.NewAuthenticatedRequest("GET", "/", testutil.AdminUser())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var out struct {
			Records []models.LoginRecord `json:"records"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(out.Records) != 5 {
			t.Errorf("got %d records, want 5", len(out.Records))
		}
	})

	t.Run("filtered by user", func(t *testing.T) {
		r := testutil.NewAuthenticatedRequest("GET", "/?user_id="+userID.Hex(), testutil.AdminUser())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var out struct {
			Records []models.LoginRecord `json:"records"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(out.Records) != 3 {
			t.Errorf("got %d records, want 3", len(out.Records))
		}
	})

	t.Run("bad user_id", func(t *testing.T) {
		r := testutil.NewAuthenticatedRequest("GET", "/?user_id=not-hex", testutil.AdminUser())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		r := testutil.NewAuthenticatedRequest("GET", "/?limit=-3", testutil.AdminUser())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestDelete(t *testing.T) {
	router, store, _ := newTestRouter(t)

	userID := primitive.NewObjectID()
	seedRecords(t, store, userID, 1)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	records, err := store.GetByUser(ctx, userID, 1)
	if err != nil || len(records) != 1 {
		t.Fatalf("GetByUser: %v (n=%d)", err, len(records))
	}
	recID := records[0].ID.Hex()

	t.Run("delete existing", func(t *testing.T) {
		r := testutil.NewAuthenticatedRequest("DELETE", "/"+recID, testutil.AdminUser())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		r := testutil.NewAuthenticatedRequest("DELETE", "/"+recID, testutil.AdminUser())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		r := testutil.NewAuthenticatedRequest("DELETE", "/not-hex", testutil.AdminUser())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}
