// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"strings"

	userstore "github.com/dalemusser/stratapay/internal/app/store/users"
	"github.com/dalemusser/stratapay/internal/app/system/authutil"
	"github.com/dalemusser/stratapay/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error will abort startup and prevent the server from
// starting. The context will be cancelled if the process is asked to shut
// down while Startup is running; honor it in any long-running work.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// Seed admin user if configured
	if appCfg.SeedAdminEmail != "" {
		if err := ensureAdminUser(ctx, deps, appCfg, logger); err != nil {
			logger.Error("failed to seed admin user", zap.Error(err))
			return err
		}
	}

	return nil
}

// ensureAdminUser ensures an admin account exists with the configured email.
// An existing user is left untouched apart from a role promotion; a missing
// user is created with the configured employee ID and password.
func ensureAdminUser(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	email := strings.TrimSpace(appCfg.SeedAdminEmail)
	name := appCfg.SeedAdminName
	if name == "" {
		name = "Admin"
	}

	existing, err := users.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role == "admin" {
			logger.Debug("admin user already configured", zap.String("email", email))
			return nil
		}
		_, err = deps.MongoDatabase.Collection("users").UpdateByID(ctx, existing.ID,
			map[string]any{"$set": map[string]any{"role": "admin"}})
		if err != nil {
			return err
		}
		logger.Info("promoted existing user to admin",
			zap.String("email", email),
			zap.String("user_id", existing.ID.Hex()),
			zap.String("previous_role", existing.Role))
		return nil
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	if appCfg.SeedAdminEmployeeID == "" || appCfg.SeedAdminPassword == "" {
		logger.Warn("seed_admin_email set but seed_admin_employee_id or seed_admin_password missing; skipping admin creation",
			zap.String("email", email))
		return nil
	}
	if err := authutil.ValidatePassword(appCfg.SeedAdminPassword); err != nil {
		return err
	}

	hash, err := authutil.HashPassword(appCfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	created, err := users.Create(ctx, models.User{
		FullName:     name,
		Email:        email,
		EmployeeID:   strings.TrimSpace(appCfg.SeedAdminEmployeeID),
		PasswordHash: hash,
		Role:         "admin",
	})
	if err != nil {
		return err
	}

	logger.Info("created admin user",
		zap.String("email", email),
		zap.String("user_id", created.ID.Hex()))
	return nil
}
