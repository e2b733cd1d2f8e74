// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
// Change this constant when forking stratapay for a new project.
const EnvVarPrefix = "STRATAPAY"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, token_secret, etc.
//   - Environment variables: STRATAPAY_MONGO_URI, STRATAPAY_TOKEN_SECRET, etc.
//   - Command-line flags: --mongo_uri, --token_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stratapay", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Token configuration
	{Name: "token_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "JWT signing key (must be strong in production)"},
	{Name: "proof_token_expiry", Default: "5m", Desc: "Step-1 proof token lifetime (e.g., 5m, 90s)"},
	{Name: "session_token_expiry", Default: "24h", Desc: "Session token lifetime (e.g., 24h, 8h)"},

	// Session cookie configuration
	{Name: "session_cookie_name", Default: "token", Desc: "Session cookie name"},
	{Name: "cookie_domain", Default: "", Desc: "Cookie domain (blank means current host)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Admin seeding configuration
	{Name: "seed_admin_email", Default: "", Desc: "Email of admin user to create on startup"},
	{Name: "seed_admin_employee_id", Default: "", Desc: "Employee ID of admin user to create on startup"},
	{Name: "seed_admin_name", Default: "Admin", Desc: "Name of admin user to create on startup"},
	{Name: "seed_admin_password", Default: "", Desc: "Initial password for the seeded admin user"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STRATAPAY_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		TokenSecret:        appValues.String("token_secret"),
		ProofTokenExpiry:   appValues.Duration("proof_token_expiry", 5*time.Minute),
		SessionTokenExpiry: appValues.Duration("session_token_expiry", 24*time.Hour),

		SessionCookieName: appValues.String("session_cookie_name"),
		CookieDomain:      appValues.String("cookie_domain"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		SeedAdminEmail:      appValues.String("seed_admin_email"),
		SeedAdminEmployeeID: appValues.String("seed_admin_employee_id"),
		SeedAdminName:       appValues.String("seed_admin_name"),
		SeedAdminPassword:   appValues.String("seed_admin_password"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	// In production, require a real signing key. In dev, warn but allow.
	weak := len(appCfg.TokenSecret) < 32 || isDefaultKey(appCfg.TokenSecret)
	if coreCfg.Env == "prod" {
		if weak {
			return fmt.Errorf("token_secret is too weak for production; provide 32+ random chars")
		}
	} else if weak {
		logger.Warn("token_secret is weak; 32+ random chars required in production",
			zap.Int("length", len(appCfg.TokenSecret)))
	}

	if appCfg.ProofTokenExpiry <= 0 {
		return fmt.Errorf("proof_token_expiry must be positive")
	}
	if appCfg.SessionTokenExpiry <= 0 {
		return fmt.Errorf("session_token_expiry must be positive")
	}

	return nil
}

// isDefaultKey checks if the signing key appears to be a default/placeholder value.
func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	patterns := []string{
		"dev-only",
		"change-me",
		"placeholder",
		"default",
		"example",
		"insecure",
		"test-key",
		"secret123",
		"password",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
