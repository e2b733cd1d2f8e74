// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	auditapifeature "github.com/dalemusser/stratapay/internal/app/features/auditapi"
	authapifeature "github.com/dalemusser/stratapay/internal/app/features/authapi"
	healthfeature "github.com/dalemusser/stratapay/internal/app/features/health"
	loginsapifeature "github.com/dalemusser/stratapay/internal/app/features/loginsapi"
	"github.com/dalemusser/stratapay/internal/app/store/audit"
	userstore "github.com/dalemusser/stratapay/internal/app/store/users"
	"github.com/dalemusser/stratapay/internal/app/system/auditlog"
	"github.com/dalemusser/stratapay/internal/app/system/auth"
	"github.com/dalemusser/stratapay/internal/app/system/lockhint"
	"github.com/dalemusser/stratapay/internal/app/system/token"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// This is a JSON API service: every route speaks JSON, session state lives
// in a signed JWT (Bearer header or cookie), and there is no CSRF layer
// because no state-changing route is form-posted.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"

	// Token codec shared by login and session middleware.
	codec := token.New(appCfg.TokenSecret, appCfg.ProofTokenExpiry, appCfg.SessionTokenExpiry)

	// Session manager verifies tokens and loads fresh user data per request,
	// so role changes and deleted accounts take effect immediately.
	sessionMgr := auth.NewManager(codec, appCfg.SessionCookieName, appCfg.CookieDomain, secure, logger)
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase, logger))

	// Lock-hint cookie manager (advisory; never consulted for enforcement).
	lockHints := lockhint.New(appCfg.TokenSecret, appCfg.CookieDomain, secure, logger)

	// Audit store and logger for security event tracking.
	auditStore := audit.New(deps.MongoDatabase)
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Session middleware: loads SessionUser into context when the request
	// carries a valid session token. Public routes simply have no session.
	r.Use(sessionMgr.LoadSessionUser)

	// ─────────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────────

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Two-step login API
	authHandler := authapifeature.NewHandler(
		deps.MongoDatabase,
		codec,
		sessionMgr,
		lockHints,
		auditLogger,
		logger,
	)
	r.Mount("/api/auth", authapifeature.Routes(authHandler, sessionMgr))

	// Employee login records (admin only)
	loginsHandler := loginsapifeature.NewHandler(deps.MongoDatabase, auditLogger, logger)
	r.Mount("/api/employee-logins", loginsapifeature.Routes(loginsHandler, sessionMgr))

	// Audit log (admin only)
	auditHandler := auditapifeature.NewHandler(deps.MongoDatabase, auditLogger, logger)
	r.Mount("/api/audit", auditapifeature.Routes(auditHandler, sessionMgr))

	return r, nil
}
