// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, CORS, and request limits. AppConfig is
// everything specific to this application.
//
// Note what is deliberately NOT here: the lockout threshold and lock
// duration. Those are fixed policy in the lockout package, not knobs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Token configuration
	TokenSecret        string        // HS256 signing key for proof/session JWTs and the lock-hint cookie (must be strong in production)
	ProofTokenExpiry   time.Duration // Lifetime of the step-1 proof token (default: 5m)
	SessionTokenExpiry time.Duration // Lifetime of the step-2 session token (default: 24h)

	// Session cookie configuration
	SessionCookieName string // Session cookie name (default: token)
	CookieDomain      string // Cookie domain for session and hint cookies (blank means current host)

	// Audit logging configuration
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	AuditLogAuth  string // Authentication events (login steps, logout)
	AuditLogAdmin string // Admin actions (record deletions)

	// Admin seeding configuration
	SeedAdminEmail      string // Email of the admin user to create on startup (if set)
	SeedAdminEmployeeID string // Employee ID of the seeded admin
	SeedAdminName       string // Name of the seeded admin
	SeedAdminPassword   string // Initial password for the seeded admin
}
