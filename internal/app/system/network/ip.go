// Package network provides request-inspection utilities.
package network

import (
	"net/http"
	"strings"
)

// UnknownValue is recorded when the client IP or user agent cannot be
// determined. Login records and audit events always carry a value.
const UnknownValue = "Unknown"

// GetClientIP extracts the client IP address from the request.
// It checks X-Forwarded-For and X-Real-IP headers for reverse proxy setups,
// and falls back to RemoteAddr if neither is present.
func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first IP in the chain (client IP)
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr, stripping the port
	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
		if host := r.RemoteAddr[:idx]; host != "" {
			return host
		}
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return UnknownValue
}

// GetUserAgent returns the request's User-Agent header, or UnknownValue
// when the header is absent.
func GetUserAgent(r *http.Request) string {
	if ua := r.UserAgent(); ua != "" {
		return ua
	}
	return UnknownValue
}
