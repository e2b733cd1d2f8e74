package network

import (
	"net/http/httptest"
	"testing"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xRealIP    string
		remoteAddr string
		want       string
	}{
		{
			name:       "x-forwarded-for single",
			xff:        "203.0.113.7",
			remoteAddr: "10.0.0.1:4455",
			want:       "203.0.113.7",
		},
		{
			name:       "x-forwarded-for chain takes first",
			xff:        "203.0.113.7, 198.51.100.2, 10.0.0.1",
			remoteAddr: "10.0.0.1:4455",
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip when no xff",
			xRealIP:    "198.51.100.9",
			remoteAddr: "10.0.0.1:4455",
			want:       "198.51.100.9",
		},
		{
			name:       "remote addr strips port",
			remoteAddr: "192.0.2.4:8080",
			want:       "192.0.2.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				r.Header.Set("X-Real-IP", tt.xRealIP)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetUserAgent(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if got := GetUserAgent(r); got != UnknownValue {
		t.Errorf("GetUserAgent() with no header = %q, want %q", got, UnknownValue)
	}

	r.Header.Set("User-Agent", "Mozilla/5.0")
	if got := GetUserAgent(r); got != "Mozilla/5.0" {
		t.Errorf("GetUserAgent() = %q, want Mozilla/5.0", got)
	}
}
