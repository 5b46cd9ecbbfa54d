package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jobrunner/goode/internal/config"
)

func TestOriginHost(t *testing.T) {
	tests := []struct {
		name     string
		origin   string
		expected string
	}{
		{
			name:     "simple https URL",
			origin:   "https://example.com",
			expected: "example.com",
		},
		{
			name:     "https URL with port",
			origin:   "https://example.com:8080",
			expected: "example.com",
		},
		{
			name:     "http URL",
			origin:   "http://example.com",
			expected: "example.com",
		},
		{
			name:     "URL with path",
			origin:   "https://example.com/path/to/resource",
			expected: "example.com",
		},
		{
			name:     "URL with port and path",
			origin:   "https://example.com:443/path",
			expected: "example.com",
		},
		{
			name:     "subdomain",
			origin:   "https://sub.example.com",
			expected: "sub.example.com",
		},
		{
			name:     "deep subdomain",
			origin:   "https://deep.sub.example.com",
			expected: "deep.sub.example.com",
		},
		{
			name:     "localhost",
			origin:   "http://localhost:3000",
			expected: "localhost",
		},
		{
			name:     "IP address",
			origin:   "http://192.168.1.1:8080",
			expected: "192.168.1.1",
		},
		{
			name:     "no protocol",
			origin:   "example.com",
			expected: "example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := originHost(tt.origin)
			if result != tt.expected {
				t.Errorf("originHost(%q) = %q; want %q", tt.origin, result, tt.expected)
			}
		})
	}
}

func TestMatchOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		pattern string
		want    bool
	}{
		{
			name:    "exact match",
			origin:  "https://example.com",
			pattern: "https://example.com",
			want:    true,
		},
		{
			name:    "exact mismatch",
			origin:  "https://example.com",
			pattern: "https://other.com",
			want:    false,
		},
		{
			name:    "wildcard matches subdomain",
			origin:  "https://sub.example.com",
			pattern: "*.example.com",
			want:    true,
		},
		{
			name:    "wildcard matches deep subdomain",
			origin:  "https://deep.sub.example.com",
			pattern: "*.example.com",
			want:    true,
		},
		{
			name:    "wildcard does not match apex",
			origin:  "https://example.com",
			pattern: "*.example.com",
			want:    false,
		},
		{
			name:    "wildcard does not match other domain",
			origin:  "https://sub.other.com",
			pattern: "*.example.com",
			want:    false,
		},
		{
			name:    "wildcard does not match suffix trick",
			origin:  "https://evilexample.com",
			pattern: "*.example.com",
			want:    false,
		},
		{
			name:    "wildcard with port",
			origin:  "https://sub.example.com:8443",
			pattern: "*.example.com",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchOrigin(tt.origin, tt.pattern); got != tt.want {
				t.Errorf("matchOrigin(%q, %q) = %v; want %v", tt.origin, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestIsOriginAllowed(t *testing.T) {
	srv := &Server{
		config: config.ServerConfig{
			CORS: config.CORSConfig{
				AllowedOrigins: []string{"https://example.com", "*.trusted.org"},
			},
		},
	}

	if !srv.isOriginAllowed("https://example.com") {
		t.Error("exact origin should be allowed")
	}
	if !srv.isOriginAllowed("https://app.trusted.org") {
		t.Error("wildcard subdomain should be allowed")
	}
	if srv.isOriginAllowed("https://evil.com") {
		t.Error("unlisted origin should not be allowed")
	}
}

func TestCORSMiddleware(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.config.CORS.AllowedOrigins = []string{"https://example.com"}
	srv.router = srv.setupRoutes()

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://example.com")
		rr := httptest.NewRecorder()

		srv.router.ServeHTTP(rr, req)

		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "https://example.com")
		}
	})

	t.Run("disallowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.com")
		rr := httptest.NewRecorder()

		srv.router.ServeHTTP(rr, req)

		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
		}
	})

}
