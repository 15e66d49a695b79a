package httpapi

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP_PrefersProxyHeaders(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/api/squads", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.9" {
		t.Fatalf("expected forwarded address, got %q", got)
	}

	req.Header.Set("CF-Connecting-IP", "198.51.100.4")
	if got := clientIP(req); got != "198.51.100.4" {
		t.Fatalf("expected cloudflare address, got %q", got)
	}
}

func TestClientIP_FallsBackToRemoteAddr(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/api/squads", nil)
	req.RemoteAddr = "[::ffff:192.0.2.7]:443"
	req.Header.Set("X-Real-IP", "not-an-ip")
	if got := clientIP(req); got != "192.0.2.7" {
		t.Fatalf("expected unmapped remote address, got %q", got)
	}
}

func TestClientCountry(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/", nil)
	if got := clientCountry(req); got != "ZZ" {
		t.Fatalf("expected ZZ without headers, got %q", got)
	}
	req.Header.Set("CF-IPCountry", "XX")
	req.Header.Set("Fly-Client-Country", "de")
	if got := clientCountry(req); got != "DE" {
		t.Fatalf("expected DE, got %q", got)
	}
}
