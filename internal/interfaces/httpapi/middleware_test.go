package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestShouldTraceRequest(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"/healthz":                       false,
		" /readyz ":                      false,
		"/openapi.yaml":                  false,
		"/docs":                          false,
		"/docs/index.css":                false,
		"/api/elo/leaderboard":           true,
		"/api/squads":                    true,
		"/api/webhooks/stripe":           true,
		"/documents-not-really-the-docs": true,
	}
	for path, want := range cases {
		if got := shouldTraceRequest(path); got != want {
			t.Fatalf("shouldTraceRequest(%q)=%v want %v", path, got, want)
		}
	}
}

func TestShouldCreateHTTPAPISpan(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"httpapi.Handler.GetEloLeaderboard": true,
		"httpapi.RequireAuth":               true,
		"httpapi.RequireInternalJobToken":   true,
		"httpapi.RequestLogging":            false,
		"httpapi.writeError":                false,
	}
	for name, want := range cases {
		if got := shouldCreateHTTPAPISpan(name); got != want {
			t.Fatalf("shouldCreateHTTPAPISpan(%q)=%v want %v", name, got, want)
		}
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{name: "exact origin", allowed: []string{"https://freeinf.org/"}, method: http.MethodGet, origin: "https://freeinf.org", wantOrigin: "https://freeinf.org", wantStatus: http.StatusOK},
		{name: "wildcard subdomain", allowed: []string{"https://*.freeinf.org"}, method: http.MethodGet, origin: "https://pr-12.freeinf.org", wantOrigin: "https://pr-12.freeinf.org", wantStatus: http.StatusOK},
		{name: "wildcard needs a subdomain", allowed: []string{"https://*.freeinf.org"}, method: http.MethodGet, origin: "https://freeinf.org", wantStatus: http.StatusOK},
		{name: "wildcard checks scheme", allowed: []string{"https://*.freeinf.org"}, method: http.MethodGet, origin: "http://pr-12.freeinf.org", wantStatus: http.StatusOK},
		{name: "unlisted origin", allowed: []string{"https://freeinf.org"}, method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusOK},
		{name: "preflight", allowed: []string{"*"}, method: http.MethodOptions, origin: "https://freeinf.org", wantOrigin: "*", wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := CORS(tt.allowed, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(tt.method, "/api/squads", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status=%d want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Fatalf("Access-Control-Allow-Origin=%q want %q", got, tt.wantOrigin)
			}
		})
	}
}
