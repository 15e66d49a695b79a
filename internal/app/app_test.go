package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/infantry-community/internal/config"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:             config.EnvDev,
		ServiceName:        "infantry-community-api",
		HTTPAddr:           ":0",
		CacheEnabled:       true,
		CacheTTL:           time.Minute,
		CORSAllowedOrigins: []string{"*"},
		SwaggerEnabled:     true,
		EloWorkers:         2,
		StatsWorkers:       2,
		InternalJobToken:   "job-token",
	}
}

func TestNew_MemoryBackendServesHealth(t *testing.T) {
	t.Parallel()

	a, err := New(t.Context(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	srv, err := a.NewHTTPServer()
	if err != nil {
		t.Fatalf("build server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected health status: %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestNew_MemoryBackendHasActiveSeason(t *testing.T) {
	t.Parallel()

	a, err := New(t.Context(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}

	status, err := a.Services.RosterLock.Status(t.Context())
	if err != nil {
		t.Fatalf("roster lock status: %v", err)
	}
	if status.NoActiveSeason {
		t.Fatalf("expected seeded active season")
	}
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.HTTPAddr = ""
	a, err := New(t.Context(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	if _, err := a.NewHTTPServer(); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
