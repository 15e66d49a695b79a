package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riskibarqy/infantry-community/internal/config"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

func TestPprofHandler_ServesIndexAndNamedProfiles(t *testing.T) {
	t.Parallel()

	h := pprofHandler()
	for _, path := range []string{"/debug/pprof/", "/debug/pprof/goroutine?debug=1", "/debug/pprof/cmdline"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestPprofHandler_SymbolAcceptsGetAndPost(t *testing.T) {
	t.Parallel()

	h := pprofHandler()
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/debug/pprof/symbol", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s symbol: expected 200, got %d", method, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "num_symbols") {
			t.Fatalf("%s symbol: unexpected body %q", method, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/debug/pprof/symbol", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE symbol: expected 405, got %d", rec.Code)
	}
}

func TestStartPprofServer(t *testing.T) {
	t.Parallel()

	off, err := StartPprofServer(config.Config{PprofEnabled: false}, logging.NewNop())
	if err != nil || off != nil {
		t.Fatalf("disabled pprof should be nil, got %v %v", off, err)
	}
	if err := off.Stop(t.Context()); err != nil {
		t.Fatalf("stop nil server: %v", err)
	}

	srv, err := StartPprofServer(config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}, logging.NewNop())
	if err != nil {
		t.Fatalf("start pprof: %v", err)
	}
	resp, err := http.Get("http://" + srv.Addr() + "/debug/pprof/")
	if err != nil {
		t.Fatalf("get index: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if err := srv.Stop(t.Context()); err != nil {
		t.Fatalf("stop pprof: %v", err)
	}
}
