package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/riskibarqy/infantry-community/internal/config"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

// PprofServer serves runtime profiles on a private listener. A nil
// *PprofServer is a disabled one.
type PprofServer struct {
	srv    *http.Server
	addr   net.Addr
	logger *logging.Logger
}

// StartPprofServer binds PPROF_ADDR synchronously so a taken port fails
// startup instead of a background goroutine.
func StartPprofServer(cfg config.Config, logger *logging.Logger) (*PprofServer, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.PprofEnabled {
		logger.Debug("pprof disabled", "reason", "PPROF_ENABLED=false")
		return nil, nil
	}

	ln, err := net.Listen("tcp", cfg.PprofAddr)
	if err != nil {
		return nil, fmt.Errorf("listen pprof on %s: %w", cfg.PprofAddr, err)
	}

	p := &PprofServer{
		srv: &http.Server{
			Handler:           pprofHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr:   ln.Addr(),
		logger: logger.Named("pprof"),
	}
	go func() {
		p.logger.Info("pprof server listening", "addr", p.addr.String())
		if err := p.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("pprof server failed", "error", err)
		}
	}()
	return p, nil
}

func (p *PprofServer) Addr() string {
	if p == nil {
		return ""
	}
	return p.addr.String()
}

func (p *PprofServer) Stop(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if err := p.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("stop pprof: %w", err)
	}
	p.logger.Info("pprof server stopped")
	return nil
}

func pprofHandler() http.Handler {
	mux := http.NewServeMux()
	// Index also serves the named runtime profiles (heap, goroutine, allocs...).
	mux.HandleFunc("GET /debug/pprof/", pprof.Index)
	mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("POST /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	return mux
}
