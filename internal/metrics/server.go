package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdrpinto/vimgolf/internal/ctxlog"
)

// Server exposes a registry on /metrics.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// Listen binds addr, falling back to a random loopback port when addr is
// taken, and returns a server that is not yet serving.
func Listen(ctx context.Context, addr string, gatherer prometheus.Gatherer) (*Server, error) {
	logger := ctxlog.FromContext(ctx)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Warn("Metrics address unavailable; using a random port.", "addr", addr, "error", err)
		ln, err = net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, fmt.Errorf("failed to listen for metrics: %w", err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &Server{
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}, nil
}

// Addr is the address actually bound.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Serve blocks until the server is shut down.
func (s *Server) Serve() error {
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
