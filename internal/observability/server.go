package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/signalsfoundry/debris-tracker/internal/logging"
)

// NewRouter serves /metrics from metrics and a trivial /health probe.
func NewRouter(metrics http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", metrics).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	return r
}

// MetricsServer exposes the router on a TCP address for the lifetime of a
// command.
type MetricsServer struct {
	srv *http.Server
	ln  net.Listener
	log logging.Logger
}

// StartMetricsServer binds addr and serves in the background. Use ":0" to
// pick a free port; Addr reports the bound address.
func StartMetricsServer(ctx context.Context, addr string, h http.Handler, log logging.Logger) (*MetricsServer, error) {
	if log == nil {
		log = logging.Noop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	h = handlers.LoggingHandler(accessLog{ctx: ctx, log: log}, h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLog{ctx: ctx, log: log}))(h)
	s := &MetricsServer{
		srv: &http.Server{
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:  ln,
		log: log,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server stopped", logging.Err(err))
		}
	}()
	log.Info(ctx, "metrics server listening", logging.String("addr", ln.Addr().String()))
	return s, nil
}

// Addr returns the bound listen address.
func (s *MetricsServer) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server, waiting at most five seconds for in-flight
// scrapes.
func (s *MetricsServer) Shutdown(ctx context.Context) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Warn(ctx, "metrics server shutdown failed", logging.Err(err))
	}
}

// accessLog turns Apache-style access lines into debug log records.
type accessLog struct {
	ctx context.Context
	log logging.Logger
}

func (a accessLog) Write(p []byte) (int, error) {
	a.log.Debug(a.ctx, "metrics request", logging.String("access", strings.TrimSpace(string(p))))
	return len(p), nil
}

type recoveryLog struct {
	ctx context.Context
	log logging.Logger
}

func (r recoveryLog) Println(v ...any) {
	r.log.Error(r.ctx, "metrics handler panic", logging.Any("panic", v))
}
