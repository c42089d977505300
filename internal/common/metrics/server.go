package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MetricsPath = "/metrics"
	ReadyPath   = "/ready"

	shutdownTimeout = 5 * time.Second
)

// ReadinessCheck reports why the service cannot serve traffic, or nil.
type ReadinessCheck func() error

// Server exposes Prometheus metrics and the readiness check on a separate
// port from the inbound API.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

func NewServer(port int, ready ReadinessCheck, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle(MetricsPath, promhttp.Handler())
	mux.HandleFunc(ReadyPath, func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil {
			if err := ready(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens on the configured port until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("ошибка запуска сервера метрик: %w", err)
	}

	return s.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is cancelled, then drains in-flight
// requests for up to five seconds.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("Запуск сервера метрик", "addr", ln.Addr().String())

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- s.server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("ошибка сервера метрик: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Ошибка при остановке сервера метрик", "error", err)
		return fmt.Errorf("ошибка при остановке сервера метрик: %w", err)
	}

	s.logger.Info("Сервер метрик успешно остановлен")

	return nil
}
