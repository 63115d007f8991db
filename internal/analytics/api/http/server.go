package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dineflow/internal/analytics/api/http/handle"
	"dineflow/internal/analytics/app/services"
	"dineflow/internal/xpkg/logger"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	srv   *http.Server
	mylog logger.Logger
}

func NewServer(port int, projector *services.Projector, mylog logger.Logger) *Server {
	mux := http.NewServeMux()

	analyticsHandler := handle.NewAnalyticsHandler(projector, mylog)
	mux.Handle("GET /analytics/top-foods", analyticsHandler.TopFoods())
	mux.Handle("GET /analytics/restaurants/{id}/top-foods", analyticsHandler.RestaurantTopFoods())
	mux.Handle("GET /analytics/revenue", analyticsHandler.Revenue())
	mux.Handle("GET /analytics/orders-by-status", analyticsHandler.OrdersByStatus())

	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
		mylog: mylog,
	}
}

// Run blocks until the server stops or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	s.mylog.Action("server_started").Info("HTTP server is running", "addr", s.srv.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Action("graceful_shutdown_failed").Error("Failed to shut down HTTP server gracefully", err)
			return fmt.Errorf("http server shutdown: %w", err)
		}
		s.mylog.Action("graceful_shutdown_completed").Info("HTTP server shut down gracefully")
		return nil
	case err := <-errCh:
		return err
	}
}
