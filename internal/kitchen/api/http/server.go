package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dineflow/internal/kitchen/api/http/handle"
	"dineflow/internal/kitchen/app/services"
	"dineflow/internal/xpkg/logger"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	srv   *http.Server
	mylog logger.Logger
}

func NewServer(port int, kitchenService *services.KitchenService, mylog logger.Logger) *Server {
	mux := http.NewServeMux()

	ticketHandler := handle.NewTicketHandler(kitchenService, mylog)
	mux.Handle("GET /kitchen/tickets", ticketHandler.List())
	mux.Handle("GET /kitchen/tickets/{id}", ticketHandler.Get())
	mux.Handle("PUT /kitchen/tickets/{id}/status", ticketHandler.UpdateStatus())

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
