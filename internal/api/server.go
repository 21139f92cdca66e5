package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// Server runs one HTTP surface.
type Server struct {
	srv *http.Server
	log zerolog.Logger
}

// NewServer wraps a router on the given port.
func NewServer(port int, handler http.Handler, log zerolog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: handler,
			// Command handlers may legitimately block on window
			// operations; only the read side is bounded.
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start serves in a goroutine until Shutdown.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("http surface listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http surface failed")
		}
	}()
}

// Shutdown drains connections with a bounded grace period.
func (s *Server) Shutdown(ctx context.Context) error {
	sctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(sctx)
}
