package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ledgerviz/pkg/kraken"

	"go.uber.org/zap"
)

// PriceReader is the read side of the in-memory price store.
type PriceReader interface {
	Latest(pair string) (kraken.PriceData, bool)
	LatestAll() map[string]kraken.PriceData
	History(pair string) []kraken.PriceData
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Server exposes the graph style table and collected prices over HTTP.
type Server struct {
	addr            string
	shutdownTimeout time.Duration
	prices          PriceReader
	checks          map[string]HealthCheck
	logger          *zap.Logger
	router          *http.ServeMux
}

func New(addr string, shutdownTimeout time.Duration, prices PriceReader, checks map[string]HealthCheck, logger *zap.Logger) *Server {
	s := &Server{
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		prices:          prices,
		checks:          checks,
		logger:          logger,
		router:          http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /api/v1/graph/style", s.handleStyle)
	s.router.HandleFunc("GET /api/v1/graph/style/{category}", s.handleCategoryStyle)

	s.router.HandleFunc("GET /api/v1/prices/latest", s.handleLatestAll)
	s.router.HandleFunc("GET /api/v1/prices/latest/{base}/{quote}", s.handleLatest)
	s.router.HandleFunc("GET /api/v1/prices/history/{base}/{quote}", s.handleHistory)

	s.router.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Server stopped")
	return ctx.Err()
}
