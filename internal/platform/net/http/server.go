package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"verigate/internal/platform/config"
	"verigate/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server is a thin wrapper over chi + stdlib http.Server
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *stdhttp.Server
}

// NewServer creates a zero-value friendly http server
// opts receive the *chi.Mux so callers can mount routes/mw
func NewServer(cfg config.Conf, opts ...func(*chi.Mux)) *Server {
	addr := cfg.MayString("PORT", ":8087")
	m := chi.NewRouter()
	for _, o := range opts {
		o(m)
	}
	return &Server{
		addr: addr,
		mux:  m,
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Mux returns the underlying chi mux so callers can mount routes
func (s *Server) Mux() *chi.Mux { return s.mux }

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// Run starts the server and blocks until it fails or ctx is canceled
// cancellation triggers a graceful shutdown with a short drain window
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	log.Info().Str("addr", s.addr).Msg("http listening")

	errc := make(chan error, 1)
	go func() { errc <- s.srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if err == stdhttp.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shCtx)
	}
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
