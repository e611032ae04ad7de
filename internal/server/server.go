// Package server serves the landing page, the contact endpoint and the
// live terrain stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/neolithic-site/internal/config"
	"github.com/Faultbox/neolithic-site/internal/engine/terrain"
	"github.com/Faultbox/neolithic-site/internal/logger"
)

// Server is the site's HTTP server.
type Server struct {
	cfg      *config.Config
	params   terrain.Params
	tmpl     *template.Template
	upgrader websocket.Upgrader
	handler  http.Handler
	log      *zap.Logger

	// now is swapped in tests
	now func() time.Time
}

// New builds the server and its routes.
func New(cfg *config.Config) (*Server, error) {
	params := cfg.Terrain.Params()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("terrain config: %w", err)
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		params: params,
		tmpl:   tmpl,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 32 << 10,
		},
		log: logger.Named("server"),
		now: time.Now,
	}
	s.handler = s.logRequests(s.routes())
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS())))
	mux.HandleFunc("POST /api/contact", s.handleContact)
	mux.HandleFunc("POST /api/theme", s.handleTheme)
	mux.HandleFunc("GET /api/terrain.png", s.handleSnapshot)
	mux.HandleFunc("GET /ws/terrain", s.handleTerrainStream)
	return mux
}

// Handler returns the root handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully. Open terrain streams are closed through ctx.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
		ErrorLog:     zap.NewStdLog(s.log),
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()))
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down", zap.Duration("timeout", s.cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
