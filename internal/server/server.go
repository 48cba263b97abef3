package server

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jfoltran/growthgraph/internal/animation"
	"github.com/jfoltran/growthgraph/internal/config"
	"github.com/jfoltran/growthgraph/internal/funnel"
)

// Server is the HTTP server that serves the REST API, WebSocket endpoint,
// and embedded intro page.
type Server struct {
	driver *animation.Driver
	store  *funnel.Store
	cfg    *config.Config
	logger zerolog.Logger
	hub    *Hub
	srv    *http.Server
}

// New creates a new Server.
func New(driver *animation.Driver, store *funnel.Store, cfg *config.Config, logger zerolog.Logger) *Server {
	return &Server{
		driver: driver,
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "http-server").Logger(),
		hub:    newHub(driver, logger),
	}
}

// Handler returns the routed API and static file handler.
func (s *Server) Handler() (http.Handler, error) {
	h := &handlers{driver: s.driver, cfg: s.cfg}
	fh := &funnelHandlers{store: s.store}

	mux := http.NewServeMux()

	// Rendering.
	mux.HandleFunc("GET /api/v1/scene", h.scene)
	mux.HandleFunc("GET /api/v1/graph.svg", h.svgImage)
	mux.HandleFunc("GET /api/v1/graph.png", h.pngImage)

	// Animation.
	mux.HandleFunc("GET /api/v1/status", h.status)
	mux.HandleFunc("POST /api/v1/animation/restart", h.restart)
	mux.HandleFunc("GET /api/v1/config", h.configHandler)
	mux.HandleFunc("GET /api/v1/logs", h.logs)
	mux.HandleFunc("/api/v1/ws", s.hub.handleWS)

	// Onboarding funnel.
	mux.HandleFunc("GET /api/v1/quiz", fh.quiz)
	mux.HandleFunc("POST /api/v1/funnel", fh.create)
	mux.HandleFunc("GET /api/v1/funnel/{id}", fh.get)
	mux.HandleFunc("POST /api/v1/funnel/{id}/answer", fh.answer)
	mux.HandleFunc("POST /api/v1/funnel/{id}/next", fh.next)
	mux.HandleFunc("POST /api/v1/funnel/{id}/back", fh.back)

	// Serve embedded frontend.
	sub, err := fs.Sub(distFS, "dist")
	if err != nil {
		return nil, fmt.Errorf("embed fs: %w", err)
	}
	mux.Handle("/", spaHandler(http.FS(sub)))

	return mux, nil
}

// Start begins serving on addr. It blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	s.srv = &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	// Start WebSocket hub.
	go s.hub.start(ctx)

	s.logger.Info().Str("addr", addr).Msg("starting HTTP server")

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.srv.Close()
	case err := <-errCh:
		return err
	}
}

// StartBackground starts the server in a goroutine (non-blocking).
func (s *Server) StartBackground(ctx context.Context, addr string) {
	go func() {
		if err := s.Start(ctx, addr); err != nil {
			s.logger.Err(err).Msg("http server error")
		}
	}()
}

// spaHandler serves static files and falls back to index.html for client
// routes such as /dashboard.
func spaHandler(root http.FileSystem) http.Handler {
	files := http.FileServer(root)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		name := path.Clean(r.URL.Path)
		if f, err := root.Open(name); err == nil {
			f.Close()
			files.ServeHTTP(w, r)
			return
		}
		r2 := r.Clone(r.Context())
		r2.URL.Path = "/"
		files.ServeHTTP(w, r2)
	})
}
