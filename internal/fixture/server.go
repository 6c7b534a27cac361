// Package fixture serves an offline replica of the demo page's Elements
// section: the same ids, classes, text and client-side behavior the built-in
// suites assert on. It makes runs hermetic and gives the browser backends
// something to test against.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/moolen/pagecheck/internal/logging"
)

// DefaultAddr binds an ephemeral loopback port.
const DefaultAddr = "127.0.0.1:0"

// Server serves the replica. It implements lifecycle.Component.
type Server struct {
	addr   string
	logger *logging.Logger

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

// NewServer creates a server listening on addr once started.
func NewServer(addr string) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{
		addr:   addr,
		logger: logging.GetLogger("fixture"),
	}
}

// Name implements lifecycle.Component.
func (s *Server) Name() string { return "fixture" }

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(noCache)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elements", http.StatusFound)
	})

	static := http.FileServer(staticFS())
	r.Handle("/static/*", static)
	r.Handle("/images/*", static)

	r.Get("/{page}", s.handlePage)
	return r
}

// Start listens and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return nil
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("fixture: failed to listen on %s: %w", s.addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.srv, s.listener = srv, ln

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Fixture server stopped: %v", err)
		}
	}()

	s.logger.InfoWithFields("Fixture server listening", logging.Field("url", s.urlLocked()))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv, s.listener = nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("fixture: shutdown: %w", err)
	}
	return nil
}

// URL returns the server root, or "" before Start.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urlLocked()
}

// ElementsURL returns the entry page the built-in suites start from.
func (s *Server) ElementsURL() string {
	u := s.URL()
	if u == "" {
		return ""
	}
	return u + "/elements"
}

func (s *Server) urlLocked() string {
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.DebugWithFields("Request served",
			logging.Field("method", r.Method),
			logging.Field("path", r.URL.Path),
			logging.Field("status", ww.Status()),
			logging.Field("duration", time.Since(start).String()))
	})
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}
