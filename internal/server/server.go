// Package server serves generated pages and the JSON API the page shell
// talks to: notes, AI chat, provider settings, navigation and the Gemini
// relay.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/thywilljoshua/pdf-to-study/internal/ai"
	"github.com/thywilljoshua/pdf-to-study/internal/shell"
	"github.com/thywilljoshua/pdf-to-study/internal/storage"
)

// Config holds server configuration.
type Config struct {
	// Root is served as the site root and holds html/ and pdfs/.
	Root        string
	CORSOrigins []string
	// RateLimit is requests per second for the AI endpoints. Zero disables
	// limiting.
	RateLimit float64
	RateBurst int
	Relay     RelayConfig
	// MaxSessions bounds the number of live chat sessions.
	MaxSessions int
}

// Server is the local study server.
type Server struct {
	cfg        Config
	local      storage.Local
	aiConfigs  *ai.ConfigStore
	last       *shell.LastLecture
	log        *slog.Logger
	chatLimit  *rate.Limiter
	relayLimit *rate.Limiter
	sessions   *chatSessions
	notesMu    sync.Mutex
	relay      *http.Client
	dispatch   []ai.Option
	router     chi.Router
	httpServer *http.Server
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithDispatchOptions forwards options to every chat dispatcher.
func WithDispatchOptions(opts ...ai.Option) Option {
	return func(s *Server) { s.dispatch = append(s.dispatch, opts...) }
}

// WithRelayClient replaces the client the Gemini relay uses.
func WithRelayClient(c *http.Client) Option {
	return func(s *Server) { s.relay = c }
}

// New creates a server. local backs notes and the last-lecture pointer;
// configs holds the chat provider settings.
func New(cfg Config, local storage.Local, configs *ai.ConfigStore, opts ...Option) *Server {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 256
	}
	s := &Server{
		cfg:       cfg,
		local:     local,
		aiConfigs: configs,
		last:      shell.NewLastLecture(local),
		log:       slog.Default(),
		sessions:  newChatSessions(cfg.MaxSessions),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		s.chatLimit = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
		s.relayLimit = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, o := range opts {
		o(s)
	}
	if s.relay == nil {
		s.relay = newRelayClient(cfg.Relay)
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(noCache)

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Use(middleware.Timeout(2 * time.Minute))

		r.Get("/lectures", s.handleLectures)
		r.Get("/providers", s.handleProviders)
		r.Post("/markdown", s.handleMarkdown)

		r.Route("/shell", func(r chi.Router) {
			r.Get("/actions", s.handleShellActions)
			r.Get("/latest", s.handleShellLatest)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Get("/config", s.handleGetAIConfig)
			r.Put("/config", s.handlePutAIConfig)
			r.Delete("/config", s.handleDeleteAIConfig)
			r.With(rateLimited(s.chatLimit)).Post("/chat", s.handleChat)
		})

		r.Route("/notes/{title}", func(r chi.Router) {
			r.Get("/", s.handleListNotes)
			r.Post("/", s.handleAddNote)
			r.Put("/draft", s.handleSaveDraft)
			r.Get("/export", s.handleExportNotes)
			r.Put("/{id}", s.handleUpdateNote)
			r.Delete("/{id}", s.handleDeleteNote)
			r.Post("/{id}/focus", s.handleToggleFocus)
			r.Post("/{id}/active", s.handleSetActive)
		})

		r.Options("/gemini", s.handleRelayPreflight)
		r.With(rateLimited(s.relayLimit)).Post("/gemini", s.handleRelay)
	})

	r.Handle("/*", s.static())
	return r
}

// Handler returns the instrumented root handler.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "pdf2study")
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. ready, if non-nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      150 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr())
	}

	errc := make(chan error, 1)
	go func() { errc <- s.httpServer.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
