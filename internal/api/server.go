package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/logging"
	"github.com/Leewodls/ko-analysis/internal/queue"
	"github.com/Leewodls/ko-analysis/internal/stage"
)

// HealthReporter exposes pipeline readiness, implemented by the workflow
// manager.
type HealthReporter interface {
	StageHealth(ctx context.Context) []stage.Health
}

// Server hosts the daemon HTTP API.
type Server struct {
	cfg    *config.Config
	store  *queue.Store
	health HealthReporter
	logger *slog.Logger

	httpServer *http.Server
}

// NewServer constructs the API server. The health reporter may be nil when
// the workflow manager is not running.
func NewServer(cfg *config.Config, store *queue.Store, health HealthReporter, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		health: health,
		logger: logging.NewComponentLogger(logger, "api"),
	}
}

// Router builds the HTTP handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if token := strings.TrimSpace(s.cfg.Paths.APIToken); token != "" {
			r.Use(bearerAuth(token))
		}
		r.Post("/analysis", s.handleCreateAnalysis)
		r.Post("/analysis/communication", s.handleCommunication)
		r.Get("/queue", s.handleQueueList)
		r.Get("/queue/{id}", s.handleQueueItem)
	})
	return r
}

// Start begins serving on the configured bind address. It returns once the
// listener stops; callers typically run it in a goroutine.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Paths.APIBind,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("api listening", logging.String("bind", s.cfg.Paths.APIBind))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// bearerAuth rejects requests whose Authorization header does not carry the
// configured token. Comparison is constant time.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			candidate, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(candidate)), []byte(token)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
