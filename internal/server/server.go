package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/clubsite/internal/catalog"
	"github.com/dukerupert/clubsite/internal/cooldown"
	"github.com/dukerupert/clubsite/internal/github"
	"github.com/dukerupert/clubsite/internal/handler"
	"github.com/dukerupert/clubsite/internal/icsfeed"
	"github.com/dukerupert/clubsite/internal/middleware"
	"github.com/dukerupert/clubsite/internal/model"
	"github.com/dukerupert/clubsite/internal/store"
	"github.com/dukerupert/clubsite/internal/syncer"
	ws "github.com/dukerupert/clubsite/internal/websocket"
)

// Config carries what the router needs beyond its collaborators.
type Config struct {
	CronSecret     string
	Feed           icsfeed.Options
	OriginPatterns []string
}

// Deps are the long-lived services the server wires into handlers.
type Deps struct {
	DB            *sql.DB
	EventsFile    *catalog.EventsFile
	ResourcesFile *catalog.ResourcesFile
	Events        handler.EventSyncer
	Resources     handler.ResourceSyncer
	GitHub        *github.Service
	Hub           *ws.Hub
}

type Server struct {
	cfg         Config
	db          *sql.DB
	hub         *ws.Hub
	syncH       *handler.SyncHandler
	catalogH    *handler.CatalogHandler
	githubH     *handler.GitHubHandler
	syncRunH    *handler.SyncRunHandler
	runs        *store.SyncRunStore
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	runStore := store.NewSyncRunStore(deps.DB)

	return &Server{
		cfg:         cfg,
		db:          deps.DB,
		hub:         deps.Hub,
		syncH:       handler.NewSyncHandler(deps.Events, deps.Resources, logger.With("component", "sync_handler")),
		catalogH:    handler.NewCatalogHandler(deps.EventsFile, deps.ResourcesFile, cfg.Feed, logger.With("component", "catalog")),
		githubH:     handler.NewGitHubHandler(deps.GitHub, logger.With("component", "github")),
		syncRunH:    handler.NewSyncRunHandler(runStore, logger.With("component", "sync_runs")),
		runs:        runStore,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// NewSyncers builds both syncers over shared stores so the HTTP server, the
// scheduler and the CLI all see the same cooldowns and history.
func NewSyncers(db *sql.DB, events syncer.EventFetcher, resources syncer.FileLister, ef *catalog.EventsFile, rf *catalog.ResourcesFile, window time.Duration, snapshots syncer.Snapshotter, hub *ws.Hub, logger *slog.Logger) (*syncer.EventSyncer, *syncer.ResourceSyncer) {
	deps := syncer.Deps{
		Gate:      cooldown.NewGate(store.NewCooldownStore(db), window, nil),
		Runs:      store.NewSyncRunStore(db),
		Snapshots: snapshots,
		Logger:    logger,
	}
	if hub != nil {
		deps.Notifier = hub
	}
	return syncer.NewEventSyncer(events, ef, deps), syncer.NewResourceSyncer(resources, rf, deps)
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Sync triggers
	trust := middleware.TrustBearer(s.cfg.CronSecret)
	mux.Handle("POST /api/events/sync", trust(http.HandlerFunc(s.syncH.SyncEvents)))
	mux.Handle("POST /api/resources/google-drive-sync", trust(http.HandlerFunc(s.syncH.SyncResources)))
	mux.HandleFunc("GET /api/sync/runs", s.syncRunH.List)
	mux.HandleFunc("GET /api/sync/runs/{id}", s.syncRunH.Get)

	// Catalogs
	mux.HandleFunc("GET /api/events", s.catalogH.ListEvents)
	mux.HandleFunc("GET /api/resources", s.catalogH.ListResources)
	mux.HandleFunc("GET /events.ics", s.catalogH.EventsFeed)

	// GitHub project stats
	mux.HandleFunc("GET /api/github/{owner}/{repo}", s.rateLimitedHandler(s.githubH.RepoStats))
	mux.HandleFunc("OPTIONS /api/github/{owner}/{repo}", s.githubH.Preflight)
	mux.Handle("DELETE /api/github/cache", trust(http.HandlerFunc(s.githubH.ClearCache)))

	if s.hub != nil {
		mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.cfg.OriginPatterns, s.logger.With("component", "websocket")))
	}

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{"status": "ok"}

	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check ping", "error", err)
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	if s.hub != nil {
		body["ws_clients"] = s.hub.ClientCount()
	}

	lastSync := map[string]any{}
	for _, kind := range []model.SyncKind{model.SyncKindEvents, model.SyncKindResources} {
		run, err := s.runs.LastSuccess(kind)
		if err != nil {
			s.logger.Error("health check last sync", "kind", kind, "error", err)
			continue
		}
		if run != nil {
			lastSync[string(kind)] = run.FinishedAt
		} else {
			lastSync[string(kind)] = nil
		}
	}
	body["last_sync"] = lastSync

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 60, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
