// Package app assembles the long-lived services shared by the server and the
// command line tool from a loaded config.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/clubsite/internal/catalog"
	"github.com/dukerupert/clubsite/internal/config"
	"github.com/dukerupert/clubsite/internal/database"
	"github.com/dukerupert/clubsite/internal/gcal"
	"github.com/dukerupert/clubsite/internal/gdrive"
	"github.com/dukerupert/clubsite/internal/github"
	"github.com/dukerupert/clubsite/internal/server"
	"github.com/dukerupert/clubsite/internal/snapshot"
	"github.com/dukerupert/clubsite/internal/store"
	"github.com/dukerupert/clubsite/internal/syncer"
	ws "github.com/dukerupert/clubsite/internal/websocket"
)

// History retention for sync runs and cooldown rows.
const (
	RunRetention      = 30 * 24 * time.Hour
	CooldownRetention = 24 * time.Hour
)

type App struct {
	Config        *config.Config
	DB            *sql.DB
	EventsFile    *catalog.EventsFile
	ResourcesFile *catalog.ResourcesFile
	Calendar      *gcal.Client
	Drive         *gdrive.Client
	Snapshots     *snapshot.Uploader
	GitHub        *github.Service
	Hub           *ws.Hub
	Events        *syncer.EventSyncer
	Resources     *syncer.ResourceSyncer
	Runs          *store.SyncRunStore
	Cooldowns     *store.CooldownStore
	Logger        *slog.Logger
}

// New opens the database and builds every service. A nil hub disables live
// notifications, which is what the CLI wants.
func New(cfg *config.Config, hub *ws.Hub, logger *slog.Logger) (*App, error) {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	key, err := cfg.ServiceAccountKeyJSON()
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &App{
		Config:        cfg,
		DB:            db,
		EventsFile:    catalog.NewEventsFile(cfg.EventsPath()),
		ResourcesFile: catalog.NewResourcesFile(cfg.ResourcesPath()),
		Calendar: gcal.NewClient(gcal.Config{
			CalendarID: cfg.Calendar.ID,
			APIKey:     cfg.Calendar.APIKey,
			MaxResults: cfg.Calendar.MaxEvents,
		}),
		Drive: gdrive.NewClient(gdrive.Config{
			FolderID:          cfg.Drive.FolderID,
			ServiceAccountKey: key,
		}),
		Snapshots: snapshot.NewUploader(snapshot.Config{
			S3: snapshot.S3Config{
				Endpoint:  cfg.Snapshot.Endpoint,
				Bucket:    cfg.Snapshot.Bucket,
				Region:    cfg.Snapshot.Region,
				AccessKey: cfg.Snapshot.AccessKey,
				SecretKey: cfg.Snapshot.SecretKey,
			},
			Passphrase: cfg.Snapshot.Passphrase,
			Prefix:     cfg.Snapshot.Prefix,
		}, logger),
		GitHub:    github.NewService(cfg.GitHubToken),
		Hub:       hub,
		Runs:      store.NewSyncRunStore(db),
		Cooldowns: store.NewCooldownStore(db),
		Logger:    logger,
	}

	a.Events, a.Resources = server.NewSyncers(db, a.Calendar, a.Drive, a.EventsFile, a.ResourcesFile,
		cfg.Sync.Cooldown, a.Snapshots, hub, logger)

	logger.Info("services configured",
		"calendar", a.Calendar.Configured(),
		"drive", a.Drive.Configured(),
		"snapshots", a.Snapshots.Enabled(),
		"github_token", a.GitHub.Configured(),
	)
	return a, nil
}

// Prune drops expired cooldown rows, old sync history and expired GitHub
// stats.
func (a *App) Prune(now time.Time) {
	a.GitHub.PruneCache()
	if n, err := a.Cooldowns.DeleteExpired(now.Add(-CooldownRetention)); err != nil {
		a.Logger.Error("prune cooldowns", "error", err)
	} else if n > 0 {
		a.Logger.Debug("pruned cooldowns", "count", n)
	}
	if n, err := a.Runs.DeleteOlderThan(now.Add(-RunRetention)); err != nil {
		a.Logger.Error("prune sync runs", "error", err)
	} else if n > 0 {
		a.Logger.Info("pruned sync runs", "count", n)
	}
}

func (a *App) Close() error {
	return a.DB.Close()
}
