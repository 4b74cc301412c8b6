package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/clubsite/internal/catalog"
	"github.com/dukerupert/clubsite/internal/model"
	"github.com/dukerupert/clubsite/internal/reconcile"
)

// FileLister lists the watched Drive folder.
type FileLister interface {
	ListFolder(ctx context.Context) ([]model.DriveFile, error)
}

// ResourceResult is the outcome of a successful resources sync.
type ResourceResult struct {
	Message string
	Stats   reconcile.ResourceStats
}

type ResourceSyncer struct {
	lister FileLister
	file   *catalog.ResourcesFile
	deps   Deps
	logger *slog.Logger
}

func NewResourceSyncer(lister FileLister, file *catalog.ResourcesFile, deps Deps) *ResourceSyncer {
	deps = deps.withDefaults()
	return &ResourceSyncer{
		lister: lister,
		file:   file,
		deps:   deps,
		logger: deps.Logger.With("component", "resource_sync"),
	}
}

// ResourcesCooldownKey scopes the resources cooldown to one client.
func ResourcesCooldownKey(clientKey string) string {
	if clientKey == "" {
		clientKey = "unknown"
	}
	return "resources:" + clientKey
}

// Sync pulls the Drive folder and rewrites the resources catalog. For
// untrusted callers the cooldown starts at the attempt, successful or not.
func (s *ResourceSyncer) Sync(ctx context.Context, trig Trigger) (*ResourceResult, error) {
	started := s.deps.Gate.Now()
	s.logger.Info("sync triggered", "trigger", trig.Label(), "client", trig.ClientKey)

	result, err := s.run(ctx, trig, started)
	if err != nil {
		s.logger.Warn("sync failed", "trigger", trig.Label(), "error", err)
		s.deps.record(s.logger, model.SyncKindResources, trig, started, nil, err)
		s.deps.notify(string(model.SyncKindResources), "failed", map[string]any{"error": err.Error()})
		return nil, err
	}

	s.deps.record(s.logger, model.SyncKindResources, trig, started, result.Stats, nil)
	s.deps.notify(string(model.SyncKindResources), "completed", map[string]any{
		"total": result.Stats.TotalResources,
	})
	return result, nil
}

func (s *ResourceSyncer) run(ctx context.Context, trig Trigger, now time.Time) (*ResourceResult, error) {
	if !trig.Trusted() {
		key := ResourcesCooldownKey(trig.ClientKey)
		if err := s.deps.Gate.Check(key); err != nil {
			return nil, err
		}
		if err := s.deps.Gate.Record(key); err != nil {
			s.logger.Error("record cooldown", "error", err)
		}
	}

	files, err := s.lister.ListFolder(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drive folder: %w", err)
	}

	current, err := s.file.Load()
	if err != nil {
		return nil, fmt.Errorf("load resources catalog: %w", err)
	}

	merged, stats := reconcile.Resources(current.Resources, files, now)

	updated := model.ResourcesCatalog{
		LastUpdated: now.UTC().Format(time.RFC3339Nano),
		Resources:   merged,
	}
	if err := s.file.Save(updated); err != nil {
		return nil, fmt.Errorf("save resources catalog: %w", err)
	}

	s.deps.snapshot(ctx, s.logger, string(model.SyncKindResources), updated)

	s.logger.Info("sync complete",
		"drive", stats.DriveResources,
		"manual", stats.ManualResources,
		"total", stats.TotalResources,
	)

	return &ResourceResult{
		Message: fmt.Sprintf("Synced %d resources from Google Drive", stats.DriveResources),
		Stats:   stats,
	}, nil
}
