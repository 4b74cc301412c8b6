package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/clubsite/internal/catalog"
	"github.com/dukerupert/clubsite/internal/model"
	"github.com/dukerupert/clubsite/internal/reconcile"
)

// EventsCooldownKey is the single cooldown slot shared by all event sync
// callers.
const EventsCooldownKey = "events"

// EventFetcher lists upcoming calendar events.
type EventFetcher interface {
	FetchUpcoming(ctx context.Context, now time.Time) ([]model.CalendarRecord, error)
}

// EventResult is the outcome of a successful events sync.
type EventResult struct {
	Synced      int
	Message     string
	TriggeredBy string
	Stats       reconcile.EventStats
}

type EventSyncer struct {
	fetcher EventFetcher
	file    *catalog.EventsFile
	newID   reconcile.IDFunc
	deps    Deps
	logger  *slog.Logger
}

func NewEventSyncer(fetcher EventFetcher, file *catalog.EventsFile, deps Deps) *EventSyncer {
	deps = deps.withDefaults()
	return &EventSyncer{
		fetcher: fetcher,
		file:    file,
		newID:   uuid.NewString,
		deps:    deps,
		logger:  deps.Logger.With("component", "event_sync"),
	}
}

// Sync pulls the calendar and rewrites the events catalog. The catalog is
// left untouched when any step before the write fails. The cooldown starts
// only after a successful write.
func (s *EventSyncer) Sync(ctx context.Context, trig Trigger) (*EventResult, error) {
	started := s.deps.Gate.Now()
	s.logger.Info("sync triggered", "trigger", trig.Label())

	result, err := s.run(ctx, trig, started)
	if err != nil {
		s.logger.Warn("sync failed", "trigger", trig.Label(), "error", err)
		s.deps.record(s.logger, model.SyncKindEvents, trig, started, nil, err)
		s.deps.notify(string(model.SyncKindEvents), "failed", map[string]any{"error": err.Error()})
		return nil, err
	}

	s.deps.record(s.logger, model.SyncKindEvents, trig, started, result.Stats, nil)
	s.deps.notify(string(model.SyncKindEvents), "completed", map[string]any{
		"total": result.Stats.Total,
		"new":   result.Stats.New,
	})
	return result, nil
}

func (s *EventSyncer) run(ctx context.Context, trig Trigger, now time.Time) (*EventResult, error) {
	if !trig.Trusted() {
		if err := s.deps.Gate.Check(EventsCooldownKey); err != nil {
			return nil, err
		}
	}

	fetched, err := s.fetcher.FetchUpcoming(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar events: %w", err)
	}

	current, err := s.file.Load()
	if err != nil {
		return nil, fmt.Errorf("load events catalog: %w", err)
	}

	merged, stats := reconcile.Events(current.Events, fetched, s.newID, now)
	for _, v := range stats.Vanished {
		s.logger.Warn("upcoming event no longer in calendar",
			"calendar_event_id", v.CalendarEventID,
			"title", v.Title,
			"starts_at", v.StartsAt,
		)
	}

	updated := model.EventsCatalog{
		LastSyncedAt: now.UTC().Format(time.RFC3339Nano),
		Events:       merged,
	}
	if err := s.file.Save(updated); err != nil {
		return nil, fmt.Errorf("save events catalog: %w", err)
	}

	if err := s.deps.Gate.Record(EventsCooldownKey); err != nil {
		s.logger.Error("record cooldown", "error", err)
	}

	s.deps.snapshot(ctx, s.logger, string(model.SyncKindEvents), updated)

	s.logger.Info("sync complete",
		"fetched", len(fetched),
		"total", stats.Total,
		"new", stats.New,
		"updated", stats.Updated,
		"removed", stats.Removed,
	)

	return &EventResult{
		Synced:      len(fetched),
		Message:     fmt.Sprintf("Successfully synced %d events from Google Calendar", len(fetched)),
		TriggeredBy: trig.Label(),
		Stats:       stats,
	}, nil
}
