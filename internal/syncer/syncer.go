// Package syncer runs one sync pass for a catalog: cooldown check, fetch,
// reconcile, persist, then history, snapshot and live notification.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/dukerupert/clubsite/internal/cooldown"
	"github.com/dukerupert/clubsite/internal/model"
	"github.com/dukerupert/clubsite/internal/syncerr"
	"github.com/dukerupert/clubsite/internal/websocket"
)

// Source names what started a sync.
type Source string

const (
	SourceManual    Source = "manual"
	SourceCron      Source = "cron"
	SourceScheduler Source = "scheduler"
	SourceCLI       Source = "cli"
)

// Trigger describes the caller of a sync. ClientKey identifies the caller
// for per-client cooldowns, usually its IP.
type Trigger struct {
	Source    Source
	ClientKey string
}

// Trusted reports whether the cooldown is waived for this trigger. Only
// anonymous HTTP callers are throttled.
func (t Trigger) Trusted() bool {
	return t.Source != SourceManual && t.Source != ""
}

// Label is the human-readable trigger reported to API callers.
func (t Trigger) Label() string {
	switch t.Source {
	case SourceCron:
		return "Cron"
	case SourceScheduler:
		return "Scheduler"
	case SourceCLI:
		return "CLI"
	default:
		return "Manual Request"
	}
}

// RunRecorder persists sync history.
type RunRecorder interface {
	Create(run model.SyncRun) (*model.SyncRun, error)
}

// Snapshotter stores a copy of a catalog after a successful sync.
type Snapshotter interface {
	Enabled() bool
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Notifier pushes sync notifications to connected clients.
type Notifier interface {
	Broadcast(msg websocket.Message)
}

// Deps are the collaborators shared by both syncers. Runs, Snapshots and
// Notifier are optional.
type Deps struct {
	Gate      *cooldown.Gate
	Runs      RunRecorder
	Snapshots Snapshotter
	Notifier  Notifier
	Logger    *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Gate == nil {
		d.Gate = cooldown.NewGate(cooldown.NewMemoryStore(), cooldown.DefaultWindow, nil)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// record writes a history row. Failures are logged; history never fails a
// sync.
func (d Deps) record(logger *slog.Logger, kind model.SyncKind, trig Trigger, started time.Time, stats any, syncErr error) {
	if d.Runs == nil {
		return
	}

	run := model.SyncRun{
		Kind:       kind,
		Trigger:    string(trig.Source),
		Status:     model.SyncStatusSuccess,
		StartedAt:  started,
		FinishedAt: d.Gate.Now(),
	}
	if run.Trigger == "" {
		run.Trigger = string(SourceManual)
	}
	if stats != nil {
		if data, err := json.Marshal(stats); err == nil {
			run.Stats = data
		}
	}
	if syncErr != nil {
		run.Status = model.SyncStatusFailed
		if errors.Is(syncErr, syncerr.ErrRateLimited) {
			run.Status = model.SyncStatusRateLimited
		}
		run.ErrorMessage = syncErr.Error()
	}

	if _, err := d.Runs.Create(run); err != nil {
		logger.Error("record sync run", "error", err)
	}
}

func (d Deps) snapshot(ctx context.Context, logger *slog.Logger, name string, catalog any) {
	if d.Snapshots == nil || !d.Snapshots.Enabled() {
		return
	}
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		logger.Error("marshal snapshot", "error", err)
		return
	}
	if _, err := d.Snapshots.Upload(ctx, name, data); err != nil {
		logger.Error("upload snapshot", "error", err)
	}
}

func (d Deps) notify(catalog, action string, extra map[string]any) {
	if d.Notifier == nil {
		return
	}
	d.Notifier.Broadcast(websocket.NewMessage(catalog, action, extra))
}
