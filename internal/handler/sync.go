package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/clubsite/internal/middleware"
	"github.com/dukerupert/clubsite/internal/reconcile"
	"github.com/dukerupert/clubsite/internal/syncer"
	"github.com/dukerupert/clubsite/internal/syncerr"
)

// EventSyncer runs an events sync.
type EventSyncer interface {
	Sync(ctx context.Context, trig syncer.Trigger) (*syncer.EventResult, error)
}

// ResourceSyncer runs a resources sync.
type ResourceSyncer interface {
	Sync(ctx context.Context, trig syncer.Trigger) (*syncer.ResourceResult, error)
}

type SyncHandler struct {
	events    EventSyncer
	resources ResourceSyncer
	logger    *slog.Logger
}

func NewSyncHandler(events EventSyncer, resources ResourceSyncer, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{events: events, resources: resources, logger: logger}
}

type eventSyncResponse struct {
	Success     bool                 `json:"success"`
	Synced      int                  `json:"synced"`
	Message     string               `json:"message"`
	TriggeredBy string               `json:"triggeredBy"`
	Stats       reconcile.EventStats `json:"stats"`
}

type resourceSyncResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Stats   reconcile.ResourceStats `json:"stats"`
}

// trigger derives the sync trigger from the request. TrustBearer must run
// first for cron callers to be recognised.
func trigger(r *http.Request) syncer.Trigger {
	src := syncer.SourceManual
	if middleware.IsTrusted(r.Context()) {
		src = syncer.SourceCron
	}
	return syncer.Trigger{Source: src, ClientKey: middleware.RealIP(r)}
}

// SyncEvents handles POST /api/events/sync.
func (h *SyncHandler) SyncEvents(w http.ResponseWriter, r *http.Request) {
	res, err := h.events.Sync(r.Context(), trigger(r))
	if err != nil {
		h.logger.Warn("events sync failed", "error", err)
		status := syncerr.HTTPStatus(err)
		f := failure{Error: "Failed to sync calendar events", Details: err.Error()}

		var rl *syncerr.RateLimitedError
		var cfg *syncerr.ConfigError
		switch {
		case errors.As(err, &rl):
			f = failure{
				Error:    fmt.Sprintf("Rate limit: Please wait %d seconds before syncing again", rl.RetryAfterSeconds()),
				Cooldown: rl.RetryAfterSeconds(),
			}
		case errors.As(err, &cfg):
			f = failure{Error: cfg.Message, Details: err.Error()}
		case status == http.StatusNotFound:
			f.Error = "Calendar not found. Please check the calendar ID and sharing settings."
		case status == http.StatusUnauthorized:
			f.Error = "Calendar API rejected the credentials. Please check the API key."
		}
		writeFailure(w, status, f)
		return
	}

	writeJSON(w, http.StatusOK, eventSyncResponse{
		Success:     true,
		Synced:      res.Synced,
		Message:     res.Message,
		TriggeredBy: res.TriggeredBy,
		Stats:       res.Stats,
	})
}

// SyncResources handles POST /api/resources/google-drive-sync.
func (h *SyncHandler) SyncResources(w http.ResponseWriter, r *http.Request) {
	res, err := h.resources.Sync(r.Context(), trigger(r))
	if err != nil {
		h.logger.Warn("resources sync failed", "error", err)
		status := syncerr.HTTPStatus(err)
		f := failure{Error: "Failed to sync with Google Drive", Details: err.Error()}

		var rl *syncerr.RateLimitedError
		var cfg *syncerr.ConfigError
		switch {
		case errors.As(err, &rl):
			f = failure{Error: "Please wait before syncing again", Cooldown: rl.RetryAfterSeconds()}
		case errors.As(err, &cfg):
			f = failure{Error: cfg.Message, Details: err.Error()}
		case status == http.StatusNotFound:
			f.Error = "Google Drive folder not found. Please check folder ID and permissions."
		case status == http.StatusUnauthorized:
			f.Error = "Service account authentication failed. Please check credentials."
		}
		writeFailure(w, status, f)
		return
	}

	writeJSON(w, http.StatusOK, resourceSyncResponse{
		Success: true,
		Message: res.Message,
		Stats:   res.Stats,
	})
}
