package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/clubsite/internal/catalog"
	"github.com/dukerupert/clubsite/internal/icsfeed"
	"github.com/dukerupert/clubsite/internal/model"
	"github.com/dukerupert/clubsite/internal/reconcile"
)

// CatalogHandler serves the persisted catalogs read-only.
type CatalogHandler struct {
	events    *catalog.EventsFile
	resources *catalog.ResourcesFile
	feed      icsfeed.Options
	now       func() time.Time
	logger    *slog.Logger
}

func NewCatalogHandler(events *catalog.EventsFile, resources *catalog.ResourcesFile, feed icsfeed.Options, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		events:    events,
		resources: resources,
		feed:      feed,
		now:       time.Now,
		logger:    logger,
	}
}

// ListEvents handles GET /api/events. ?when=upcoming or ?when=past filters
// by start time; records with unparseable times only appear unfiltered.
func (h *CatalogHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	c, err := h.events.Load()
	if err != nil {
		h.logger.Error("load events catalog", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load events"})
		return
	}

	when := r.URL.Query().Get("when")
	switch when {
	case "", "all":
	case "upcoming", "past":
		now := h.now()
		filtered := make([]model.CalendarRecord, 0, len(c.Events))
		for _, e := range c.Events {
			t, ok := reconcile.ParseTimestamp(e.StartsAt)
			if !ok {
				continue
			}
			if (when == "upcoming") == !t.Before(now) {
				filtered = append(filtered, e)
			}
		}
		c.Events = filtered
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "when must be upcoming, past or all"})
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// ListResources handles GET /api/resources with optional ?category= and
// ?tag= filters.
func (h *CatalogHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	c, err := h.resources.Load()
	if err != nil {
		h.logger.Error("load resources catalog", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load resources"})
		return
	}

	category := r.URL.Query().Get("category")
	tag := strings.ToLower(r.URL.Query().Get("tag"))
	if category != "" || tag != "" {
		filtered := make([]model.Resource, 0, len(c.Resources))
		for _, res := range c.Resources {
			if category != "" && string(res.Category) != category {
				continue
			}
			if tag != "" && !hasTag(res.Tags, tag) {
				continue
			}
			filtered = append(filtered, res)
		}
		c.Resources = filtered
	}

	writeJSON(w, http.StatusOK, c)
}

// EventsFeed handles GET /events.ics.
func (h *CatalogHandler) EventsFeed(w http.ResponseWriter, r *http.Request) {
	c, err := h.events.Load()
	if err != nil {
		h.logger.Error("load events catalog", "error", err)
		http.Error(w, "failed to load events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="events.ics"`)
	w.Write([]byte(icsfeed.Render(c.Events, h.feed, h.now())))
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.ToLower(t) == want {
			return true
		}
	}
	return false
}
