package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/clubsite/internal/catalog"
	"github.com/dukerupert/clubsite/internal/icsfeed"
	"github.com/dukerupert/clubsite/internal/model"
)

func newCatalogHandler(t *testing.T, events, resources string) *CatalogHandler {
	t.Helper()
	dir := t.TempDir()
	ep := filepath.Join(dir, "events.json")
	rp := filepath.Join(dir, "resources.json")
	if events != "" {
		os.WriteFile(ep, []byte(events), 0o644)
	}
	if resources != "" {
		os.WriteFile(rp, []byte(resources), 0o644)
	}
	h := NewCatalogHandler(catalog.NewEventsFile(ep), catalog.NewResourcesFile(rp), icsfeed.Options{Name: "Club"}, slog.Default())
	h.now = func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }
	return h
}

const eventsJSON = `{"lastSyncedAt":"2025-01-31T00:00:00Z","events":[
	{"id":"past","title":"Old","startsAt":"2025-01-10T18:00:00Z"},
	{"id":"next","title":"Next","startsAt":"2025-02-10T18:00:00Z"},
	{"id":"tbd","title":"TBD","startsAt":"soon"}
]}`

func TestListEvents(t *testing.T) {
	h := newCatalogHandler(t, eventsJSON, "")

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"past", "next", "tbd"}},
		{"?when=upcoming", []string{"next"}},
		{"?when=past", []string{"past"}},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ListEvents(rec, httptest.NewRequest("GET", "/api/events"+tt.query, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.query, rec.Code)
		}
		var c model.EventsCatalog
		if err := json.NewDecoder(rec.Body).Decode(&c); err != nil {
			t.Fatalf("decode: %v", err)
		}
		var ids []string
		for _, e := range c.Events {
			ids = append(ids, e.ID)
		}
		if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
			t.Errorf("%s: ids = %v, want %v", tt.query, ids, tt.want)
		}
	}

	rec := httptest.NewRecorder()
	h.ListEvents(rec, httptest.NewRequest("GET", "/api/events?when=tomorrow", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid when: status = %d, want 400", rec.Code)
	}
}

func TestListEventsMalformedCatalog(t *testing.T) {
	h := newCatalogHandler(t, `{"events":[`, "")
	rec := httptest.NewRecorder()
	h.ListEvents(rec, httptest.NewRequest("GET", "/api/events", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestListResources(t *testing.T) {
	h := newCatalogHandler(t, "", `{"resources":[
		{"id":"1","title":"Slides","category":"presentation","tags":["ML","intro"],"fileType":"pptx","uploadedAt":"2025-01-01"},
		{"id":"2","title":"Data","category":"dataset","tags":["ml"],"fileType":"csv","uploadedAt":"2025-01-02"},
		{"id":"3","title":"Guide","category":"document","tags":[],"fileType":"pdf","uploadedAt":"2025-01-03"}
	]}`)

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?category=dataset", 1},
		{"?tag=ml", 2},
		{"?category=presentation&tag=ml", 1},
		{"?category=video", 0},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ListResources(rec, httptest.NewRequest("GET", "/api/resources"+tt.query, nil))
		var c model.ResourcesCatalog
		if err := json.NewDecoder(rec.Body).Decode(&c); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(c.Resources) != tt.want {
			t.Errorf("%s: got %d resources, want %d", tt.query, len(c.Resources), tt.want)
		}
	}
}

func TestListResourcesMissingFile(t *testing.T) {
	h := newCatalogHandler(t, "", "")
	rec := httptest.NewRecorder()
	h.ListResources(rec, httptest.NewRequest("GET", "/api/resources", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"resources":[]`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestEventsFeed(t *testing.T) {
	h := newCatalogHandler(t, eventsJSON, "")
	rec := httptest.NewRecorder()
	h.EventsFeed(rec, httptest.NewRequest("GET", "/events.ics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if strings.Count(body, "BEGIN:VEVENT") != 2 {
		t.Errorf("expected 2 events in feed:\n%s", body)
	}
}
