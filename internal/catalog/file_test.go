package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dukerupert/clubsite/internal/model"
)

func TestEventsLoadMissingFile(t *testing.T) {
	f := NewEventsFile(filepath.Join(t.TempDir(), "events.json"))

	c, err := f.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Events == nil || len(c.Events) != 0 {
		t.Errorf("events = %v, want empty non-nil slice", c.Events)
	}
}

func TestEventsLoadLegacyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	legacy := `[{"id":"a","title":"Kickoff","startsAt":"2025-01-01T18:00:00Z"}]`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := NewEventsFile(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Events) != 1 || c.Events[0].ID != "a" {
		t.Fatalf("events = %+v, want single event a", c.Events)
	}
	if c.LastSyncedAt != "" {
		t.Errorf("lastSyncedAt = %q, want empty", c.LastSyncedAt)
	}
}

func TestEventsLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte(`{"events": [`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := NewEventsFile(path).Load(); err == nil {
		t.Error("expected error for malformed catalog")
	}
}

func TestEventsSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	f := NewEventsFile(filepath.Join(dir, "data", "events.json"))

	in := model.EventsCatalog{
		LastSyncedAt: "2025-01-01T00:00:00Z",
		Events: []model.CalendarRecord{
			{ID: "a", Title: "Kickoff", StartsAt: "2025-01-10", CalendarEventID: "ev1"},
			{ID: "b", Title: "Office Hours", StartsAt: "2025-01-05"},
		},
	}
	if err := f.Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := f.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.LastSyncedAt != in.LastSyncedAt {
		t.Errorf("lastSyncedAt = %q, want %q", out.LastSyncedAt, in.LastSyncedAt)
	}
	if len(out.Events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(out.Events))
	}
	if out.Events[0].CalendarEventID != "ev1" || out.Events[1].CalendarEventID != "" {
		t.Errorf("calendar ids = %q, %q", out.Events[0].CalendarEventID, out.Events[1].CalendarEventID)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the catalog (temp file left behind?)", len(entries))
	}
}

func TestResourcesSaveAndLoad(t *testing.T) {
	f := NewResourcesFile(filepath.Join(t.TempDir(), "resources.json"))

	views := 12
	in := model.ResourcesCatalog{
		LastUpdated: "2025-02-01T00:00:00Z",
		Resources: []model.Resource{
			{ID: "m1", Title: "Style Guide", Category: model.CategoryDocument, Tags: []string{"guide"}, FileType: "pdf", UploadedAt: "2024-09-01", Views: &views},
			{ID: "gdrive-x", Title: "Slides", Category: model.CategoryPresentation, Tags: []string{}, FileType: "pptx", UploadedAt: "2025-01-01", Source: model.SourceGoogleDrive},
		},
	}
	if err := f.Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := f.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out.Resources) != 2 {
		t.Fatalf("len(resources) = %d, want 2", len(out.Resources))
	}
	if out.Resources[0].Views == nil || *out.Resources[0].Views != 12 {
		t.Errorf("views not carried through: %v", out.Resources[0].Views)
	}
	if out.Resources[0].FromDrive() {
		t.Error("resource without source should be manual")
	}
	if !out.Resources[1].FromDrive() {
		t.Error("google-drive resource should report FromDrive")
	}
}

func TestResourcesLoadMissingFile(t *testing.T) {
	c, err := NewResourcesFile(filepath.Join(t.TempDir(), "nope.json")).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Resources == nil || len(c.Resources) != 0 {
		t.Errorf("resources = %v, want empty non-nil slice", c.Resources)
	}
}
