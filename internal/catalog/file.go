// Package catalog reads and writes the JSON catalog files served by the
// site. A catalog is always replaced as a whole; writes go to a temp file in
// the same directory which is then renamed over the target.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dukerupert/clubsite/internal/model"
)

// EventsFile is the events catalog on disk.
type EventsFile struct {
	path string
}

func NewEventsFile(path string) *EventsFile {
	return &EventsFile{path: path}
}

func (f *EventsFile) Path() string { return f.path }

// Load returns the persisted events. A missing file yields an empty catalog.
// Older catalogs stored a bare array of events; those load as a catalog
// without a sync timestamp.
func (f *EventsFile) Load() (model.EventsCatalog, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.EventsCatalog{Events: []model.CalendarRecord{}}, nil
	}
	if err != nil {
		return model.EventsCatalog{}, fmt.Errorf("read events catalog: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var events []model.CalendarRecord
		if err := json.Unmarshal(data, &events); err != nil {
			return model.EventsCatalog{}, fmt.Errorf("decode events array: %w", err)
		}
		return model.EventsCatalog{Events: nonNilEvents(events)}, nil
	}

	var c model.EventsCatalog
	if err := json.Unmarshal(data, &c); err != nil {
		return model.EventsCatalog{}, fmt.Errorf("decode events catalog: %w", err)
	}
	c.Events = nonNilEvents(c.Events)
	return c, nil
}

func (f *EventsFile) Save(c model.EventsCatalog) error {
	c.Events = nonNilEvents(c.Events)
	if err := writeJSONFile(f.path, c); err != nil {
		return fmt.Errorf("write events catalog: %w", err)
	}
	return nil
}

// ResourcesFile is the resources catalog on disk.
type ResourcesFile struct {
	path string
}

func NewResourcesFile(path string) *ResourcesFile {
	return &ResourcesFile{path: path}
}

func (f *ResourcesFile) Path() string { return f.path }

// Load returns the persisted resources. A missing file yields an empty catalog.
func (f *ResourcesFile) Load() (model.ResourcesCatalog, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.ResourcesCatalog{Resources: []model.Resource{}}, nil
	}
	if err != nil {
		return model.ResourcesCatalog{}, fmt.Errorf("read resources catalog: %w", err)
	}

	var c model.ResourcesCatalog
	if err := json.Unmarshal(data, &c); err != nil {
		return model.ResourcesCatalog{}, fmt.Errorf("decode resources catalog: %w", err)
	}
	if c.Resources == nil {
		c.Resources = []model.Resource{}
	}
	return c, nil
}

func (f *ResourcesFile) Save(c model.ResourcesCatalog) error {
	if c.Resources == nil {
		c.Resources = []model.Resource{}
	}
	if err := writeJSONFile(f.path, c); err != nil {
		return fmt.Errorf("write resources catalog: %w", err)
	}
	return nil
}

func nonNilEvents(events []model.CalendarRecord) []model.CalendarRecord {
	if events == nil {
		return []model.CalendarRecord{}
	}
	return events
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	return os.Rename(tmpName, path)
}
