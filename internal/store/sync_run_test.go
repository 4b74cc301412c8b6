package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dukerupert/clubsite/internal/database"
	"github.com/dukerupert/clubsite/internal/model"
)

func setupSyncRunDB(t *testing.T) *SyncRunStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSyncRunStore(db)
}

func TestSyncRunCreateAndGet(t *testing.T) {
	s := setupSyncRunDB(t)

	started := time.Date(2025, 2, 1, 6, 0, 0, 0, time.UTC)
	run, err := s.Create(model.SyncRun{
		Kind:       model.SyncKindEvents,
		Trigger:    "scheduler",
		Status:     model.SyncStatusSuccess,
		Stats:      json.RawMessage(`{"total":3}`),
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("expected non-zero id")
	}
	if run.Kind != model.SyncKindEvents {
		t.Errorf("kind = %q, want %q", run.Kind, model.SyncKindEvents)
	}
	if string(run.Stats) != `{"total":3}` {
		t.Errorf("stats = %s, want {\"total\":3}", run.Stats)
	}
	if !run.StartedAt.Equal(started) {
		t.Errorf("started_at = %v, want %v", run.StartedAt, started)
	}
	if run.ErrorMessage != "" {
		t.Errorf("error_message = %q, want empty", run.ErrorMessage)
	}
}

func TestSyncRunGetByIDNotFound(t *testing.T) {
	s := setupSyncRunDB(t)

	got, err := s.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent run")
	}
}

func TestSyncRunListRecent(t *testing.T) {
	s := setupSyncRunDB(t)

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	kinds := []model.SyncKind{model.SyncKindEvents, model.SyncKindResources, model.SyncKindEvents}
	for i, k := range kinds {
		_, err := s.Create(model.SyncRun{
			Kind:       k,
			Trigger:    "manual",
			Status:     model.SyncStatusSuccess,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Second),
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	all, err := s.ListRecent("", 10)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if !all[0].StartedAt.After(all[1].StartedAt) {
		t.Error("runs should be newest first")
	}

	events, err := s.ListRecent(model.SyncKindEvents, 1)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if !events[0].StartedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("latest events run started_at = %v", events[0].StartedAt)
	}
}

func TestSyncRunLastSuccess(t *testing.T) {
	s := setupSyncRunDB(t)

	got, err := s.LastSuccess(model.SyncKindResources)
	if err != nil {
		t.Fatalf("last success: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil with no runs")
	}

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	s.Create(model.SyncRun{Kind: model.SyncKindResources, Trigger: "manual", Status: model.SyncStatusSuccess, StartedAt: base, FinishedAt: base})
	s.Create(model.SyncRun{Kind: model.SyncKindResources, Trigger: "manual", Status: model.SyncStatusFailed, ErrorMessage: "boom", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour)})

	got, err = s.LastSuccess(model.SyncKindResources)
	if err != nil {
		t.Fatalf("last success: %v", err)
	}
	if got == nil || !got.StartedAt.Equal(base) {
		t.Errorf("last success = %+v, want run started at %v", got, base)
	}
}

func TestSyncRunDeleteOlderThan(t *testing.T) {
	s := setupSyncRunDB(t)

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	s.Create(model.SyncRun{Kind: model.SyncKindEvents, Trigger: "manual", Status: model.SyncStatusSuccess, StartedAt: base, FinishedAt: base})
	s.Create(model.SyncRun{Kind: model.SyncKindEvents, Trigger: "manual", Status: model.SyncStatusSuccess, StartedAt: base.Add(48 * time.Hour), FinishedAt: base.Add(48 * time.Hour)})

	n, err := s.DeleteOlderThan(base.Add(24 * time.Hour))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
}
