// Package reconcile merges freshly fetched external records into a
// previously persisted catalog. Locally authored records always survive a
// pass; external records are replaced by what the source reports now.
package reconcile

import (
	"sort"
	"time"

	"github.com/dukerupert/clubsite/internal/model"
)

// IDFunc returns a fresh internal identifier for a newly imported record.
type IDFunc func() string

// EventStats summarizes a calendar reconciliation pass.
type EventStats struct {
	Total        int `json:"total"`
	FromCalendar int `json:"fromCalendar"`
	Manual       int `json:"manual"`
	New          int `json:"new"`
	Updated      int `json:"updated"`
	Removed      int `json:"removed"`

	// Vanished lists removed records whose start time is still in the
	// future. The fetch is capped and only returns upcoming events, so
	// these are either cancellations or events beyond the cap.
	Vanished []model.CalendarRecord `json:"-"`
}

// Events merges fetched calendar records into previous.
//
// Manual records are kept unchanged. A previously imported record whose
// calendar ID is still fetched takes the fetched fields but keeps its
// internal ID; one that is no longer fetched is dropped. Fetched records
// not seen before get an ID from newID. The result is ordered by start
// time, ascending, with unparseable start times last.
//
// Each calendar ID appears at most once in the result. Fetched records
// without a calendar ID are ignored.
func Events(previous, fetched []model.CalendarRecord, newID IDFunc, now time.Time) ([]model.CalendarRecord, EventStats) {
	var manual, priorExternal []model.CalendarRecord
	for _, r := range previous {
		if r.Provenance().Manual() {
			manual = append(manual, r)
		} else {
			priorExternal = append(priorExternal, r)
		}
	}

	byExternalID := make(map[string]model.CalendarRecord, len(fetched))
	for _, r := range fetched {
		if p := r.Provenance(); !p.Manual() {
			byExternalID[p.ExternalID] = r
		}
	}

	var stats EventStats
	seen := make(map[string]bool, len(fetched))

	updated := make([]model.CalendarRecord, 0, len(priorExternal))
	for _, old := range priorExternal {
		extID := old.Provenance().ExternalID
		current, ok := byExternalID[extID]
		if !ok || seen[extID] {
			if !ok && startsAfter(old, now) {
				stats.Vanished = append(stats.Vanished, old)
			}
			continue
		}
		current.ID = old.ID
		updated = append(updated, current)
		seen[extID] = true
	}

	var added []model.CalendarRecord
	for _, r := range fetched {
		p := r.Provenance()
		if p.Manual() || seen[p.ExternalID] {
			continue
		}
		rec := byExternalID[p.ExternalID]
		rec.ID = newID()
		added = append(added, rec)
		seen[p.ExternalID] = true
	}

	merged := make([]model.CalendarRecord, 0, len(manual)+len(updated)+len(added))
	merged = append(merged, manual...)
	merged = append(merged, updated...)
	merged = append(merged, added...)

	sort.SliceStable(merged, func(i, j int) bool {
		return earlier(merged[i].StartsAt, merged[j].StartsAt)
	})

	stats.Total = len(merged)
	stats.FromCalendar = len(updated) + len(added)
	stats.Manual = len(manual)
	stats.New = len(added)
	stats.Updated = len(updated)
	stats.Removed = len(priorExternal) - len(updated)
	return merged, stats
}

func startsAfter(r model.CalendarRecord, now time.Time) bool {
	t, ok := ParseTimestamp(r.StartsAt)
	return ok && t.After(now)
}
