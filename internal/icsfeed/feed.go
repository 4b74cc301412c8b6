// Package icsfeed renders the events catalog as an iCalendar feed that
// members can subscribe to.
package icsfeed

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/dukerupert/clubsite/internal/model"
	"github.com/dukerupert/clubsite/internal/reconcile"
)

const dateLayout = "2006-01-02"

// Options controls feed metadata. Domain qualifies event UIDs.
type Options struct {
	Name   string
	Domain string
}

// Build converts records into a calendar. Records with an unparseable
// start time are skipped. Date-only start times become all-day events.
func Build(records []model.CalendarRecord, opts Options, stamp time.Time) *ical.Calendar {
	if opts.Name == "" {
		opts.Name = "Club Events"
	}
	if opts.Domain == "" {
		opts.Domain = "clubsite.local"
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//clubsite//events//EN")
	cal.SetXWRCalName(opts.Name)

	for _, r := range records {
		start, ok := reconcile.ParseTimestamp(r.StartsAt)
		if !ok {
			continue
		}

		uid := r.ID
		if uid == "" {
			uid = r.CalendarEventID
		}
		ev := cal.AddEvent(uid + "@" + opts.Domain)
		ev.SetDtStampTime(stamp.UTC())
		ev.SetSummary(r.Title)
		if r.Description != "" {
			ev.SetDescription(r.Description)
		}
		if r.Location != "" {
			ev.SetLocation(r.Location)
		}
		if r.RSVPURL != "" {
			ev.SetURL(r.RSVPURL)
		}

		if isDateOnly(r.StartsAt) {
			ev.SetAllDayStartAt(start)
			end, ok := reconcile.ParseTimestamp(r.EndsAt)
			if !ok || !end.After(start) {
				end = start.AddDate(0, 0, 1)
			}
			ev.SetAllDayEndAt(end)
			continue
		}

		ev.SetStartAt(start.UTC())
		if end, ok := reconcile.ParseTimestamp(r.EndsAt); ok && end.After(start) {
			ev.SetEndAt(end.UTC())
		}
	}

	return cal
}

// Render serializes the feed.
func Render(records []model.CalendarRecord, opts Options, stamp time.Time) string {
	return Build(records, opts, stamp).Serialize()
}

func isDateOnly(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != len(dateLayout) {
		return false
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
