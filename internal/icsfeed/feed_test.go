package icsfeed

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/clubsite/internal/model"
)

func TestRender(t *testing.T) {
	records := []model.CalendarRecord{
		{ID: "a", Title: "Kickoff", StartsAt: "2025-02-01T18:00:00Z", EndsAt: "2025-02-01T20:00:00Z", Location: "Room 1", RSVPURL: "https://forms.gle/x"},
		{ID: "b", Title: "Retreat", StartsAt: "2025-03-10"},
		{ID: "c", Title: "Broken", StartsAt: "soon"},
	}
	stamp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	out := Render(records, Options{Name: "Test Club", Domain: "club.example"}, stamp)
	assert.Contains(t, out, "X-WR-CALNAME:Test Club")
	assert.NotContains(t, out, "Broken")

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "a@club.example", first.GetProperty(ical.ComponentPropertyUniqueId).Value)
	assert.Equal(t, "Kickoff", first.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "Room 1", first.GetProperty(ical.ComponentPropertyLocation).Value)
	start, err := first.GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2025, 2, 1, 18, 0, 0, 0, time.UTC)), "start = %v", start)

	allDay := events[1]
	dtStart := allDay.GetProperty(ical.ComponentPropertyDtStart)
	require.NotNil(t, dtStart)
	assert.Equal(t, "20250310", dtStart.Value)
	dtEnd := allDay.GetProperty(ical.ComponentPropertyDtEnd)
	require.NotNil(t, dtEnd)
	assert.Equal(t, "20250311", dtEnd.Value)
}

func TestRenderDefaults(t *testing.T) {
	out := Render(nil, Options{}, time.Now())
	assert.Contains(t, out, "X-WR-CALNAME:Club Events")
	assert.Contains(t, out, "BEGIN:VCALENDAR")
}

func TestIsDateOnly(t *testing.T) {
	assert.True(t, isDateOnly("2025-03-10"))
	assert.False(t, isDateOnly("2025-03-10T10:00"))
	assert.False(t, isDateOnly("2025-13-40"))
}
