// Package gcal lists upcoming events from the club's public Google Calendar.
package gcal

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/dukerupert/clubsite/internal/model"
	"github.com/dukerupert/clubsite/internal/syncerr"
)

// DefaultMaxResults caps a single fetch.
const DefaultMaxResults = 50

const serviceName = "google calendar"

// Config holds calendar access settings.
type Config struct {
	CalendarID string
	APIKey     string
	MaxResults int64

	// Endpoint and HTTPClient override the Google API transport; both are
	// only set in tests.
	Endpoint   string
	HTTPClient *http.Client
}

// Client fetches events through the Calendar v3 API using an API key.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	return &Client{cfg: cfg}
}

// Configured reports whether both the calendar ID and API key are set.
func (c *Client) Configured() bool {
	return c.cfg.CalendarID != "" && c.cfg.APIKey != ""
}

// FetchUpcoming returns up to MaxResults single events starting at or after
// now, ordered by start time. Returned records carry the calendar event ID
// and no internal ID.
func (c *Client) FetchUpcoming(ctx context.Context, now time.Time) ([]model.CalendarRecord, error) {
	if !c.Configured() {
		return nil, syncerr.NewConfigError(serviceName, "missing required settings: calendar ID or API key", nil)
	}

	opts := []option.ClientOption{option.WithAPIKey(c.cfg.APIKey)}
	if c.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.cfg.Endpoint))
	}
	if c.cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(c.cfg.HTTPClient))
	} else {
		opts = append(opts, option.WithHTTPClient(&http.Client{
			Timeout:   30 * time.Second,
			Transport: &apiKeyTransport{key: c.cfg.APIKey, base: http.DefaultTransport},
		}))
	}

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, syncerr.NewConfigError(serviceName, "create service", err)
	}

	resp, err := svc.Events.List(c.cfg.CalendarID).
		TimeMin(now.UTC().Format(time.RFC3339)).
		MaxResults(c.cfg.MaxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, c.mapError(err)
	}

	records := make([]model.CalendarRecord, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Id == "" {
			continue
		}
		records = append(records, MapEvent(item))
	}
	return records, nil
}

func (c *Client) mapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusNotFound {
			return syncerr.NewNotFoundError("calendar", c.cfg.CalendarID)
		}
		return syncerr.NewUpstreamError(serviceName, gerr.Code, err)
	}
	return syncerr.NewUpstreamError(serviceName, 0, err)
}

// MapEvent converts a Calendar API event into a catalog record. All-day
// events use the date form for startsAt and endsAt.
func MapEvent(e *calendar.Event) model.CalendarRecord {
	title := e.Summary
	if title == "" {
		title = "Untitled Event"
	}
	return model.CalendarRecord{
		Title:           title,
		StartsAt:        eventTime(e.Start),
		EndsAt:          eventTime(e.End),
		Location:        e.Location,
		Description:     e.Description,
		RSVPURL:         ExtractRSVPURL(e.Description),
		CalendarEventID: e.Id,
	}
}

func eventTime(t *calendar.EventDateTime) string {
	if t == nil {
		return ""
	}
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

var (
	rsvpPattern = regexp.MustCompile(`(?i)RSVP:\s*(https?://\S+)`)
	urlPattern  = regexp.MustCompile(`(https?://\S+)`)
)

// ExtractRSVPURL returns the link after an "RSVP:" label, or else the first
// link in the description.
func ExtractRSVPURL(description string) string {
	if description == "" {
		return ""
	}
	if m := rsvpPattern.FindStringSubmatch(description); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := urlPattern.FindStringSubmatch(description); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// apiKeyTransport adds the API key to every request. option.WithAPIKey is
// ignored once a custom HTTP client is supplied.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	q := r.URL.Query()
	q.Set("key", t.key)
	r.URL.RawQuery = q.Encode()
	return t.base.RoundTrip(r)
}
