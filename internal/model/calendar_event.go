package model

// CalendarRecord is one entry of the events catalog. Records imported from
// the club calendar carry CalendarEventID; records without it were authored
// locally.
type CalendarRecord struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	StartsAt        string `json:"startsAt"`
	EndsAt          string `json:"endsAt,omitempty"`
	Location        string `json:"location,omitempty"`
	Description     string `json:"description,omitempty"`
	RSVPURL         string `json:"rsvpUrl,omitempty"`
	CalendarEventID string `json:"calendarEventId,omitempty"`
}

// ProvenanceKind tells where a record came from.
type ProvenanceKind int

const (
	ProvenanceManual ProvenanceKind = iota
	ProvenanceExternal
)

// Provenance is the origin of a CalendarRecord. ExternalID is set only when
// Kind is ProvenanceExternal.
type Provenance struct {
	Kind       ProvenanceKind
	ExternalID string
}

// Manual reports whether the record was authored locally.
func (p Provenance) Manual() bool {
	return p.Kind == ProvenanceManual
}

// Provenance classifies the record by its external calendar ID.
func (r CalendarRecord) Provenance() Provenance {
	if r.CalendarEventID == "" {
		return Provenance{Kind: ProvenanceManual}
	}
	return Provenance{Kind: ProvenanceExternal, ExternalID: r.CalendarEventID}
}

// EventsCatalog is the persisted shape of the events file.
type EventsCatalog struct {
	LastSyncedAt string           `json:"lastSyncedAt,omitempty"`
	Events       []CalendarRecord `json:"events"`
}
