package model

import "time"

// Transparency is the free/busy classification of an event for
// scheduling-conflict purposes in subscribing clients.
type Transparency int

const (
	// TransparencyUnspecified means the source row said nothing; the output
	// feed omits TRANSP and lets the client apply its own default.
	TransparencyUnspecified Transparency = iota
	TransparencyFree
	TransparencyBusy
)

// Event is one normalized calendar event, assembled from a single source row.
// Events are immutable once built and belong to exactly one Feed.
type Event struct {
	UID   string
	Title string

	// Start / End are in the configured build timezone. For all-day events
	// only the date portion is meaningful and End is exclusive (the day
	// after the last day of the event). End is always strictly after Start.
	Start  time.Time
	End    time.Time
	AllDay bool

	// Optional attributes; empty string means "not present" and the field
	// is omitted from the serialized event.
	Location    string
	Description string
	URL         string

	Transparency Transparency
}

// Feed is a named, ordered collection of events sharing one calendar name.
type Feed struct {
	// Name is the original, human-readable calendar name from the source.
	Name string
	// Slug is the URL/filename-safe identifier derived from Name,
	// unique within one build.
	Slug string

	Events []Event
}

// ManifestEntry describes one generated feed for the landing page.
type ManifestEntry struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	ICS  string `json:"ics"`
}

// Stats aggregates per-build diagnostic counters. Row-level failures never
// abort a build; they only show up here.
type Stats struct {
	RowsTotal         int
	RowsSkipped       int
	SkippedNoCalendar int
	SkippedNoTitle    int
	SkippedNoTime     int
	Events            int

	// PerFeed maps calendar display name to surviving event count.
	PerFeed map[string]int
}

// BuildResult is the complete output of one pipeline pass.
type BuildResult struct {
	Feeds    []Feed
	Manifest []ManifestEntry
	Stats    Stats
}
