package cal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dyncal/internal/model"
	"dyncal/internal/sheet"
)

// ErrNoEvents is returned when a build produces zero events across all
// feeds. Individual bad rows are skipped silently; a completely empty build
// signals a systemic input problem (wrong column names, wrong sheet) and is
// a hard failure.
var ErrNoEvents = errors.New("no events produced from any row")

// Options configures one build pass.
type Options struct {
	// Location is the fixed zone all date/time cells are interpreted in;
	// nil means UTC.
	Location *time.Location

	// DefaultDuration is the fallback span for timed events; zero means
	// DefaultEventDuration.
	DefaultDuration time.Duration

	// FeedsPath is the URL path prefix for manifest feed locations;
	// "" means "/calendars".
	FeedsPath string

	// IncludeEmptyFeeds keeps calendars whose every row failed validation
	// in the output and manifest.
	IncludeEmptyFeeds bool
}

// feedsPath normalizes the manifest prefix to "/<path>" with no trailing
// slash, matching how the feed writer resolves its directory.
func (o Options) feedsPath() string {
	p := strings.Trim(o.FeedsPath, "/")
	if p == "" {
		p = "calendars"
	}
	return "/" + p
}

// feedAcc accumulates one feed while rows stream through the build.
type feedAcc struct {
	name   string
	slug   string
	events []model.Event
}

// Build runs the whole normalization pipeline over one table snapshot:
// resolve fields, normalize and assemble each row, partition events into
// feeds by first-seen calendar order, and derive the manifest.
//
// The returned BuildResult always carries the diagnostic Stats, including
// when Build fails with ErrNoEvents.
func Build(table *sheet.Table, opts Options) (*model.BuildResult, error) {
	fields, err := ResolveFields(table.Headers)
	if err != nil {
		return nil, err
	}

	b := &builder{
		fields: fields,
		norm: &Normalizer{
			Location:        opts.Location,
			DefaultDuration: opts.DefaultDuration,
		},
	}

	var order []string
	feeds := make(map[string]*feedAcc)
	takenSlugs := make(map[string]bool)

	stats := model.Stats{PerFeed: make(map[string]int)}

	for _, row := range table.Rows {
		stats.RowsTotal++

		calName := b.cell(row, FieldCalendar)
		if calName == "" {
			stats.RowsSkipped++
			stats.SkippedNoCalendar++
			continue
		}

		acc, seen := feeds[calName]
		if !seen {
			acc = &feedAcc{
				name: calName,
				slug: uniqueSlug(calName, takenSlugs),
			}
			feeds[calName] = acc
			order = append(order, calName)
		}

		ev, reason := b.buildEvent(row)
		switch reason {
		case skipNoTitle:
			stats.RowsSkipped++
			stats.SkippedNoTitle++
			continue
		case skipNoTime:
			stats.RowsSkipped++
			stats.SkippedNoTime++
			continue
		}

		acc.events = append(acc.events, ev)
		stats.Events++
	}

	if stats.Events == 0 {
		return &model.BuildResult{Stats: stats}, ErrNoEvents
	}

	result := &model.BuildResult{Stats: stats}
	for _, name := range order {
		acc := feeds[name]
		if len(acc.events) == 0 && !opts.IncludeEmptyFeeds {
			continue
		}
		result.Feeds = append(result.Feeds, model.Feed{
			Name:   acc.name,
			Slug:   acc.slug,
			Events: acc.events,
		})
		result.Manifest = append(result.Manifest, model.ManifestEntry{
			Name: acc.name,
			Slug: acc.slug,
			ICS:  opts.feedsPath() + "/" + acc.slug + ".ics",
		})
		stats.PerFeed[acc.name] = len(acc.events)
	}
	result.Stats = stats

	return result, nil
}

// uniqueSlug derives the feed slug, disambiguating collisions between
// distinct calendar names with a numeric suffix so a later feed never
// overwrites an earlier feed's file.
func uniqueSlug(name string, taken map[string]bool) string {
	base := Slugify(name)
	slug := base
	for i := 2; taken[slug]; i++ {
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	taken[slug] = true
	return slug
}
