package feedwriter_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dyncal/internal/cal"
	"dyncal/internal/feedwriter"
	"dyncal/internal/model"
	"dyncal/internal/sheet"
)

var stamp = time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)

func timedEvent() model.Event {
	return model.Event{
		UID:   "abc123@dyncal",
		Title: "Standup",
		Start: time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.September, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestSerializeTimedEvent(t *testing.T) {
	ev := timedEvent()
	ev.Location = "Room 1"
	ev.Description = "Daily sync"
	ev.URL = "https://example.com/standup"

	out := feedwriter.Serialize(model.Feed{Name: "Team Events", Slug: "team-events", Events: []model.Event{ev}}, stamp)

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "METHOD:PUBLISH")
	assert.Contains(t, out, "X-WR-CALNAME:Team Events")
	assert.Contains(t, out, "UID:abc123@dyncal")
	assert.Contains(t, out, "SUMMARY:Standup")
	assert.Contains(t, out, "DTSTART:20250901T090000Z")
	assert.Contains(t, out, "DTEND:20250901T100000Z")
	assert.Contains(t, out, "LOCATION:Room 1")
	assert.Contains(t, out, "DESCRIPTION:Daily sync")
	assert.Contains(t, out, "END:VCALENDAR")
}

func TestSerializeAllDayEvent(t *testing.T) {
	ev := model.Event{
		UID:    "offsite@dyncal",
		Title:  "Offsite",
		Start:  time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2025, time.September, 2, 0, 0, 0, 0, time.UTC),
		AllDay: true,
	}

	out := feedwriter.Serialize(model.Feed{Name: "Team", Slug: "team", Events: []model.Event{ev}}, stamp)

	assert.Contains(t, out, "DTSTART;VALUE=DATE:20250901")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20250902")
}

func TestSerializeTransparency(t *testing.T) {
	free := timedEvent()
	free.UID = "free@dyncal"
	free.Transparency = model.TransparencyFree

	busy := timedEvent()
	busy.UID = "busy@dyncal"
	busy.Transparency = model.TransparencyBusy

	unset := timedEvent()
	unset.UID = "unset@dyncal"

	out := feedwriter.Serialize(model.Feed{Name: "T", Slug: "t", Events: []model.Event{free, busy}}, stamp)
	assert.Contains(t, out, "TRANSP:TRANSPARENT")
	assert.Contains(t, out, "TRANSP:OPAQUE")

	out = feedwriter.Serialize(model.Feed{Name: "T", Slug: "t", Events: []model.Event{unset}}, stamp)
	assert.NotContains(t, out, "TRANSP")
}

func TestSerializeOmitsEmptyOptionalFields(t *testing.T) {
	out := feedwriter.Serialize(model.Feed{Name: "T", Slug: "t", Events: []model.Event{timedEvent()}}, stamp)

	assert.NotContains(t, out, "LOCATION")
	assert.NotContains(t, out, "DESCRIPTION")
	assert.NotContains(t, out, "URL")
}

func TestSerializeReproducible(t *testing.T) {
	feed := model.Feed{Name: "T", Slug: "t", Events: []model.Event{timedEvent()}}
	assert.Equal(t, feedwriter.Serialize(feed, stamp), feedwriter.Serialize(feed, stamp))
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	feeds := []model.Feed{
		{Name: "Team Events", Slug: "team-events", Events: []model.Event{timedEvent()}},
		{Name: "HR", Slug: "hr", Events: []model.Event{timedEvent()}},
	}

	require.NoError(t, feedwriter.WriteAll(dir, "", feeds, stamp))

	for _, slug := range []string{"team-events", "hr"} {
		data, err := os.ReadFile(filepath.Join(dir, "calendars", slug+".ics"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "BEGIN:VCALENDAR")
	}
}

func TestWriteAllHonorsFeedsPath(t *testing.T) {
	dir := t.TempDir()
	feeds := []model.Feed{
		{Name: "Team", Slug: "team", Events: []model.Event{timedEvent()}},
	}

	require.NoError(t, feedwriter.WriteAll(dir, "/feeds", feeds, stamp))

	_, err := os.Stat(filepath.Join(dir, "feeds", "team.ics"))
	require.NoError(t, err)
}

func TestDir(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "calendars"), feedwriter.Dir("out", ""))
	assert.Equal(t, filepath.Join("out", "calendars"), feedwriter.Dir("out", "/calendars"))
	assert.Equal(t, filepath.Join("out", "feeds"), feedwriter.Dir("out", "/feeds/"))
	assert.Equal(t, filepath.Join("out", "feeds"), feedwriter.Dir("out", "feeds"))
}

// A non-default feeds path must land the files exactly where the manifest
// says they are, relative to the served output dir.
func TestWriteAllAgreesWithManifest(t *testing.T) {
	table := &sheet.Table{
		Headers: []string{"Calendar", "Title", "Start"},
		Rows: []sheet.Row{
			{"Calendar": "Team", "Title": "Standup", "Start": "2025-09-01 09:00"},
			{"Calendar": "Ops", "Title": "Handover", "Start": "2025-09-01 10:00"},
		},
	}

	res, err := cal.Build(table, cal.Options{FeedsPath: "/feeds"})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, feedwriter.WriteAll(dir, "/feeds", res.Feeds, stamp))

	require.Len(t, res.Manifest, 2)
	for _, entry := range res.Manifest {
		onDisk := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(entry.ICS, "/")))
		_, err := os.Stat(onDisk)
		require.NoError(t, err, "manifest entry %q has no file", entry.ICS)
	}
}
