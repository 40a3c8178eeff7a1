// Package feedwriter serializes built feeds into iCalendar files on disk.
package feedwriter

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	appLog "dyncal/internal/log"
	"dyncal/internal/model"
)

const prodID = "-//dyncal//dyncal//EN"

// DefaultFeedsDir is the subdirectory used when no feeds path is configured.
const DefaultFeedsDir = "calendars"

// Dir resolves the on-disk directory feed files are written to. feedsPath is
// the same URL path prefix the manifest records, so the written files and
// the manifest links always agree when the output dir is served at the
// site root.
func Dir(outDir, feedsPath string) string {
	p := strings.Trim(feedsPath, "/")
	if p == "" {
		p = DefaultFeedsDir
	}
	return filepath.Join(outDir, filepath.FromSlash(p))
}

// Serialize renders one feed in the iCalendar wire format. stamp becomes
// every event's DTSTAMP so a rebuild of unchanged input is byte-identical
// given the same stamp.
func Serialize(feed model.Feed, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(feed.Name)

	for _, ev := range feed.Events {
		ve := cal.AddEvent(ev.UID)
		ve.SetDtStampTime(stamp.UTC())
		ve.SetSummary(ev.Title)

		if ev.AllDay {
			ve.SetAllDayStartAt(ev.Start)
			ve.SetAllDayEndAt(ev.End)
		} else {
			ve.SetStartAt(ev.Start.UTC())
			ve.SetEndAt(ev.End.UTC())
		}

		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.URL != "" {
			ve.SetURL(ev.URL)
		}

		switch ev.Transparency {
		case model.TransparencyFree:
			ve.SetTimeTransparency(ics.TransparencyTransparent)
		case model.TransparencyBusy:
			ve.SetTimeTransparency(ics.TransparencyOpaque)
		}
	}

	return cal.Serialize()
}

// WriteAll writes one <slug>.ics per feed under Dir(outDir, feedsPath).
func WriteAll(outDir, feedsPath string, feeds []model.Feed, stamp time.Time) error {
	dir := Dir(outDir, feedsPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, feed := range feeds {
		path := filepath.Join(dir, feed.Slug+".ics")
		if err := os.WriteFile(path, []byte(Serialize(feed, stamp)), 0o644); err != nil {
			return err
		}
		appLog.Info("wrote feed", "path", path, "events", len(feed.Events))
	}

	return nil
}
