package main

import (
	"bytes"
	"context"
	"time"

	"dyncal/internal/cal"
	"dyncal/internal/config"
	"dyncal/internal/feedwriter"
	appLog "dyncal/internal/log"
	"dyncal/internal/model"
	"dyncal/internal/sheet"
	"dyncal/internal/site"
)

// app wires the fetcher and the engine together with resolved config values.
type app struct {
	cfg     *config.Config
	loc     *time.Location
	dur     time.Duration
	fetcher *sheet.Fetcher
}

func newApp(cfg *config.Config) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	dur, err := cfg.Duration()
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		loc:     loc,
		dur:     dur,
		fetcher: sheet.NewFetcher(cfg.CacheDir),
	}, nil
}

// buildOnce runs one full pass: fetch the CSV snapshot, normalize it into
// feeds, and write the feed files, manifest and landing page.
func (a *app) buildOnce(ctx context.Context) (*model.BuildResult, error) {
	body, err := a.fetcher.Fetch(ctx, a.cfg.CSVURL)
	if err != nil {
		return nil, err
	}

	table, err := sheet.ReadCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	res, err := cal.Build(table, cal.Options{
		Location:          a.loc,
		DefaultDuration:   a.dur,
		FeedsPath:         a.cfg.FeedsPath,
		IncludeEmptyFeeds: a.cfg.IncludeEmptyFeeds,
	})
	if err != nil {
		if res != nil {
			appLog.Error("build produced no events", err,
				"rows_total", res.Stats.RowsTotal,
				"rows_skipped", res.Stats.RowsSkipped,
				"skipped_no_calendar", res.Stats.SkippedNoCalendar,
				"skipped_no_title", res.Stats.SkippedNoTitle,
				"skipped_no_time", res.Stats.SkippedNoTime,
			)
		}
		return nil, err
	}

	stamp := time.Now().UTC()
	if err := feedwriter.WriteAll(a.cfg.OutDir, a.cfg.FeedsPath, res.Feeds, stamp); err != nil {
		return nil, err
	}
	if err := site.WriteManifest(a.cfg.OutDir, res.Manifest); err != nil {
		return nil, err
	}
	if err := site.WriteIndex(a.cfg.OutDir, site.PageData{}); err != nil {
		return nil, err
	}

	for _, feed := range res.Feeds {
		appLog.Info("feed built", "name", feed.Name, "slug", feed.Slug, "events", len(feed.Events))
	}
	appLog.Info("build summary",
		"feeds", len(res.Feeds),
		"events", res.Stats.Events,
		"rows_total", res.Stats.RowsTotal,
		"rows_skipped", res.Stats.RowsSkipped,
	)

	return res, nil
}
