// Package site writes the non-feed output artifacts: the calendars.json
// manifest consumed by the landing page, and the landing page itself.
package site

import (
	"embed"
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"

	appLog "dyncal/internal/log"
	"dyncal/internal/model"
)

//go:embed templates/index.html
var templates embed.FS

var indexTpl = template.Must(template.ParseFS(templates, "templates/index.html"))

// PageData feeds the landing page template.
type PageData struct {
	Title string
}

// DefaultTitle is used when no page title is configured.
const DefaultTitle = "Subscribe to Calendars"

// WriteManifest writes calendars.json under outDir. Entry order is
// first-seen calendar order and drives the landing page's list order.
func WriteManifest(outDir string, entries []model.ManifestEntry) error {
	if entries == nil {
		entries = []model.ManifestEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(outDir, "calendars.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	appLog.Info("wrote manifest", "path", path, "feeds", len(entries))
	return nil
}

// WriteIndex renders the subscription landing page to <outDir>/index.html.
// The page loads calendars.json client-side, so it does not need to be
// regenerated when only the feeds change.
func WriteIndex(outDir string, data PageData) error {
	if data.Title == "" {
		data.Title = DefaultTitle
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(outDir, "index.html")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := indexTpl.Execute(f, data); err != nil {
		return err
	}
	appLog.Info("wrote landing page", "path", path)
	return nil
}
