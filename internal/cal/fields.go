// Package cal is the event normalization engine: it turns loosely-structured
// spreadsheet rows into valid calendar event records grouped by feed.
package cal

import (
	"regexp"
	"strings"
)

// Field identifies one canonical semantic column the engine understands.
type Field string

const (
	FieldCalendar    Field = "calendar"
	FieldTitle       Field = "title"
	FieldStart       Field = "start"
	FieldStartDate   Field = "start_date"
	FieldStartTime   Field = "start_time"
	FieldEnd         Field = "end"
	FieldEndDate     Field = "end_date"
	FieldEndTime     Field = "end_time"
	FieldLocation    Field = "location"
	FieldDescription Field = "description"
	FieldURL         Field = "url"
	FieldUID         Field = "uid"
	FieldAllDay      Field = "all_day"
	FieldTransparent Field = "transparent"
)

// fieldOrder fixes the resolution order so header ties resolve the same way
// on every build.
var fieldOrder = []Field{
	FieldCalendar,
	FieldTitle,
	FieldStart,
	FieldStartDate,
	FieldStartTime,
	FieldEnd,
	FieldEndDate,
	FieldEndTime,
	FieldLocation,
	FieldDescription,
	FieldURL,
	FieldUID,
	FieldAllDay,
	FieldTransparent,
}

// synonyms lists the accepted header spellings per canonical field. Matching
// is case-insensitive and whitespace-trimmed, exact otherwise.
var synonyms = map[Field][]string{
	FieldCalendar:    {"calendar", "cal", "feed", "category"},
	FieldTitle:       {"title", "event", "name", "summary"},
	FieldStart:       {"start", "start datetime", "begin", "begins", "from"},
	FieldStartDate:   {"start date", "date"},
	FieldStartTime:   {"start time", "time"},
	FieldEnd:         {"end", "end datetime", "finish", "to", "until"},
	FieldEndDate:     {"end date"},
	FieldEndTime:     {"end time"},
	FieldLocation:    {"location", "place", "where", "venue"},
	FieldDescription: {"description", "details", "notes"},
	FieldURL:         {"url", "link", "website"},
	FieldUID:         {"uid", "id", "event id"},
	FieldAllDay:      {"all day", "all-day", "allday"},
	FieldTransparent: {"free", "transparent", "show as free"},
}

// ConfigError reports required canonical fields that could not be resolved
// against the input table's headers. It aborts a build before any row is
// read.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing required column(s): " + strings.Join(e.Missing, ", ")
}

// FieldMap is the per-build resolution of canonical fields to actual column
// names. Absent optional fields have no entry.
type FieldMap map[Field]string

// Has reports whether the field resolved to a source column.
func (m FieldMap) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// ResolveFields matches the table's column headers against the synonym
// table, once per build. The first header matching any synonym of a field
// wins. calendar, title and one of start/start_date are required; anything
// else is optional.
func ResolveFields(headers []string) (FieldMap, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	m := make(FieldMap)
	for _, field := range fieldOrder {
		for i, h := range normalized {
			if h == "" {
				continue
			}
			if matchesField(field, h) {
				m[field] = headers[i]
				break
			}
		}
	}

	var missing []string
	if !m.Has(FieldCalendar) {
		missing = append(missing, string(FieldCalendar))
	}
	if !m.Has(FieldTitle) {
		missing = append(missing, string(FieldTitle))
	}
	if !m.Has(FieldStart) && !m.Has(FieldStartDate) {
		missing = append(missing, string(FieldStart))
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Missing: missing}
	}

	return m, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func matchesField(f Field, normalizedHeader string) bool {
	for _, syn := range synonyms[f] {
		if syn == normalizedHeader {
			return true
		}
	}
	return false
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the URL/filename-safe identifier for a calendar name:
// lowercase, every run of characters outside [a-z0-9] collapsed to a single
// hyphen, leading/trailing hyphens stripped. An empty result falls back to
// "calendar".
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "calendar"
	}
	return s
}
