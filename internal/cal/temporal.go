package cal

import (
	"strings"
	"time"
)

// DefaultEventDuration is the span assigned to timed events whose end is
// missing or not strictly after their start.
const DefaultEventDuration = time.Hour

// Timing is the normalized temporal shape of one row: a strictly positive
// [Start, End) span, classified as all-day or timed. For all-day timings
// Start/End carry dates at midnight and End is exclusive.
type Timing struct {
	Start  time.Time
	End    time.Time
	AllDay bool
}

// RawTiming carries the raw cell values relevant to one row's timing.
// Combined start/end cells take precedence over split date+time cells; a
// cell that fails to parse simply contributes no value.
type RawTiming struct {
	Start string
	End   string

	StartDate string
	StartTime string
	EndDate   string
	EndTime   string

	AllDayFlag string
}

// Normalizer converts raw date/time cells into Timing values. Parsing
// follows a fixed day-first convention: 03/04/2025 is the 3rd of April.
type Normalizer struct {
	// Location is the single zone all cells are interpreted in; nil means UTC.
	Location *time.Location

	// DefaultDuration overrides DefaultEventDuration when positive.
	DefaultDuration time.Duration
}

// Normalize resolves one row's timing. ok is false when neither a start nor
// an end value could be parsed; such rows produce no event.
func (n *Normalizer) Normalize(raw RawTiming) (Timing, bool) {
	start, hasStart := n.resolveInstant(raw.Start, raw.StartDate, raw.StartTime)
	end, hasEnd := n.resolveInstant(raw.End, raw.EndDate, raw.EndTime)
	if !hasStart && !hasEnd {
		return Timing{}, false
	}

	allDay := isTruthy(raw.AllDayFlag) || n.inferAllDay(start, hasStart, end, hasEnd)

	if allDay {
		if !hasStart {
			start = end
		}
		startDay := dateOf(start)
		// DTEND is exclusive for all-day events, so the span is always at
		// least one whole day.
		endDay := startDay.AddDate(0, 0, 1)
		if hasEnd {
			if d := dateOf(end); d.After(startDay) {
				endDay = d
			}
		}
		return Timing{Start: startDay, End: endDay, AllDay: true}, true
	}

	if !hasStart {
		start = end.Add(-n.duration())
	}
	if !hasEnd || !end.After(start) {
		end = start.Add(n.duration())
	}
	return Timing{Start: start, End: end}, true
}

// inferAllDay treats a row as all-day when every present endpoint sits
// exactly at midnight.
func (n *Normalizer) inferAllDay(start time.Time, hasStart bool, end time.Time, hasEnd bool) bool {
	if hasStart && !atMidnight(start) {
		return false
	}
	if hasEnd && !atMidnight(end) {
		return false
	}
	return true
}

// resolveInstant produces one timestamp from a combined cell or a split
// date+time cell pair. A date with no usable time part lands at midnight.
func (n *Normalizer) resolveInstant(combined, datePart, timePart string) (time.Time, bool) {
	if t, ok := parseStamp(combined, n.location()); ok {
		return t, true
	}

	d, ok := parseStamp(datePart, n.location())
	if !ok {
		return time.Time{}, false
	}
	if h, m, s, ok := parseClock(timePart); ok {
		return time.Date(d.Year(), d.Month(), d.Day(), h, m, s, 0, n.location()), true
	}
	return d, true
}

func (n *Normalizer) location() *time.Location {
	if n.Location != nil {
		return n.Location
	}
	return time.UTC
}

func (n *Normalizer) duration() time.Duration {
	if n.DefaultDuration > 0 {
		return n.DefaultDuration
	}
	return DefaultEventDuration
}

// Day-first numeric forms come first so 03/04/2025 resolves as day 3,
// month 4. Non-padded variants accept single-digit human entries like
// 3/4/2025. ISO forms are unambiguous and listed after.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"3PM",
}

var stampLayouts []string

func init() {
	for _, d := range dateLayouts {
		for _, c := range clockLayouts {
			stampLayouts = append(stampLayouts, d+" "+c)
		}
		stampLayouts = append(stampLayouts, d+"T15:04:05", d+"T15:04")
	}
	stampLayouts = append(stampLayouts, dateLayouts...)
}

// parseStamp parses a combined or date-only cell. Unparseable cells yield
// no value, never an error. Cells are uppercased so meridiems match in any
// case ("2:30 pm"); the layouts are otherwise numeric.
func parseStamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range stampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseClock parses a time-of-day cell.
func parseClock(s string) (hour, min, sec int, ok bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, 0, 0, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			h, m, secs := t.Clock()
			return h, m, secs, true
		}
	}
	return 0, 0, 0, false
}

func atMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}
