package cal

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"dyncal/internal/model"
	"dyncal/internal/sheet"
)

// uidSuffix marks UIDs derived by this engine, as opposed to UIDs carried
// over from the source table.
const uidSuffix = "@dyncal"

// skipReason classifies why a row produced no event.
type skipReason int

const (
	skipNone skipReason = iota
	skipNoTitle
	skipNoTime
)

// builder assembles one normalized event per valid row, using the field map
// resolved once per build.
type builder struct {
	fields FieldMap
	norm   *Normalizer
}

// cell returns the trimmed value of a canonical field for the given row, or
// "" when the field did not resolve or the cell is blank.
func (b *builder) cell(row sheet.Row, f Field) string {
	col, ok := b.fields[f]
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// buildEvent validates and assembles one row. Rows without a title or
// without any resolvable start/end value are skipped, never an error.
func (b *builder) buildEvent(row sheet.Row) (model.Event, skipReason) {
	title := b.cell(row, FieldTitle)
	if title == "" {
		return model.Event{}, skipNoTitle
	}

	timing, ok := b.norm.Normalize(RawTiming{
		Start:      b.cell(row, FieldStart),
		End:        b.cell(row, FieldEnd),
		StartDate:  b.cell(row, FieldStartDate),
		StartTime:  b.cell(row, FieldStartTime),
		EndDate:    b.cell(row, FieldEndDate),
		EndTime:    b.cell(row, FieldEndTime),
		AllDayFlag: b.cell(row, FieldAllDay),
	})
	if !ok {
		return model.Event{}, skipNoTime
	}

	location := b.cell(row, FieldLocation)

	ev := model.Event{
		Title:        title,
		Start:        timing.Start,
		End:          timing.End,
		AllDay:       timing.AllDay,
		Location:     location,
		Description:  b.cell(row, FieldDescription),
		URL:          b.cell(row, FieldURL),
		Transparency: parseTransparency(b.cell(row, FieldTransparent)),
	}

	ev.UID = b.cell(row, FieldUID)
	if ev.UID == "" {
		ev.UID = deriveUID(title, timing, location)
	}

	return ev, skipNone
}

// deriveUID produces a deterministic UID from the event's identity tuple so
// that re-publishing an unchanged event never creates a duplicate in
// subscribing clients.
func deriveUID(title string, t Timing, location string) string {
	seed := strings.Join([]string{
		"dyncal",
		title,
		t.Start.Format(time.RFC3339),
		t.End.Format(time.RFC3339),
		location,
	}, "|")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String() + uidSuffix
}

// parseTransparency reads the free/busy cell. Anything unrecognized
// (including an absent column) leaves the event unspecified, so the output
// feed omits TRANSP entirely.
func parseTransparency(v string) model.Transparency {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "y", "free", "transparent":
		return model.TransparencyFree
	case "false", "0", "no", "n", "busy", "opaque":
		return model.TransparencyBusy
	}
	return model.TransparencyUnspecified
}
