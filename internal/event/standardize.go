package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultDuration is assumed when no explicit end or duration is known.
const DefaultDuration = time.Hour

// StandardizeOptions tunes Standardize. The zero value is usable.
type StandardizeOptions struct {
	// Location is the timezone applied to events whose instant carries no
	// zone information. Defaults to time.Local.
	Location *time.Location

	// Now is used to substitute a start time when the input has none.
	// Defaults to time.Now. Injectable for tests.
	Now func() time.Time
}

// Standardize normalizes any event-like record into the canonical
// StandardizedEvent shape. It is idempotent: standardizing an already
// standardized event returns an equivalent value.
//
// Missing fields are substituted rather than rejected: an empty title
// becomes "New Event", a zero start becomes now, end defaults to
// start + DefaultDuration, and the signature and universal ID are computed
// when absent. UniversalID is never regenerated once present.
func Standardize(in StandardizedEvent, opts StandardizeOptions) StandardizedEvent {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	out := in

	out.Title = strings.TrimSpace(out.Title)
	if out.Title == "" {
		out.Title = strings.TrimSpace(out.Summary)
	}
	if out.Title == "" {
		out.Title = "New Event"
	}
	out.Summary = out.Title

	if out.EventType == "" {
		out.EventType = TypeGeneric
	}

	start := firstNonZeroTime(out.Start.DateTime, out.DateTime)
	if start.IsZero() {
		start = now()
	}
	start = start.In(loc)

	end := out.End.DateTime
	if end.IsZero() || !end.After(start) {
		end = start.Add(DefaultDuration)
	} else {
		end = end.In(loc)
	}

	tz := out.Start.TimeZone
	if tz == "" {
		tz = loc.String()
	}

	out.Start = EventTime{DateTime: start, TimeZone: tz}
	out.End = EventTime{DateTime: end, TimeZone: tz}
	out.DateTime = start
	out.Date = start.Format("2006-01-02")

	var child *ChildRef
	if out.ChildID != "" || out.ChildName != "" {
		child = &ChildRef{ID: out.ChildID, Name: out.ChildName}
	}
	out.Signature = ComputeSignature(out.Title, start, child, out.EventType)

	if out.UniversalID == "" {
		out.UniversalID = uuid.NewString()
	}

	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}

	return out
}

// FromExtracted converts a pipeline result into the canonical shape.
// The caller's family ID is stamped on; Standardize fills the rest.
func FromExtracted(ex ExtractedEvent, familyID string, opts StandardizeOptions) StandardizedEvent {
	ev := StandardizedEvent{
		FamilyID:     familyID,
		Title:        ex.Title,
		EventType:    ex.EventType,
		Location:     ex.Location,
		DateTime:     ex.DateTime,
		ExtraDetails: ex.ExtraDetails,
		Recurrence:   ex.Recurrence,
		Region:       ex.Region,
		Confidence:   ex.Confidence,
		OriginalText: ex.OriginalText,
	}
	if ex.Child != nil {
		ev.ChildID = ex.Child.ID
		ev.ChildName = ex.Child.Name
	}
	if ex.Host != nil {
		ev.HostName = ex.Host.Name
	}
	if notes, ok := ex.ExtraDetails[DetailNotes]; ok {
		ev.Description = notes
	}
	return Standardize(ev, opts)
}

func firstNonZeroTime(times ...time.Time) time.Time {
	for _, t := range times {
		if !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}
