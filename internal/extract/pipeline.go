package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/metrics"
)

// Pipeline is the one extraction entry point shared by every input path
// (chat message, forwarded email, OCR'd invitation). It is stateless and
// safe for concurrent use; each call is a pure transformation of its
// input.
type Pipeline struct {
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time

	// Location is the timezone extracted instants are expressed in.
	// Defaults to time.Local.
	Location *time.Location

	// DefaultRegion applies when the text carries no region signal at
	// all. Empty means the detector's own fallback (US).
	DefaultRegion event.Region
}

// NewPipeline returns a pipeline with production defaults.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Extract runs the full pipeline over one text. It never fails on
// content: sub-extractors that find nothing contribute defaults, and the
// result always carries a concrete date/time. The pipeline does no I/O,
// so there is no context or cancellation here; timeout budgets belong to
// the OCR and chat boundaries that feed it.
func (p *Pipeline) Extract(text string, family event.FamilyContext) event.ExtractedEvent {
	started := time.Now()

	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	region, usScore, seScore := DetectRegionScored(text)
	if usScore == 0 && seScore == 0 && p.DefaultRegion != "" {
		region = p.DefaultRegion
	}
	classification := ClassifyEventType(text)
	dt := ExtractDateTime(text, region, classification.EventType, now)

	location := ExtractLocation(text)
	child := MatchChild(text, family.Children)
	birthday := ExtractBirthdayInfo(text)
	notes := ExtractNotes(text)
	recurrence := ExtractRecurrence(text)

	details := map[string]string{}
	if birthday != nil {
		details[event.DetailBirthdayChildName] = birthday.Name
		details[event.DetailBirthdayChildAge] = strconv.Itoa(birthday.Age)
	}
	if notes != "" {
		details[event.DetailNotes] = notes
	}

	var host *event.HostRef
	if birthday != nil {
		host = &event.HostRef{Name: birthday.Name}
	}

	ev := event.ExtractedEvent{
		EventType:    classification.EventType,
		Title:        BuildTitle(classification.EventType, child, birthday),
		DateTime:     dt.Time,
		Location:     location,
		Child:        child,
		Host:         host,
		ExtraDetails: details,
		Recurrence:   recurrence,
		Region:       region,
		OriginalText: strings.TrimSpace(text),
		DateFound:    dt.DateFound,
		TimeFound:    dt.TimeFound,
	}
	ev.Confidence = ScoreConfidence(ev)

	metrics.ExtractionsTotal.WithLabelValues(string(ev.EventType)).Inc()
	if !dt.TimeFound {
		metrics.DefaultedTimes.Inc()
	}
	metrics.ExtractionDuration.Observe(float64(time.Since(started).Microseconds()) / 1000)

	return ev
}
