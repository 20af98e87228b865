// Package event defines the event data model shared by the extraction
// pipeline and the storage layer:
// - ExtractedEvent: raw pipeline output, pre-standardization
// - StandardizedEvent: the single canonical, persisted shape
// - Standardize: the one normalization path every entry point goes through
package event

import (
	"time"
)

// Type is an event category assigned by the classifier.
type Type string

const (
	TypeBirthday    Type = "birthday"
	TypeDental      Type = "dental"
	TypeDoctor      Type = "doctor"
	TypePlaydate    Type = "playdate"
	TypeSports      Type = "sports"
	TypeMusic       Type = "music"
	TypeDance       Type = "dance"
	TypeSchool      Type = "school"
	TypeCamp        Type = "camp"
	TypeTutoring    Type = "tutoring"
	TypeArt         Type = "art"
	TypeCoding      Type = "coding"
	TypeSleepover   Type = "sleepover"
	TypeFamily      Type = "family"
	TypeReligious   Type = "religious"
	TypeCommunity   Type = "community"
	TypeAppointment Type = "appointment"
	// TypeGeneric is the fallback when no category reaches minimum confidence.
	TypeGeneric Type = "event"
)

// Label returns a human-readable label for title generation.
func (t Type) Label() string {
	switch t {
	case TypeBirthday:
		return "Birthday Party"
	case TypeDental:
		return "Dentist Appointment"
	case TypeDoctor:
		return "Doctor Appointment"
	case TypePlaydate:
		return "Playdate"
	case TypeSports:
		return "Sports Practice"
	case TypeMusic:
		return "Music Lesson"
	case TypeDance:
		return "Dance Class"
	case TypeSchool:
		return "School Event"
	case TypeCamp:
		return "Camp"
	case TypeTutoring:
		return "Tutoring Session"
	case TypeArt:
		return "Art Class"
	case TypeCoding:
		return "Coding Class"
	case TypeSleepover:
		return "Sleepover"
	case TypeFamily:
		return "Family Gathering"
	case TypeReligious:
		return "Religious Event"
	case TypeCommunity:
		return "Community Event"
	case TypeAppointment:
		return "Appointment"
	default:
		return "Event"
	}
}

// Region is a writing-convention profile inferred from text, not a
// geographic location. It disambiguates date order and clock style.
type Region string

const (
	// RegionUS: month-first numeric dates, 12-hour clock.
	RegionUS Region = "US"
	// RegionSE: day-first numeric dates, 24-hour clock.
	RegionSE Region = "SE"
)

// ChildRef identifies a known child from the family context.
type ChildRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HostRef identifies the hosting party of an event (e.g. the birthday child).
type HostRef struct {
	Name string `json:"name"`
}

// Member is a family member supplied in the per-request family context.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// FamilyContext is read-only per-request context supplied by the caller.
type FamilyContext struct {
	FamilyID string     `json:"familyId"`
	Children []ChildRef `json:"children,omitempty"`
	Members  []Member   `json:"members,omitempty"`
}

// ExtractedEvent is the output of the extraction pipeline, before
// standardization. DateTime is always a concrete instant: when no date or
// time could be located a deterministic default is substituted, never zero.
type ExtractedEvent struct {
	EventType    Type              `json:"eventType"`
	Title        string            `json:"title"`
	DateTime     time.Time         `json:"dateTime"`
	Location     string            `json:"location,omitempty"`
	Child        *ChildRef         `json:"childRef,omitempty"`
	Host         *HostRef          `json:"hostRef,omitempty"`
	ExtraDetails map[string]string `json:"extraDetails,omitempty"`
	Recurrence   string            `json:"recurrence,omitempty"` // RRULE string, empty if none
	Region       Region            `json:"region"`
	Confidence   float64           `json:"confidence"`
	OriginalText string            `json:"originalText"`

	// DateFound / TimeFound record whether the instant came from the text
	// or from fallback defaults. Feeds the confidence score and the
	// manual-review routing decision.
	DateFound bool `json:"dateFound"`
	TimeFound bool `json:"timeFound"`
}

// EventTime is an instant plus its IANA timezone, the calendar-facing shape.
type EventTime struct {
	DateTime time.Time `json:"dateTime"`
	TimeZone string    `json:"timeZone"`
}

// StandardizedEvent is the canonical persisted event shape. Every entry
// path (chat, email, OCR, manual) produces this via Standardize.
type StandardizedEvent struct {
	ID int64 `json:"id,omitempty"`

	// UniversalID is a storage-independent stable identifier, immutable
	// once assigned.
	UniversalID string `json:"universalId"`

	// Signature is a deterministic hash of the identity-defining fields
	// (normalized title, calendar date, child ref, event type). Same
	// signature marks a merge candidate, not an automatic merge.
	Signature string `json:"eventSignature"`

	FamilyID    string `json:"familyId"`
	Title       string `json:"title"`
	Summary     string `json:"summary"` // legacy alias of Title
	Description string `json:"description,omitempty"`
	EventType   Type   `json:"eventType"`
	Location    string `json:"location,omitempty"`

	Start EventTime `json:"start"`
	End   EventTime `json:"end"`

	// DateTime and Date are legacy duplicate representations pointing at
	// the same instant as Start, kept for older callers.
	DateTime time.Time `json:"dateTime"`
	Date     string    `json:"date"` // YYYY-MM-DD

	ChildID           string            `json:"childId,omitempty"`
	ChildName         string            `json:"childName,omitempty"`
	AttendingParentID string            `json:"attendingParentId,omitempty"`
	HostName          string            `json:"hostName,omitempty"`
	ExtraDetails      map[string]string `json:"extraDetails,omitempty"`
	Recurrence        string            `json:"recurrence,omitempty"`

	Region       Region    `json:"region,omitempty"`
	Confidence   float64   `json:"confidence"`
	OriginalText string    `json:"originalText,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// ExtraDetail keys used by the pipeline.
const (
	DetailBirthdayChildName = "birthdayChildName"
	DetailBirthdayChildAge  = "birthdayChildAge"
	DetailNotes             = "notes"
)
