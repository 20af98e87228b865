package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
)

// BuildTitle is the single title-generation policy. Every entry path
// routes through it so titles are consistent regardless of source:
//   - birthday with a named birthday child: "<Name>'s Nth Birthday"
//   - known child: "<ChildName>'s <TypeLabel>"
//   - otherwise: "New Event"
func BuildTitle(eventType event.Type, child *event.ChildRef, birthday *BirthdayInfo) string {
	if eventType == event.TypeBirthday && birthday != nil {
		if birthday.Age > 0 {
			return fmt.Sprintf("%s's %s Birthday", birthday.Name, ordinal(birthday.Age))
		}
		return fmt.Sprintf("%s's Birthday", birthday.Name)
	}
	if child != nil && child.Name != "" {
		return fmt.Sprintf("%s's %s", child.Name, eventType.Label())
	}
	if birthday != nil {
		return fmt.Sprintf("%s's %s", birthday.Name, eventType.Label())
	}
	return "New Event"
}

// ordinal renders 1 → "1st", 2 → "2nd", 3 → "3rd", 4 → "4th", with the
// 11/12/13 exceptions.
func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
		// teens always take "th"
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

// Confidence weights. The score is a completeness measure over the
// extracted fields, normalized by the weights that were applicable.
const (
	weightEventType = 0.2
	weightTitle     = 0.2
	weightDateTime  = 0.3 // only when the instant came from the text
	weightLocation  = 0.15
	weightPerson    = 0.15
)

// ScoreConfidence rates how complete and trustworthy an assembled event
// is. It is a routing signal only: callers compare it against their own
// threshold to decide between automatic acceptance and manual review.
func ScoreConfidence(ev event.ExtractedEvent) float64 {
	total := weightEventType + weightTitle + weightDateTime + weightLocation + weightPerson

	score := 0.0
	if ev.EventType != "" && ev.EventType != event.TypeGeneric {
		score += weightEventType
	}
	if strings.TrimSpace(ev.Title) != "" && ev.Title != "New Event" {
		score += weightTitle
	}
	if ev.DateFound && ev.TimeFound {
		score += weightDateTime
	} else if ev.DateFound {
		score += weightDateTime / 2
	}
	if ev.Location != "" {
		score += weightLocation
	}
	if ev.Child != nil || ev.Host != nil {
		score += weightPerson
	}

	return score / total
}
