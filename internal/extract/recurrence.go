package extract

import (
	"regexp"
	"strings"

	"github.com/teambition/rrule-go"
)

// Recurrence phrasings handled: "every <weekday>", "varje <veckodag>",
// "every day", "daily", "weekly", "monthly", "varje dag/vecka/månad".
// Anything else yields an empty rule; recurring events are a convenience
// for a subset of flows, never a requirement.

var everyWeekdayRE = regexp.MustCompile(`(?i)\b(?:every|varje)\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday|måndag|tisdag|onsdag|torsdag|fredag|lördag|söndag)s?\b`)

var rruleWeekdayByName = map[string]rrule.Weekday{
	"monday": rrule.MO, "måndag": rrule.MO,
	"tuesday": rrule.TU, "tisdag": rrule.TU,
	"wednesday": rrule.WE, "onsdag": rrule.WE,
	"thursday": rrule.TH, "torsdag": rrule.TH,
	"friday": rrule.FR, "fredag": rrule.FR,
	"saturday": rrule.SA, "lördag": rrule.SA,
	"sunday": rrule.SU, "söndag": rrule.SU,
}

// ExtractRecurrence returns an RRULE string for recurring phrasings, or
// "" when the text describes a one-off event.
func ExtractRecurrence(text string) string {
	lower := strings.ToLower(text)

	if m := everyWeekdayRE.FindStringSubmatch(lower); m != nil {
		if wd, ok := rruleWeekdayByName[m[1]]; ok {
			opt := rrule.ROption{Freq: rrule.WEEKLY, Byweekday: []rrule.Weekday{wd}}
			r, err := rrule.NewRRule(opt)
			if err != nil {
				return ""
			}
			return r.String()
		}
	}

	switch {
	case strings.Contains(lower, "every day"), strings.Contains(lower, "daily"),
		strings.Contains(lower, "varje dag"):
		return mustRuleString(rrule.ROption{Freq: rrule.DAILY})
	case strings.Contains(lower, "every week"), strings.Contains(lower, "weekly"),
		strings.Contains(lower, "varje vecka"):
		return mustRuleString(rrule.ROption{Freq: rrule.WEEKLY})
	case strings.Contains(lower, "every month"), strings.Contains(lower, "monthly"),
		strings.Contains(lower, "varje månad"):
		return mustRuleString(rrule.ROption{Freq: rrule.MONTHLY})
	}

	return ""
}

func mustRuleString(opt rrule.ROption) string {
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return ""
	}
	return r.String()
}
