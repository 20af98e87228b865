package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
)

// DateTimeResult is the outcome of date/time extraction. Time is always a
// concrete instant; DateFound/TimeFound report whether each half came
// from the text or from a fallback default.
type DateTimeResult struct {
	Time      time.Time
	DateFound bool
	TimeFound bool
}

// Default hour of day per event type, applied when no time is found in
// the text. Minutes are always zero.
var defaultHourByType = map[event.Type]int{
	event.TypeBirthday:  14,
	event.TypeDoctor:    10,
	event.TypeDental:    10,
	event.TypeSports:    16,
	event.TypeSleepover: 18,
}

const defaultHour = 12

// DefaultHourFor returns the fallback hour for an event type.
func DefaultHourFor(t event.Type) int {
	if h, ok := defaultHourByType[t]; ok {
		return h
	}
	return defaultHour
}

var (
	// numericDateRE matches "12/4", "12/4/26", "12-04-2026". Dots are
	// deliberately excluded as date separators: "14.00" is a Swedish
	// clock time, not a date.
	numericDateRE = regexp.MustCompile(`\b(\d{1,2})[/\-](\d{1,2})(?:[/\-](\d{2,4}))?\b`)

	// monthNameRE matches "April 12", "April 12th", "12 april",
	// "den 12 april" in either language.
	monthNameDayFirstRE = regexp.MustCompile(`(?i)\b(?:den\s+)?(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthAlternation + `)\b`)
	monthNameDayLastRE  = regexp.MustCompile(`(?i)\b(` + monthAlternation + `)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)

	// time24RE matches 24-hour clock times: "kl. 14:00", "14.30", "09:15".
	time24RE = regexp.MustCompile(`(?i)\b(?:kl\.?\s*)?([01]?\d|2[0-3])[.:]([0-5]\d)\b`)

	// time12RE matches 12-hour clock times: "2 PM", "2:30pm", "11 am".
	time12RE = regexp.MustCompile(`(?i)\b(1[0-2]|0?[1-9])(?::([0-5]\d))?\s*(am|pm)\b`)
)

const monthAlternation = `january|february|march|april|may|june|july|august|september|october|november|december|` +
	`januari|februari|mars|maj|juni|juli|augusti|oktober|december|` +
	`jan|feb|mar|apr|jun|jul|aug|sep|sept|okt|oct|nov|dec`

var monthByName = map[string]time.Month{
	"january": time.January, "februari": time.February, "february": time.February,
	"march": time.March, "mars": time.March, "april": time.April, "may": time.May,
	"maj": time.May, "june": time.June, "juni": time.June, "july": time.July,
	"juli": time.July, "august": time.August, "augusti": time.August,
	"september": time.September, "october": time.October, "oktober": time.October,
	"november": time.November, "december": time.December,
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"jun": time.June, "jul": time.July, "aug": time.August, "sep": time.September,
	"sept": time.September, "okt": time.October, "oct": time.October, "nov": time.November,
	"dec": time.December,
	"januari": time.January,
}

var weekdayByName = map[string]time.Weekday{
	"monday": time.Monday, "måndag": time.Monday,
	"tuesday": time.Tuesday, "tisdag": time.Tuesday,
	"wednesday": time.Wednesday, "onsdag": time.Wednesday,
	"thursday": time.Thursday, "torsdag": time.Thursday,
	"friday": time.Friday, "fredag": time.Friday,
	"saturday": time.Saturday, "lördag": time.Saturday,
	"sunday": time.Sunday, "söndag": time.Sunday,
}

var weekdayRE = regexp.MustCompile(`(?i)\b(?:på\s+|on\s+|next\s+|nästa\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday|måndag|tisdag|onsdag|torsdag|fredag|lördag|söndag)\b`)

// ExtractDateTime locates a date and a time in the text and combines them
// into one concrete instant. Precedence: region-specific numeric date,
// then month-name date, then relative terms; the time half uses the
// region's clock style with the opposite style as fallback. A missing
// time gets the event-type default; a missing date means today. Dates
// strictly in the past (different calendar day) roll forward one year.
func ExtractDateTime(text string, region event.Region, eventType event.Type, now time.Time) DateTimeResult {
	loc := now.Location()

	year, month, day, dateFound := findDate(text, region, now)
	hour, minute, timeFound := findTime(text, region)
	if !timeFound {
		hour, minute = DefaultHourFor(eventType), 0
	}

	result := time.Date(year, month, day, hour, minute, 0, 0, loc)

	// Invitations written without a year mean the next occurrence: a
	// past date on a different calendar day rolls forward one year.
	// A same-day-but-earlier time is preserved unchanged.
	if dateFound && result.Before(now) && !sameCalendarDay(result, now) {
		result = result.AddDate(1, 0, 0)
	}

	return DateTimeResult{Time: result, DateFound: dateFound, TimeFound: timeFound}
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// findDate applies the date rules in order and returns the first valid
// calendar date. Malformed numeric groups (month 13, day 32) are
// rejected silently and the next rule is tried.
func findDate(text string, region event.Region, now time.Time) (int, time.Month, int, bool) {
	if y, m, d, ok := findNumericDate(text, region, now); ok {
		return y, m, d, true
	}
	if y, m, d, ok := findMonthNameDate(text, now); ok {
		return y, m, d, true
	}
	if y, m, d, ok := findRelativeDate(text, now); ok {
		return y, m, d, true
	}
	y, m, d := now.Date()
	return y, m, d, false
}

func findNumericDate(text string, region event.Region, now time.Time) (int, time.Month, int, bool) {
	for _, m := range numericDateRE.FindAllStringSubmatch(text, -1) {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])

		var monthN, dayN int
		if region == event.RegionSE {
			dayN, monthN = first, second
		} else {
			monthN, dayN = first, second
		}

		if monthN < 1 || monthN > 12 || dayN < 1 || dayN > daysInMonth(time.Month(monthN)) {
			continue
		}

		year := now.Year()
		if m[3] != "" {
			y, _ := strconv.Atoi(m[3])
			if y < 100 {
				y += 2000
			}
			year = y
		}
		return year, time.Month(monthN), dayN, true
	}
	return 0, 0, 0, false
}

func findMonthNameDate(text string, now time.Time) (int, time.Month, int, bool) {
	if m := monthNameDayFirstRE.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		if month, ok := monthByName[strings.ToLower(m[2])]; ok && day >= 1 && day <= daysInMonth(month) {
			return now.Year(), month, day, true
		}
	}
	if m := monthNameDayLastRE.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[2])
		if month, ok := monthByName[strings.ToLower(m[1])]; ok && day >= 1 && day <= daysInMonth(month) {
			return now.Year(), month, day, true
		}
	}
	return 0, 0, 0, false
}

func findRelativeDate(text string, now time.Time) (int, time.Month, int, bool) {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "tomorrow"), strings.Contains(lower, "imorgon"), strings.Contains(lower, "i morgon"):
		y, m, d := now.AddDate(0, 0, 1).Date()
		return y, m, d, true
	case strings.Contains(lower, "today"), strings.Contains(lower, "tonight"),
		strings.Contains(lower, "idag"), strings.Contains(lower, "i dag"), strings.Contains(lower, "ikväll"):
		y, m, d := now.Date()
		return y, m, d, true
	}

	if m := weekdayRE.FindStringSubmatch(lower); m != nil {
		if wd, ok := weekdayByName[m[1]]; ok {
			// Next occurrence of that weekday, at least one day out.
			days := int(wd-now.Weekday()+7) % 7
			if days == 0 {
				days = 7
			}
			y, mo, d := now.AddDate(0, 0, days).Date()
			return y, mo, d, true
		}
	}

	return 0, 0, 0, false
}

// findTime tries the region's own clock style first, then the other
// style, so mixed-convention input ("på lördag at 3 pm") still parses.
func findTime(text string, region event.Region) (int, int, bool) {
	if region == event.RegionSE {
		if h, m, ok := find24HourTime(text); ok {
			return h, m, ok
		}
		return find12HourTime(text)
	}
	if h, m, ok := find12HourTime(text); ok {
		return h, m, ok
	}
	return find24HourTime(text)
}

func find24HourTime(text string) (int, int, bool) {
	for _, loc := range time24RE.FindAllStringSubmatchIndex(text, -1) {
		// "2:00 PM" is a 12-hour time that happens to match the 24-hour
		// shape; leave it for the 12-hour matcher.
		rest := strings.TrimLeft(text[loc[1]:], " ")
		if len(rest) >= 2 {
			head := strings.ToLower(rest[:2])
			if head == "am" || head == "pm" {
				continue
			}
		}
		h, _ := strconv.Atoi(text[loc[2]:loc[3]])
		mm, _ := strconv.Atoi(text[loc[4]:loc[5]])
		return h, mm, true
	}
	return 0, 0, false
}

func find12HourTime(text string) (int, int, bool) {
	m := time12RE.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	h, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if strings.EqualFold(m[3], "pm") && h != 12 {
		h += 12
	}
	if strings.EqualFold(m[3], "am") && h == 12 {
		h = 0
	}
	return h, minute, true
}

// daysInMonth is deliberately generous for February: day 29 is accepted
// in any year and the rollover logic settles which year applies.
func daysInMonth(m time.Month) int {
	switch m {
	case time.February:
		return 29
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
