package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
)

// BirthdayInfo is the hosting child of a birthday event, when the text
// names one.
type BirthdayInfo struct {
	Name string
	Age  int
}

// locationMarkers are tried in declaration order; the first match wins.
// Each pattern captures the location phrase.
var locationMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\blocation:\s*([^\n.,!?]+)`),
	regexp.MustCompile(`(?i)\bvenue:\s*([^\n.,!?]+)`),
	regexp.MustCompile(`(?i)\bplats:\s*([^\n.,!?]+)`),
	// "at Pizza Palace", "at the community center" — stop before a time
	// or date expression so "at 2:00 PM at Pizza Palace" yields the venue.
	regexp.MustCompile(`(?i)\bat\s+(?:the\s+)?([A-ZÅÄÖ][^\n.,!?]*?)(?:\s+(?:on|at|kl|den|tomorrow|today|next|this)\b|[\n.,!?]|$)`),
	regexp.MustCompile(`(?i)\bpå\s+([A-ZÅÄÖ][^\n.,!?]*?)(?:\s+(?:kl|den|imorgon|idag|på)\b|[\n.,!?]|$)`),
	regexp.MustCompile(`(?i)\bhos\s+([A-ZÅÄÖ][^\n.,!?]*?)(?:\s+(?:kl|den|imorgon|idag|på)\b|[\n.,!?]|$)`),
}

// venueKeywords back up the marker patterns: a sentence fragment
// containing one of these is taken as the location when no explicit
// marker matched.
var venueKeywords = []string{
	"park", "museum", "library", "pool", "gym", "school", "church", "playground",
	"arena", "rink", "studio", "center", "centre", "lekland", "badhus", "skolan",
}

var venueFragmentRE = regexp.MustCompile(`(?i)\b((?:[\p{L}'’-]+\s+)?[\p{L}'’-]*(` + strings.Join(venueKeywords, "|") + `)[\p{L}'’-]*)\b`)

// ExtractLocation finds the venue of an event. Explicit markers
// ("at ...", "location: ...") win; otherwise known venue vocabulary is
// matched. Returns "" when nothing plausible is found — never an error.
func ExtractLocation(text string) string {
	for _, re := range locationMarkers {
		if m := re.FindStringSubmatch(text); m != nil {
			loc := cleanLocation(m[1])
			if loc != "" {
				return loc
			}
		}
	}
	if m := venueFragmentRE.FindStringSubmatch(text); m != nil {
		return cleanLocation(m[1])
	}
	return ""
}

func cleanLocation(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, ".,:;!?\"'")
	s = strings.TrimSpace(s)
	// A bare number or time fragment is not a venue.
	if s == "" || regexp.MustCompile(`^\d`).MatchString(s) {
		return ""
	}
	return s
}

// MatchChild checks each known child's name as a verbatim whole-word
// match against the text; the first listed child that appears wins.
// No fuzzy matching.
func MatchChild(text string, children []event.ChildRef) *event.ChildRef {
	if len(children) == 0 {
		return nil
	}
	for _, c := range children {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)(^|[^\p{L}])` + regexp.QuoteMeta(name) + `($|[^\p{L}])`)
		if err != nil {
			continue
		}
		if re.MatchString(text) {
			child := c
			return &child
		}
	}
	return nil
}

// Birthday host patterns: "Emma is turning 7", "Emma's 7th birthday",
// "Anna fyller 6". The captured name is a single capitalized token.
var birthdayPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b([A-ZÅÄÖ][\p{L}'-]+)\s+(?:is\s+)?turning\s+(\d{1,2})\b`),
	regexp.MustCompile(`(?i)\b([A-ZÅÄÖ][\p{L}-]+?)(?:'s|s)\s+(\d{1,2})(?:st|nd|rd|th)?\s+birthday\b`),
	regexp.MustCompile(`(?i)\b([A-ZÅÄÖ][\p{L}'-]+)\s+(?:som\s+)?fyller\s+(\d{1,2})\b`),
}

// ExtractBirthdayInfo recognizes "who is turning how old" phrasings.
// Absence of a match yields nil, not an error.
func ExtractBirthdayInfo(text string) *BirthdayInfo {
	for _, re := range birthdayPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		age, err := strconv.Atoi(m[2])
		if err != nil || age <= 0 || age > 120 {
			continue
		}
		return &BirthdayInfo{Name: titleCase(m[1]), Age: age}
	}
	return nil
}

// titleCase normalizes a captured name to "Emma" regardless of how the
// invitation cased it.
func titleCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r := []rune(s)
	if len(r) == 0 {
		return ""
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// noteMarkers introduce free-text instructions worth preserving. All
// occurrences are captured, not just the first.
var noteMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bnote:\s*([^\n.!?]+)`),
	regexp.MustCompile(`(?i)\bplease remember to\s+([^\n.!?]+)`),
	regexp.MustCompile(`(?i)\bremember to\s+([^\n.!?]+)`),
	regexp.MustCompile(`(?i)\bdon'?t forget\s+(?:to\s+)?([^\n.!?]+)`),
	regexp.MustCompile(`(?i)\bbring\s+([^\n.!?]+)`),
	regexp.MustCompile(`(?i)\bglöm inte\s+(?:att\s+)?([^\n.!?]+)`),
	regexp.MustCompile(`(?i)\bta med\s+([^\n.!?]+)`),
}

// ExtractNotes concatenates every marked instruction into one
// period-joined string. Duplicate fragments are collapsed.
func ExtractNotes(text string) string {
	var notes []string
	seen := map[string]bool{}
	for _, re := range noteMarkers {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			n := strings.TrimSpace(m[1])
			if n == "" {
				continue
			}
			key := strings.ToLower(n)
			if seen[key] {
				continue
			}
			seen[key] = true
			notes = append(notes, n)
		}
	}
	return strings.Join(notes, ". ")
}
