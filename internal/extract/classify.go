package extract

import (
	"regexp"
	"strings"
	"sync"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
)

// categoryRule owns the keyword list for one event category. Rules are
// evaluated in declaration order and the first category wins a tie, so
// the order of categoryRules is part of the contract (more specific
// categories are declared before broader ones).
type categoryRule struct {
	eventType event.Type
	keywords  []string
}

var categoryRules = []categoryRule{
	{event.TypeBirthday, []string{
		"birthday", "turning", "kalas", "fyller", "födelsedag", "cake", "presents", "bday",
	}},
	{event.TypeDental, []string{
		"dentist", "dental", "tandläkare", "orthodontist", "braces", "teeth cleaning", "tooth",
	}},
	{event.TypeDoctor, []string{
		"doctor", "pediatrician", "läkare", "barnläkare", "checkup", "check-up", "vaccination",
		"vaccine", "physical exam",
	}},
	{event.TypeSleepover, []string{
		"sleepover", "sleep over", "overnight", "övernattning", "pajama party", "sova över",
	}},
	{event.TypePlaydate, []string{
		"playdate", "play date", "lekträff", "come over and play", "play at our house",
	}},
	{event.TypeSports, []string{
		"soccer", "football", "fotboll", "hockey", "basketball", "baseball", "tennis", "swim",
		"simning", "gymnastics", "practice", "träning", "match", "game day", "tournament",
	}},
	{event.TypeMusic, []string{
		"piano", "guitar", "violin", "music lesson", "musiklektion", "choir", "kör", "recital",
		"orchestra",
	}},
	{event.TypeDance, []string{
		"dance", "ballet", "balett", "dans", "hip hop class", "jazz class",
	}},
	{event.TypeCamp, []string{
		"camp", "läger", "summer camp", "day camp", "kollo",
	}},
	{event.TypeTutoring, []string{
		"tutoring", "tutor", "läxhjälp", "study session", "homework help",
	}},
	{event.TypeArt, []string{
		"art class", "painting", "pottery", "målarkurs", "drawing class", "crafts",
	}},
	{event.TypeCoding, []string{
		"coding", "programming", "programmering", "robotics", "scratch class", "code club",
	}},
	{event.TypeSchool, []string{
		"school", "skola", "skolan", "parent-teacher", "utvecklingssamtal", "field trip",
		"utflykt", "class trip", "open house", "pta",
	}},
	{event.TypeReligious, []string{
		"church", "kyrka", "mosque", "synagogue", "confirmation", "konfirmation", "sunday school",
		"baptism", "dop",
	}},
	{event.TypeCommunity, []string{
		"community", "neighborhood", "library event", "bibliotek", "scouts", "scouterna",
		"volunteer",
	}},
	{event.TypeFamily, []string{
		"family dinner", "släktmiddag", "grandma", "grandpa", "mormor", "farmor", "reunion",
		"family gathering",
	}},
	{event.TypeAppointment, []string{
		"appointment", "tid hos", "besök", "möte", "meeting",
	}},
	// Generic catch-all, declared last so it never shadows a real category.
	{event.TypeGeneric, []string{
		"event", "aktivitet", "activity", "invitation", "inbjudan",
	}},
}

const (
	// wordBoundaryBonus rewards exact word matches over accidental
	// substring hits ("art" inside "party").
	wordBoundaryBonus = 0.5

	// minClassifyScore is the minimum score for a category to win;
	// below it the generic type is returned.
	minClassifyScore = 1.0
)

// boundaryRE caches per-keyword word-boundary regexps.
var (
	boundaryMu sync.Mutex
	boundaryRE = map[string]*regexp.Regexp{}
)

// Classification is the classifier verdict for one text.
type Classification struct {
	EventType event.Type
	Score     float64
	Matched   []string
}

// ClassifyEventType scores the text against every category keyword table
// and returns the best match. Each literal substring match adds 1 point;
// an exact word-boundary match adds a further 0.5. The highest total wins;
// equal scores resolve to the earlier-declared category. If no category
// reaches a single full match the generic type is returned with score 0.
func ClassifyEventType(text string) Classification {
	lower := strings.ToLower(text)

	best := Classification{EventType: event.TypeGeneric}
	for _, rule := range categoryRules {
		score := 0.0
		var matched []string
		for _, kw := range rule.keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			score += 1
			if matchesWholeWord(lower, kw) {
				score += wordBoundaryBonus
			}
			matched = append(matched, kw)
		}
		// Strictly-greater keeps first-declared-wins on ties.
		if score > best.Score {
			best = Classification{EventType: rule.eventType, Score: score, Matched: matched}
		}
	}

	if best.Score < minClassifyScore {
		return Classification{EventType: event.TypeGeneric}
	}

	return promoteAppointment(best, lower)
}

// promoteAppointment refines a generic appointment match into the dental
// or doctor sub-category when medical vocabulary co-occurs.
func promoteAppointment(c Classification, lower string) Classification {
	if c.EventType != event.TypeAppointment {
		return c
	}
	for _, kw := range []string{"dentist", "dental", "tandläkare", "tooth", "braces"} {
		if strings.Contains(lower, kw) {
			c.EventType = event.TypeDental
			return c
		}
	}
	for _, kw := range []string{"doctor", "läkare", "clinic", "vårdcentral", "pediatric", "medical"} {
		if strings.Contains(lower, kw) {
			c.EventType = event.TypeDoctor
			return c
		}
	}
	return c
}

func matchesWholeWord(lower, kw string) bool {
	boundaryMu.Lock()
	re, ok := boundaryRE[kw]
	if !ok {
		re = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		boundaryRE[kw] = re
	}
	boundaryMu.Unlock()
	return re.MatchString(lower)
}
