// Package extract turns free-form text (chat messages, forwarded
// emails, OCR'd invitations) into structured calendar events. Detection
// is purely heuristic: weighted keyword and pattern tables, no model
// inference, so results are deterministic for a given input.
package extract

import (
	"regexp"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
)

// regionIndicator is one weighted signal for a writing convention.
type regionIndicator struct {
	pattern *regexp.Regexp
	weight  float64
	name    string
}

// seIndicators signal Swedish writing conventions. The kl-clock pattern
// is listed first: it is decisive on its own (see DetectRegionScored).
var seIndicators = []regionIndicator{
	{regexp.MustCompile(`(?i)\bkl\.?\s*\d{1,2}[.:]\d{2}`), 5, "kl clock"},
	{regexp.MustCompile(`\b([01]?\d|2[0-3])\.\d{2}\b`), 2, "dotted 24h time"},
	{regexp.MustCompile(`(?i)\bfyller\b`), 3, "fyller"},
	{regexp.MustCompile(`(?i)\bkalas\b`), 3, "kalas"},
	{regexp.MustCompile(`(?i)\bfödelsedag`), 3, "födelsedag"},
	{regexp.MustCompile(`(?i)\b(januari|februari|mars|april|maj|juni|juli|augusti|september|oktober|november|december)\b`), 2, "sv month"},
	{regexp.MustCompile(`(?i)\b(måndag|tisdag|onsdag|torsdag|fredag|lördag|söndag)\b`), 2, "sv weekday"},
	{regexp.MustCompile(`(?i)\b(imorgon|idag|nästa vecka)\b`), 2, "sv relative day"},
	{regexp.MustCompile(`(?i)\b(välkommen|välkomna)\b`), 2, "välkommen"},
	{regexp.MustCompile(`(?i)\bden\s+\d{1,2}[/.]\d{1,2}\b`), 2, "den date"},
	{regexp.MustCompile(`(?i)\b(hos|klockan)\b`), 1, "sv preposition"},
}

// usIndicators signal US writing conventions.
var usIndicators = []regionIndicator{
	{regexp.MustCompile(`(?i)\b\d{1,2}(:\d{2})?\s*(a\.?m\.?|p\.?m\.?)\b`), 5, "am/pm clock"},
	{regexp.MustCompile(`(?i)\bbirthday\b`), 3, "birthday"},
	{regexp.MustCompile(`(?i)\b(party|turning|rsvp)\b`), 2, "party vocabulary"},
	{regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`), 2, "en month"},
	{regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`), 2, "en weekday"},
	{regexp.MustCompile(`(?i)\b(tomorrow|today|next week)\b`), 2, "en relative day"},
	{regexp.MustCompile(`(?i)\b(invited|invite|join us)\b`), 2, "invitation vocabulary"},
}

// klClockRE is the Swedish clock marker ("kl. 14.00"). Its presence
// settles the region regardless of how much English surrounds it,
// since no US text writes times that way.
var klClockRE = seIndicators[0].pattern

// DetectRegion returns the writing-convention region for text.
func DetectRegion(text string) event.Region {
	region, _, _ := DetectRegionScored(text)
	return region
}

// DetectRegionScored returns the detected region along with both raw
// scores. A kl-clock match short-circuits to SE; otherwise the higher
// score wins and ties (including no signal at all) fall back to US.
func DetectRegionScored(text string) (event.Region, float64, float64) {
	if klClockRE.MatchString(text) {
		return event.RegionSE, scoreIndicators(usIndicators, text), scoreIndicators(seIndicators, text)
	}

	usScore := scoreIndicators(usIndicators, text)
	seScore := scoreIndicators(seIndicators, text)
	if seScore > usScore {
		return event.RegionSE, usScore, seScore
	}
	return event.RegionUS, usScore, seScore
}

func scoreIndicators(indicators []regionIndicator, text string) float64 {
	score := 0.0
	for _, ind := range indicators {
		if ind.pattern.MatchString(text) {
			score += ind.weight
		}
	}
	return score
}
