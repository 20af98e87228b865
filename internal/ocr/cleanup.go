package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanText applies deterministic post-processing to raw OCR output so
// the extraction patterns downstream see well-formed text:
// - Unicode NFC normalization
// - letter/digit confusion fixes in numeric contexts (I→1, O→0, l→1, S→5)
// - hyphenated line-break joins ("birth-\nday" → "birthday")
// - line-break normalization around punctuation
// - whitespace collapsing
func CleanText(text string) string {
	text = norm.NFC.String(text)
	text = joinHyphenation(text)
	text = fixNumericConfusions(text)
	text = normalizeLineBreaks(text)
	return strings.TrimSpace(text)
}

// hyphenBreakRE matches a hyphen at end of line followed by the
// continuation on the next line.
var hyphenBreakRE = regexp.MustCompile(`(\p{L})-\s*\n\s*(\p{L})`)

func joinHyphenation(text string) string {
	return hyphenBreakRE.ReplaceAllString(text, "$1$2")
}

// Confusion fixes only apply when the mistaken letter sits between
// digits or clock/date punctuation; "I" in "Invitation" is left alone.
var confusionFixes = []struct {
	re          *regexp.Regexp
	replacement string
}{
	// Letter between two digits: "1I/4" → "11/4", "2O26" → "2026".
	{regexp.MustCompile(`(\d)[Il](\d)`), "${1}1${2}"},
	{regexp.MustCompile(`(\d)[O]([O\d])`), "${1}0${2}"},
	{regexp.MustCompile(`(\d)[S](\d)`), "${1}5${2}"},
	// Letter right after a clock or date separator: "4/I2" → "4/12".
	{regexp.MustCompile(`([/:.])[Il](\d)`), "${1}1${2}"},
	{regexp.MustCompile(`([/:.])[O](\d)`), "${1}0${2}"},
	{regexp.MustCompile(`([/:.])[S](\d)`), "${1}5${2}"},
	// Letter before a clock or date separator: "1I/4" → "11/4", "1S:30" → "15:30".
	{regexp.MustCompile(`(\d)[Il]([:./]\d)`), "${1}1${2}"},
	{regexp.MustCompile(`(\d)[O]([:./]\d)`), "${1}0${2}"},
	{regexp.MustCompile(`(\d)[S]([:./]\d)`), "${1}5${2}"},
	// Letter leading a clock or date group: "I2:30" → "12:30", "O5/20" → "05/20".
	{regexp.MustCompile(`\b[Il](\d[:./]\d)`), "1${1}"},
	{regexp.MustCompile(`\b[O](\d[:./]\d)`), "0${1}"},
	// Letter trailing a clock group: "12:3O" → "12:30".
	{regexp.MustCompile(`(\d[:.]\d)[O]\b`), "${1}0"},
	{regexp.MustCompile(`(\d[:.]\d)[Il]\b`), "${1}1"},
	{regexp.MustCompile(`(\d[:.]\d)[S]\b`), "${1}5"},
}

func fixNumericConfusions(text string) string {
	for _, f := range confusionFixes {
		// Apply twice: "2OO6" needs a second pass after the first O is fixed.
		text = f.re.ReplaceAllString(text, f.replacement)
		text = f.re.ReplaceAllString(text, f.replacement)
	}
	return text
}

var (
	multipleSpacesRE   = regexp.MustCompile(`[ \t]{2,}`)
	multipleNewlinesRE = regexp.MustCompile(`\n{2,}`)
)

// normalizeLineBreaks keeps breaks that follow sentence punctuation and
// flattens mid-sentence wraps into spaces, so a wrapped invitation reads
// as continuous text.
func normalizeLineBreaks(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = multipleNewlinesRE.ReplaceAllString(text, "\n")
	text = joinSoftWraps(text)
	text = multipleSpacesRE.ReplaceAllString(text, " ")
	return text
}

// joinSoftWraps replaces mid-sentence line breaks with spaces; breaks
// after sentence punctuation stay as line breaks.
func joinSoftWraps(text string) string {
	lines := strings.Split(text, "\n")
	var b strings.Builder
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if b.Len() > 0 {
			prev := b.String()
			if strings.HasSuffix(prev, ".") || strings.HasSuffix(prev, "!") ||
				strings.HasSuffix(prev, "?") || strings.HasSuffix(prev, ":") {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(trimmed)
	}
	return b.String()
}
