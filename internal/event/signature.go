package event

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ComputeSignature computes the dedup signature for an event: SHA-256 over
// normalized title + calendar date (day granularity, never time of day) +
// child reference + event type, NUL-separated.
//
// Two events with the same signature are candidates for merge; the
// time-proximity check in the store decides whether they actually collapse.
func ComputeSignature(title string, date time.Time, child *ChildRef, eventType Type) string {
	childKey := ""
	if child != nil {
		if child.ID != "" {
			childKey = child.ID
		} else {
			childKey = normalizeTitle(child.Name)
		}
	}

	h := sha256.New()
	h.Write([]byte(normalizeTitle(title)))
	h.Write([]byte{0})
	h.Write([]byte(date.Format("2006-01-02")))
	h.Write([]byte{0})
	h.Write([]byte(childKey))
	h.Write([]byte{0})
	h.Write([]byte(eventType))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// normalizeTitle lower-cases and collapses runs of whitespace so that
// cosmetic edits ("Emma's  Birthday " vs "emma's birthday") do not change
// the signature.
func normalizeTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
