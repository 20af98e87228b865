package ocr

import (
	"testing"
)

func TestCleanText_NumericConfusions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"letter I between digits", "party on 1I/4", "party on 11/4"},
		{"letter O between digits", "year 2O26", "year 2026"},
		{"double O", "year 2OO6", "year 2006"},
		{"letter S between digits", "at 1S:30", "at 15:30"},
		{"leading I in clock", "at I2:30", "at 12:30"},
		{"leading O in date", "on O5/20", "on 05/20"},
		{"trailing O in clock", "at 12:3O", "at 12:30"},
		{"word I untouched", "I will come at 2:00", "I will come at 2:00"},
		{"invitation untouched", "Invitation to the party", "Invitation to the party"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.in)
			if got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanText_Hyphenation(t *testing.T) {
	got := CleanText("Emma's birth-\nday party")
	if got != "Emma's birthday party" {
		t.Errorf("got %q", got)
	}
}

func TestCleanText_SoftWrapsJoined(t *testing.T) {
	got := CleanText("Soccer practice\nevery Tuesday at 4 pm")
	if got != "Soccer practice every Tuesday at 4 pm" {
		t.Errorf("got %q", got)
	}
}

func TestCleanText_SentenceBreaksKept(t *testing.T) {
	got := CleanText("You are invited.\nSaturday at noon")
	want := "You are invited.\nSaturday at noon"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCleanText_WhitespaceCollapsed(t *testing.T) {
	got := CleanText("  dentist   on  5/20  ")
	if got != "dentist on 5/20" {
		t.Errorf("got %q", got)
	}
}

func TestCleanText_Deterministic(t *testing.T) {
	in := "Kalas pa lOrdag den I2/4 kl. 14.OO\nhos Anna"
	first := CleanText(in)
	second := CleanText(first)
	if first != second {
		t.Errorf("cleanup not idempotent: %q then %q", first, second)
	}
}
