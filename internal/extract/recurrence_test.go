package extract

import (
	"strings"
	"testing"
)

func TestExtractRecurrence_EveryWeekday(t *testing.T) {
	got := ExtractRecurrence("soccer practice every Tuesday at 4 pm")
	if !strings.Contains(got, "FREQ=WEEKLY") || !strings.Contains(got, "BYDAY=TU") {
		t.Errorf("expected weekly Tuesday rule, got %q", got)
	}
}

func TestExtractRecurrence_SwedishWeekday(t *testing.T) {
	got := ExtractRecurrence("simning varje torsdag kl. 17.00")
	if !strings.Contains(got, "FREQ=WEEKLY") || !strings.Contains(got, "BYDAY=TH") {
		t.Errorf("expected weekly Thursday rule, got %q", got)
	}
}

func TestExtractRecurrence_Frequencies(t *testing.T) {
	cases := map[string]string{
		"piano lesson weekly":  "FREQ=WEEKLY",
		"vitamins every day":   "FREQ=DAILY",
		"allowance monthly":    "FREQ=MONTHLY",
		"läxhjälp varje vecka": "FREQ=WEEKLY",
		"städning varje månad": "FREQ=MONTHLY",
	}
	for text, want := range cases {
		if got := ExtractRecurrence(text); !strings.Contains(got, want) {
			t.Errorf("ExtractRecurrence(%q) = %q, want contains %q", text, got, want)
		}
	}
}

func TestExtractRecurrence_OneOffEvent(t *testing.T) {
	if got := ExtractRecurrence("Emma's birthday party on 4/12"); got != "" {
		t.Errorf("one-off event should yield no rule, got %q", got)
	}
}
