package extract

import (
	"testing"
	"time"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
)

// fixedNow is a Sunday in early March; every extracted date in these
// tests is relative to it.
var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestExtractDateTime_USNumericDate(t *testing.T) {
	r := ExtractDateTime("Emma's 7th birthday party on 4/12 at 2:00 PM", event.RegionUS, event.TypeBirthday, fixedNow)
	if !r.DateFound || !r.TimeFound {
		t.Fatalf("expected date and time found, got %+v", r)
	}
	want := time.Date(2026, 4, 12, 14, 0, 0, 0, time.UTC)
	if !r.Time.Equal(want) {
		t.Errorf("expected %v, got %v", want, r.Time)
	}
}

func TestExtractDateTime_SENumericDateDayFirst(t *testing.T) {
	r := ExtractDateTime("Kalas för Anna den 12/4 kl. 14.00", event.RegionSE, event.TypeBirthday, fixedNow)
	want := time.Date(2026, 4, 12, 14, 0, 0, 0, time.UTC)
	if !r.Time.Equal(want) {
		t.Errorf("day-first parse: expected %v, got %v", want, r.Time)
	}
}

func TestExtractDateTime_TwoDigitYearWindow(t *testing.T) {
	r := ExtractDateTime("dentist on 5/20/27", event.RegionUS, event.TypeDental, fixedNow)
	if r.Time.Year() != 2027 {
		t.Errorf("two-digit year should window to 2000+, got %d", r.Time.Year())
	}
}

func TestExtractDateTime_InvalidNumericFallsThroughToMonthName(t *testing.T) {
	// 13/32 is not a valid month/day in either convention; the
	// month-name rule should pick up "April 12" instead.
	r := ExtractDateTime("moved from 13/32 to April 12", event.RegionUS, event.TypeGeneric, fixedNow)
	if !r.DateFound {
		t.Fatal("expected a date")
	}
	if r.Time.Month() != time.April || r.Time.Day() != 12 {
		t.Errorf("expected April 12, got %v", r.Time)
	}
}

func TestExtractDateTime_MonthNameSwedish(t *testing.T) {
	r := ExtractDateTime("den 12 april", event.RegionSE, event.TypeGeneric, fixedNow)
	if r.Time.Month() != time.April || r.Time.Day() != 12 {
		t.Errorf("expected April 12, got %v", r.Time)
	}
}

func TestExtractDateTime_Tomorrow(t *testing.T) {
	r := ExtractDateTime("playdate tomorrow", event.RegionUS, event.TypePlaydate, fixedNow)
	if r.Time.Day() != 2 || r.Time.Month() != time.March {
		t.Errorf("expected March 2, got %v", r.Time)
	}
	if !r.DateFound {
		t.Error("relative term should count as a found date")
	}
}

func TestExtractDateTime_NextWeekday(t *testing.T) {
	// fixedNow is a Sunday; "on friday" means the following Friday.
	r := ExtractDateTime("soccer practice on friday", event.RegionUS, event.TypeSports, fixedNow)
	if r.Time.Weekday() != time.Friday {
		t.Fatalf("expected a Friday, got %v", r.Time.Weekday())
	}
	if !r.Time.After(fixedNow) {
		t.Error("weekday reference should resolve forward")
	}
}

func TestExtractDateTime_DefaultTimes(t *testing.T) {
	cases := []struct {
		eventType event.Type
		wantHour  int
	}{
		{event.TypeBirthday, 14},
		{event.TypeDoctor, 10},
		{event.TypeDental, 10},
		{event.TypeSports, 16},
		{event.TypeGeneric, 12},
		{event.TypeSchool, 12},
	}
	for _, tc := range cases {
		r := ExtractDateTime("on 6/15", event.RegionUS, tc.eventType, fixedNow)
		if r.TimeFound {
			t.Errorf("%s: no time in text, TimeFound should be false", tc.eventType)
		}
		if r.Time.Hour() != tc.wantHour {
			t.Errorf("%s: expected default hour %d, got %d", tc.eventType, tc.wantHour, r.Time.Hour())
		}
	}
}

func TestExtractDateTime_PastDateRollsForward(t *testing.T) {
	// January 10 is behind the March 1 reference date.
	r := ExtractDateTime("party on 1/10 at 2 pm", event.RegionUS, event.TypeBirthday, fixedNow)
	if r.Time.Year() != 2027 {
		t.Errorf("past date should roll forward one year, got %v", r.Time)
	}
	if r.Time.Month() != time.January || r.Time.Day() != 10 {
		t.Errorf("month/day should be preserved on rollover, got %v", r.Time)
	}
}

func TestExtractDateTime_SameDayEarlierTimePreserved(t *testing.T) {
	// 08:00 today is before the 09:00 reference time but on the same
	// calendar day, so the year must not roll.
	r := ExtractDateTime("meeting today at 8:00 am", event.RegionUS, event.TypeAppointment, fixedNow)
	if r.Time.Year() != 2026 || r.Time.Day() != 1 {
		t.Errorf("same-day earlier time should be preserved, got %v", r.Time)
	}
}

func TestExtractDateTime_CrossRegionTimeFallback(t *testing.T) {
	// US region but a 24-hour time: the other region's clock style is
	// tried as a fallback.
	r := ExtractDateTime("school event on 5/20 at 18:30", event.RegionUS, event.TypeSchool, fixedNow)
	if !r.TimeFound {
		t.Fatal("expected the 24-hour fallback to find the time")
	}
	if r.Time.Hour() != 18 || r.Time.Minute() != 30 {
		t.Errorf("expected 18:30, got %v", r.Time)
	}

	// SE region with an am/pm time.
	r = ExtractDateTime("kalas den 12/4 at 3 pm", event.RegionSE, event.TypeBirthday, fixedNow)
	if r.Time.Hour() != 15 {
		t.Errorf("expected 15:00 from am/pm fallback, got %v", r.Time)
	}
}

func TestExtractDateTime_TwelveHourEdges(t *testing.T) {
	r := ExtractDateTime("lunch at 12 pm on 6/15", event.RegionUS, event.TypeGeneric, fixedNow)
	if r.Time.Hour() != 12 {
		t.Errorf("12 pm should be noon, got %d", r.Time.Hour())
	}
	r = ExtractDateTime("leaving at 12 am on 6/15", event.RegionUS, event.TypeGeneric, fixedNow)
	if r.Time.Hour() != 0 {
		t.Errorf("12 am should be midnight, got %d", r.Time.Hour())
	}
}

func TestExtractDateTime_NothingFound(t *testing.T) {
	r := ExtractDateTime("let's figure something out", event.RegionUS, event.TypeGeneric, fixedNow)
	if r.DateFound || r.TimeFound {
		t.Errorf("expected nothing found, got %+v", r)
	}
	// Still a concrete instant: today at the generic default hour.
	if r.Time.IsZero() {
		t.Fatal("result must never be zero")
	}
	if r.Time.Day() != fixedNow.Day() || r.Time.Hour() != 12 {
		t.Errorf("expected today at noon, got %v", r.Time)
	}
}
