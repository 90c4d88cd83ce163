package dateutil

import (
	"testing"
	"time"
)

// pinClock fixes the package clock for a test and restores it afterwards.
func pinClock(t *testing.T, fixed time.Time) {
	t.Helper()
	old := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = old })
}

func TestDateKey(t *testing.T) {
	d := time.Date(2025, 3, 7, 15, 4, 5, 0, time.Local)
	if got := DateKey(d); got != "2025-03-07" {
		t.Errorf("expected 2025-03-07, got %s", got)
	}
}

func TestTodayAndYesterdayKey(t *testing.T) {
	pinClock(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local))

	if got := TodayKey(); got != "2025-01-01" {
		t.Errorf("expected 2025-01-01, got %s", got)
	}
	if got := YesterdayKey(); got != "2024-12-31" {
		t.Errorf("expected 2024-12-31, got %s", got)
	}
}

func TestAddDays(t *testing.T) {
	if got := AddDays("2025-01-30", 3); got != "2025-02-02" {
		t.Errorf("expected 2025-02-02, got %s", got)
	}
	if got := AddDays("2025-01-01", -1); got != "2024-12-31" {
		t.Errorf("expected 2024-12-31, got %s", got)
	}
	if got := AddDays("not-a-date", 1); got != "" {
		t.Errorf("expected empty string for bad key, got %s", got)
	}
}

func TestWeekDatesStartsOnMonday(t *testing.T) {
	// 2025-03-05 is a Wednesday.
	pinClock(t, time.Date(2025, 3, 5, 12, 0, 0, 0, time.Local))

	week := WeekDates(0)
	if len(week) != 7 {
		t.Fatalf("expected 7 dates, got %d", len(week))
	}
	if week[0] != "2025-03-03" {
		t.Errorf("expected week to start 2025-03-03 (Monday), got %s", week[0])
	}
	if week[6] != "2025-03-09" {
		t.Errorf("expected week to end 2025-03-09 (Sunday), got %s", week[6])
	}
}

func TestWeekDatesSundayBelongsToCurrentWeek(t *testing.T) {
	// 2025-03-09 is a Sunday; the week still opens the previous Monday.
	pinClock(t, time.Date(2025, 3, 9, 12, 0, 0, 0, time.Local))

	week := WeekDates(0)
	if week[0] != "2025-03-03" {
		t.Errorf("expected 2025-03-03, got %s", week[0])
	}

	prev := WeekDates(1)
	if prev[0] != "2025-02-24" {
		t.Errorf("expected 2025-02-24, got %s", prev[0])
	}
}

func TestLast30Days(t *testing.T) {
	pinClock(t, time.Date(2025, 3, 31, 12, 0, 0, 0, time.Local))

	days := Last30Days()
	if len(days) != 30 {
		t.Fatalf("expected 30 dates, got %d", len(days))
	}
	if days[0] != "2025-03-02" {
		t.Errorf("expected oldest 2025-03-02, got %s", days[0])
	}
	if days[29] != "2025-03-31" {
		t.Errorf("expected newest 2025-03-31, got %s", days[29])
	}
}

func TestDaysBetween(t *testing.T) {
	pinClock(t, time.Date(2025, 3, 11, 12, 0, 0, 0, time.Local))

	// Partial days round up.
	if got := DaysBetween("2025-03-01"); got != 11 {
		t.Errorf("expected 11, got %d", got)
	}
	if got := DaysBetween("2025-03-11"); got != 1 {
		t.Errorf("expected 1 for same-day partial, got %d", got)
	}
	if got := DaysBetween("garbage"); got != 0 {
		t.Errorf("expected 0 for bad key, got %d", got)
	}
}

func TestValidKey(t *testing.T) {
	if !ValidKey("2025-06-30") {
		t.Error("expected 2025-06-30 to be valid")
	}
	if ValidKey("2025-13-01") {
		t.Error("expected 2025-13-01 to be invalid")
	}
	if ValidKey("30/06/2025") {
		t.Error("expected slash format to be invalid")
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate("2025-03-03"); got != "Mon, 3 Mar" {
		t.Errorf("expected Mon, 3 Mar, got %s", got)
	}
	if got := FormatDate("oops"); got != "oops" {
		t.Errorf("expected bad key unchanged, got %s", got)
	}
}

func TestSafeParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		def  float64
		want float64
	}{
		{"72.5", 72, 72.5},
		{" 65 ", 0, 65},
		{"abc", 72, 72},
		{"", 10, 10},
		{"NaN", 5, 5},
		{"Inf", 5, 5},
	}
	for _, tt := range tests {
		if got := SafeParseFloat(tt.in, tt.def); got != tt.want {
			t.Errorf("SafeParseFloat(%q, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}

func TestSafeParseInt(t *testing.T) {
	tests := []struct {
		in   string
		def  int
		want int
	}{
		{"350", 0, 350},
		{"abc", 0, 0},
		{"", 7, 7},
		{"12.9", 0, 12},
		{"-5", 0, -5},
	}
	for _, tt := range tests {
		if got := SafeParseInt(tt.in, tt.def); got != tt.want {
			t.Errorf("SafeParseInt(%q, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}
