// Package dateutil provides the canonical date-key helpers and total numeric
// parsers used throughout the tracker. Date keys are local calendar dates in
// YYYY-MM-DD form; there is no timezone logic beyond "local day".
package dateutil

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const keyLayout = "2006-01-02"

// now is swapped out in tests to pin the clock.
var now = time.Now

// DateKey formats t as a canonical date key.
func DateKey(t time.Time) string {
	return t.Format(keyLayout)
}

// TodayKey returns the date key for the current local day.
func TodayKey() string {
	return DateKey(now())
}

// YesterdayKey returns the date key for the previous local day.
func YesterdayKey() string {
	return DateKey(now().AddDate(0, 0, -1))
}

// AddDays returns the date key n days after the given key. An unparseable key
// degrades to the empty string rather than failing.
func AddDays(key string, n int) string {
	t, err := time.ParseInLocation(keyLayout, key, time.Local)
	if err != nil {
		return ""
	}
	return DateKey(t.AddDate(0, 0, n))
}

// WeekDates returns the 7 consecutive date keys of the Monday-starting week
// weeksBack weeks before the current one. weeksBack 0 is the current week.
func WeekDates(weeksBack int) []string {
	today := now()

	// time.Weekday counts Sunday as 0; shift so Monday opens the week.
	offset := int(today.Weekday()) - 1
	if offset < 0 {
		offset = 6
	}
	monday := today.AddDate(0, 0, -offset-weeksBack*7)

	dates := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		dates = append(dates, DateKey(monday.AddDate(0, 0, i)))
	}
	return dates
}

// Last30Days returns the 30 consecutive date keys ending today, oldest first.
func Last30Days() []string {
	today := now()
	dates := make([]string, 0, 30)
	for i := 29; i >= 0; i-- {
		dates = append(dates, DateKey(today.AddDate(0, 0, -i)))
	}
	return dates
}

// DaysBetween returns the whole days elapsed from the startKey date to today,
// rounded up so a partial day counts. Unparseable input degrades to 0.
func DaysBetween(startKey string) int {
	start, err := time.ParseInLocation(keyLayout, startKey, time.Local)
	if err != nil {
		return 0
	}
	diff := now().Sub(start)
	if diff < 0 {
		diff = -diff
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// ValidKey reports whether s is a well-formed date key.
func ValidKey(s string) bool {
	_, err := time.ParseInLocation(keyLayout, s, time.Local)
	return err == nil
}

// FormatDate renders a date key for display ("Mon, 2 Jan"). Unparseable keys
// are returned unchanged.
func FormatDate(key string) string {
	t, err := time.ParseInLocation(keyLayout, key, time.Local)
	if err != nil {
		return key
	}
	return t.Format("Mon, 2 Jan")
}

// SafeParseFloat parses s as a float, substituting def on any failure. It
// never returns NaN or Inf.
func SafeParseFloat(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// SafeParseInt parses s as a base-10 int, substituting def on any failure.
// A float-looking value is truncated toward zero, matching parseInt semantics.
func SafeParseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return def
}
