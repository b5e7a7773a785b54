package stats

import "time"

const dayLayout = "2006-01-02"

// WeekStart is the first day of a counting week.
const WeekStart = time.Sunday

// DayString returns the local calendar date of t as YYYY-MM-DD.
func DayString(t time.Time) string {
	return t.Format(dayLayout)
}

// Yesterday returns the calendar date one day before t as YYYY-MM-DD.
func Yesterday(t time.Time) string {
	return DayString(t.AddDate(0, 0, -1))
}

// WeekAnchor returns the date of the most recent WeekStart on or before t.
func WeekAnchor(t time.Time) string {
	offset := (int(t.Weekday()) - int(WeekStart) + 7) % 7
	return DayString(t.AddDate(0, 0, -offset))
}

// ParseDay parses a YYYY-MM-DD string in the local zone.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, s, time.Local)
}
