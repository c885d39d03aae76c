package core

import "time"

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// AddMonthsClamped adds n calendar months to t, keeping the day of month when the
// target month has it and clamping to the target month's last day otherwise.
// Jan 31 + 1 month is Feb 29 in a leap year and Feb 28 otherwise. The wall-clock
// time of day is preserved in t's location.
func AddMonthsClamped(t time.Time, n int) time.Time {
	loc := t.Location()
	year, month, day := t.Date()

	// Normalise year/month first so the day never overflows into the next month.
	target := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, loc)
	last := DaysIn(target.Year(), target.Month(), loc)
	if day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// AddYearsClamped adds n years; Feb 29 lands on Feb 28 in non-leap years.
func AddYearsClamped(t time.Time, n int) time.Time {
	return AddMonthsClamped(t, 12*n)
}

// SameMonth reports whether a and b fall in the same calendar month of loc.
func SameMonth(a, b time.Time, loc *time.Location) bool {
	ay, am, _ := a.In(loc).Date()
	by, bm, _ := b.In(loc).Date()
	return ay == by && am == bm
}
