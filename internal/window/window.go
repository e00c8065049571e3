// Package window computes birthday occurrences inside an inclusive calendar
// window, including windows that wrap a year boundary.
package window

import "time"

// NextOccurrence returns the occurrence of dob's birthday that falls inside
// the inclusive window [start, end], or ok=false when none does.
//
// A Feb 29 birthday maps to Feb 28 in non-leap candidate years.
//
// A window wraps a year boundary when end's calendar position precedes
// start's (e.g. Dec 20 to Jan 5): the birthday is mapped onto start's year
// for the tail of the window and onto end's year for its head; at most one
// of the two can land inside. Callers may express the wrap either with a
// later-year end date or with a bare month/day end that sorts before start.
func NextOccurrence(dob, start, end time.Time) (time.Time, bool) {
	dob = truncate(dob)
	start = truncate(start)
	end = truncate(end)

	// Lift a bare calendar-wrapped end (end sorts before start) into
	// start's year or the one after, whichever closes the window.
	if end.Before(start) {
		end = time.Date(start.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
		if end.Before(start) {
			end = end.AddDate(1, 0, 0)
		}
	}

	// Tail of the window: start's year.
	if c := mapToYear(dob, start.Year()); within(c, start, end) {
		return c, true
	}
	// Head of a wrapped window: end's year.
	if end.Year() > start.Year() {
		if c := mapToYear(dob, end.Year()); within(c, start, end) {
			return c, true
		}
	}
	return time.Time{}, false
}

// TurningAge is the age reached on the matched occurrence.
func TurningAge(dob, occurrence time.Time) int {
	return occurrence.Year() - dob.Year()
}

// mapToYear places dob's month/day into the given year, remapping Feb 29 to
// Feb 28 when the year is not a leap year.
func mapToYear(dob time.Time, year int) time.Time {
	month, day := dob.Month(), dob.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func within(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
