package booking

import "time"

// ConflictStatuses are the booking states that hold a claim on the
// equipment's calendar. Cancelled bookings release their range and a
// completed booking's range is already in the past.
var ConflictStatuses = []Status{StatusPending, StatusActive, StatusOverdue}

// Overlaps reports whether the closed intervals [aStart, aEnd] and
// [bStart, bEnd] intersect: aStart <= bEnd && bStart <= aEnd.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// holdsCalendar reports whether a booking in the given status blocks
// other bookings.
func holdsCalendar(s Status) bool {
	for _, cs := range ConflictStatuses {
		if s == cs {
			return true
		}
	}
	return false
}
