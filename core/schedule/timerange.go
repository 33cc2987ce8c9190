package schedule

import "time"

const clockLayout = "15:04"

// ValidClock reports whether s is a zero-padded 24-hour HH:MM time.
// Fixed width keeps lexicographic order equal to chronological order.
func ValidClock(s string) bool {
	if len(s) != len(clockLayout) {
		return false
	}
	_, err := time.Parse(clockLayout, s)
	return err == nil
}

// Overlaps reports whether the half-open ranges [aStart, aEnd) and [bStart, bEnd) intersect.
// Ranges that only touch at an endpoint do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}

// Window formats a time range for messages.
func Window(start, end string) string {
	return start + "-" + end
}
