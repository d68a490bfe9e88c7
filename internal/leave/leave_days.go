package leave

import "time"

const secondsPerDay = 24 * 60 * 60

// MaxLeaveDays caps a single request. Longer spans are rejected at submission.
const MaxLeaveDays = 366

// CalculateDays counts the calendar days covered by from and to, both
// included. The order of the two dates does not matter.
func CalculateDays(from, to time.Time) int {
	span := dayNumber(to) - dayNumber(from)
	if span < 0 {
		span = -span
	}
	return int(span) + 1
}

// dayNumber is the signed count of days between the Unix epoch and t's date.
// Midnight UTC is an exact multiple of secondsPerDay, so the division is exact.
func dayNumber(t time.Time) int64 {
	return truncateToDate(t).Unix() / secondsPerDay
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
