package pacing

import "time"

// WorkingDayScan is the number of calendar dates, today included, inspected when
// counting working days. Boundaries farther out are never reached.
const WorkingDayScan = 31

// CurrentInterval returns the 1-based interval that now falls into, counting whole
// weeks between the calendar date of firstSuccess and today's date.
// A zero firstSuccess means nothing was sent yet and today starts interval 1.
func CurrentInterval(firstSuccess, now time.Time) int {
	if firstSuccess.IsZero() {
		firstSuccess = now
	}
	days := daysBetween(firstSuccess.In(now.Location()), now)
	if days < 0 {
		return 1
	}
	return days/7 + 1
}

// RemainingIntervals may be zero or negative once the configured duration elapsed.
func RemainingIntervals(intervalWeeks, current int) int {
	return intervalWeeks - current
}

// WorkingDaysRemaining counts Monday–Friday dates from today up to and including
// firstSuccess + intervalWeeks weeks, looking at most WorkingDayScan dates ahead.
func WorkingDaysRemaining(firstSuccess time.Time, intervalWeeks int, now time.Time) int {
	if firstSuccess.IsZero() {
		firstSuccess = now
	}
	boundary := civilDate(firstSuccess.In(now.Location())).AddDate(0, 0, 7*intervalWeeks)
	today := civilDate(now)

	count := 0
	for i := 0; i < WorkingDayScan; i++ {
		d := today.AddDate(0, 0, i)
		if d.After(boundary) {
			break
		}
		if IsWorkingDay(d) {
			count++
		}
	}
	return count
}

func IsWorkingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// civilDate drops the clock and the zone, keeping the wall-clock date. Doing date
// arithmetic in UTC keeps DST shifts out of day counts.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(civilDate(to).Sub(civilDate(from)).Hours() / 24)
}
