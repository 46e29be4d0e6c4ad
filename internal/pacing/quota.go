package pacing

import (
	appErrors "github.com/unclebandit/baz-scheduler/internal/errors"
)

// PerDayQuota spreads pending targets evenly over the remaining working days.
func PerDayQuota(pending, daysRemaining int) (int, error) {
	if daysRemaining <= 0 {
		return 0, appErrors.ErrNoWorkingDays
	}
	return pending / daysRemaining, nil
}

// TodayQuota is the number of targets to process today. On the last working day
// every pending target is due.
func TodayQuota(pending, daysRemaining int) (int, error) {
	perDay, err := PerDayQuota(pending, daysRemaining)
	if err != nil {
		return 0, err
	}
	quota := perDay
	if daysRemaining == 1 {
		quota = pending
	}
	if quota > pending {
		quota = pending
	}
	if quota < 0 {
		quota = 0
	}
	return quota, nil
}
