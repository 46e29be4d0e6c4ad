// internal/service/batcher.go
package service

import (
	"context"
	"fmt"
	"time"

	appErrors "github.com/unclebandit/baz-scheduler/internal/errors"
	"github.com/unclebandit/baz-scheduler/internal/model"
	"github.com/unclebandit/baz-scheduler/internal/pacing"
	"github.com/unclebandit/baz-scheduler/internal/repository"
)

// Batch is the outcome of batching one enrollment for today.
type Batch struct {
	FirstSuccess       time.Time // zero when nothing was sent yet
	CurrentInterval    int
	RemainingIntervals int
	DaysRemaining      int
	Pending            int
	PerDayQuota        int
	TodayQuota         int
	Targets            []model.Target
}

// RecipientBatcher decides which targets of an enrollment are due today. It only reads.
type RecipientBatcher struct {
	Targets     repository.TargetRepositoryInterface
	SendRecords repository.SendRecordRepositoryInterface
}

func (b *RecipientBatcher) SelectForToday(ctx context.Context, e model.Enrollment, now time.Time) (*Batch, error) {
	if !e.Customer.ValidInterval() {
		return nil, fmt.Errorf("customer %d interval %d: %w", e.CustomerID, e.Customer.IntervalWeeks, appErrors.ErrInvalidInterval)
	}

	sent, err := b.SendRecords.ListSuccessful(ctx, e.CustomerID, e.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("list successful sends: %w", err)
	}

	batch := &Batch{}
	if len(sent) > 0 {
		batch.FirstSuccess = sent[0].Timestamp
	}
	batch.CurrentInterval = pacing.CurrentInterval(batch.FirstSuccess, now)
	batch.RemainingIntervals = pacing.RemainingIntervals(e.Customer.IntervalWeeks, batch.CurrentInterval)
	batch.DaysRemaining = pacing.WorkingDaysRemaining(batch.FirstSuccess, e.Customer.IntervalWeeks, now)

	exclude := sentTargetIDs(sent)
	batch.Pending, err = b.Targets.CountPending(ctx, e.CustomerID, exclude)
	if err != nil {
		return nil, fmt.Errorf("count pending targets: %w", err)
	}

	batch.PerDayQuota, err = pacing.PerDayQuota(batch.Pending, batch.DaysRemaining)
	if err != nil {
		return batch, err
	}
	batch.TodayQuota, err = pacing.TodayQuota(batch.Pending, batch.DaysRemaining)
	if err != nil {
		return batch, err
	}

	batch.Targets = []model.Target{}
	if batch.TodayQuota == 0 {
		return batch, nil
	}
	batch.Targets, err = b.Targets.ListPending(ctx, e.CustomerID, exclude, batch.TodayQuota)
	if err != nil {
		return nil, fmt.Errorf("list pending targets: %w", err)
	}
	return batch, nil
}

func sentTargetIDs(sent []model.SentTarget) []int {
	ids := make([]int, 0, len(sent))
	seen := make(map[int]bool, len(sent))
	for _, s := range sent {
		if !seen[s.TargetID] {
			seen[s.TargetID] = true
			ids = append(ids, s.TargetID)
		}
	}
	return ids
}
