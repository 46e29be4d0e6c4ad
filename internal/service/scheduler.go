// internal/service/scheduler.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unclebandit/baz-scheduler/internal/delivery"
	appErrors "github.com/unclebandit/baz-scheduler/internal/errors"
	"github.com/unclebandit/baz-scheduler/internal/logger"
	"github.com/unclebandit/baz-scheduler/internal/model"
	"github.com/unclebandit/baz-scheduler/internal/pacing"
	"github.com/unclebandit/baz-scheduler/internal/repository"
)

// ProgressReport summarizes what one pass did for one enrollment.
type ProgressReport struct {
	EnrollmentID       int
	CustomerID         int
	CampaignID         int
	CurrentInterval    int
	RemainingIntervals int
	DaysRemaining      int
	PendingBefore      int
	Dispatched         int
	Succeeded          int
	Failed             int
}

// CompletionObserver is notified after each enrollment a pass processed. It is
// the place to decide when an enrollment is finished; the scheduler itself never
// sets the flag.
type CompletionObserver interface {
	EnrollmentProcessed(ctx context.Context, report ProgressReport)
}

type PassResult struct {
	RunID             string    `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	Enrollments       int       `json:"enrollments"`
	Processed         int       `json:"processed"`
	Skipped           int       `json:"skipped"`
	FailedEnrollments int       `json:"failed_enrollments"`
	Dispatched        int       `json:"dispatched"`
	FailedDeliveries  int       `json:"failed_deliveries"`
}

// Scheduler runs one pass over every active enrollment.
type Scheduler struct {
	Enrollments repository.EnrollmentRepositoryInterface
	Batcher     *RecipientBatcher
	Recorder    *DispatchRecorder
	Completion  CompletionObserver
	Location    *time.Location
	Now         func() time.Time
}

func NewScheduler(
	enrollments repository.EnrollmentRepositoryInterface,
	targets repository.TargetRepositoryInterface,
	sendRecords repository.SendRecordRepositoryInterface,
	sender delivery.Sender,
) *Scheduler {
	return &Scheduler{
		Enrollments: enrollments,
		Batcher:     &RecipientBatcher{Targets: targets, SendRecords: sendRecords},
		Recorder:    &DispatchRecorder{Sender: sender, SendRecords: sendRecords},
		Location:    time.Local,
		Now:         time.Now,
	}
}

func (s *Scheduler) now() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

// Run executes a single pass. Enrollments with unusable data are skipped with a
// warning. Storage failures abort only the enrollment they hit; they are joined
// and returned once every enrollment had its turn.
func (s *Scheduler) Run(ctx context.Context) (*PassResult, error) {
	now := s.now()
	result := &PassResult{RunID: uuid.NewString(), StartedAt: now}
	log := logger.L().With(zap.String("run_id", result.RunID))

	enrollments, err := s.Enrollments.ListActive(ctx)
	if err != nil {
		return result, fmt.Errorf("list active enrollments: %w", err)
	}
	result.Enrollments = len(enrollments)
	log.Info("pass started", zap.Int("enrollments", len(enrollments)), zap.Time("now", now))

	var errs []error
	for _, e := range enrollments {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		elog := log.With(
			zap.Int("enrollment_id", e.ID),
			zap.Int("customer_id", e.CustomerID),
			zap.Int("campaign_id", e.CampaignID),
		)
		report, err := s.processEnrollment(ctx, elog, e, now)
		switch {
		case err == nil:
			result.Processed++
			result.Dispatched += report.Dispatched
			result.FailedDeliveries += report.Failed
			if s.Completion != nil {
				s.Completion.EnrollmentProcessed(ctx, report)
			}
		case appErrors.IsDataError(err):
			result.Skipped++
			elog.Warn("enrollment skipped", zap.Error(err))
		default:
			result.FailedEnrollments++
			result.Dispatched += report.Dispatched
			result.FailedDeliveries += report.Failed
			elog.Error("enrollment failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("enrollment %d: %w", e.ID, err))
		}
	}

	log.Info("pass finished",
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed_enrollments", result.FailedEnrollments),
		zap.Int("dispatched", result.Dispatched),
		zap.Int("failed_deliveries", result.FailedDeliveries),
	)
	return result, errors.Join(errs...)
}

func (s *Scheduler) processEnrollment(ctx context.Context, log *zap.Logger, e model.Enrollment, now time.Time) (ProgressReport, error) {
	report := ProgressReport{
		EnrollmentID: e.ID,
		CustomerID:   e.CustomerID,
		CampaignID:   e.CampaignID,
	}

	batch, err := s.Batcher.SelectForToday(ctx, e, now)
	if batch != nil {
		report.CurrentInterval = batch.CurrentInterval
		report.RemainingIntervals = batch.RemainingIntervals
		report.DaysRemaining = batch.DaysRemaining
		report.PendingBefore = batch.Pending
	}
	if err != nil {
		return report, err
	}

	log.Info("enrollment batched",
		zap.Int("current_interval", batch.CurrentInterval),
		zap.Int("remaining_intervals", batch.RemainingIntervals),
		zap.Int("days_remaining", batch.DaysRemaining),
		zap.Int("pending", batch.Pending),
		zap.Int("per_day_quota", batch.PerDayQuota),
		zap.Int("today_quota", batch.TodayQuota),
	)
	if len(batch.Targets) == 0 {
		return report, nil
	}

	slots := pacing.GenerateSlots(now, len(batch.Targets))
	if len(slots) < len(batch.Targets) {
		log.Info("slot capacity reached, remaining targets stay pending",
			zap.Int("targets", len(batch.Targets)),
			zap.Int("slots", len(slots)),
		)
	}

	res, err := s.Recorder.Dispatch(ctx, batch.Targets, e.Campaign, e.Customer, batch.CurrentInterval, slots)
	report.Dispatched = res.Written
	report.Succeeded = res.Succeeded
	report.Failed = res.Failed
	return report, err
}
