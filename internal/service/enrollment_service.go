// internal/service/enrollment_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/unclebandit/baz-scheduler/internal/model"
	"github.com/unclebandit/baz-scheduler/internal/pacing"
	"github.com/unclebandit/baz-scheduler/internal/repository"
)

// EnrollmentService backs the read and finish endpoints.
type EnrollmentService struct {
	Enrollments repository.EnrollmentRepositoryInterface
	Targets     repository.TargetRepositoryInterface
	SendRecords repository.SendRecordRepositoryInterface
	Location    *time.Location
	Now         func() time.Time
}

func NewEnrollmentService(
	enrollments repository.EnrollmentRepositoryInterface,
	targets repository.TargetRepositoryInterface,
	sendRecords repository.SendRecordRepositoryInterface,
) *EnrollmentService {
	return &EnrollmentService{
		Enrollments: enrollments,
		Targets:     targets,
		SendRecords: sendRecords,
		Location:    time.Local,
		Now:         time.Now,
	}
}

func (s *EnrollmentService) EnrollmentStats(ctx context.Context, id int) (*model.EnrollmentStats, error) {
	e, err := s.Enrollments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	total, err := s.Targets.CountByCustomer(ctx, e.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("count targets: %w", err)
	}
	sent, err := s.SendRecords.ListSuccessful(ctx, e.CustomerID, e.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("list successful sends: %w", err)
	}
	sentIDs := sentTargetIDs(sent)
	pending, err := s.Targets.CountPending(ctx, e.CustomerID, sentIDs)
	if err != nil {
		return nil, fmt.Errorf("count pending targets: %w", err)
	}
	failed, err := s.SendRecords.CountFailed(ctx, e.CustomerID, e.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("count failed sends: %w", err)
	}

	var first time.Time
	if len(sent) > 0 {
		first = sent[0].Timestamp
	}
	current := pacing.CurrentInterval(first, s.now())

	return &model.EnrollmentStats{
		EnrollmentID:       e.ID,
		CustomerID:         e.CustomerID,
		CampaignID:         e.CampaignID,
		Finished:           e.Finished,
		TotalTargets:       total,
		SentTargets:        len(sentIDs),
		FailedAttempts:     failed,
		PendingTargets:     pending,
		CurrentInterval:    current,
		RemainingIntervals: pacing.RemainingIntervals(e.Customer.IntervalWeeks, current),
	}, nil
}

func (s *EnrollmentService) Finish(ctx context.Context, id int) error {
	return s.Enrollments.MarkFinished(ctx, id)
}

func (s *EnrollmentService) now() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if s.Location == nil {
		return now()
	}
	return now().In(s.Location)
}
