package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/unclebandit/baz-scheduler/internal/delivery"
	appErrors "github.com/unclebandit/baz-scheduler/internal/errors"
	"github.com/unclebandit/baz-scheduler/internal/model"
	"github.com/unclebandit/baz-scheduler/internal/repository"
)

// memStore implements all three repositories over slices.
type memStore struct {
	mu           sync.Mutex
	enrollments  []model.Enrollment
	targets      []model.Target
	records      []model.SendRecord
	nextTargetID int
	nextRecordID int

	listErr    error
	successErr map[int]error // keyed by customer id
	appendErr  error
}

var (
	_ repository.EnrollmentRepositoryInterface = (*memStore)(nil)
	_ repository.TargetRepositoryInterface     = (*memStore)(nil)
	_ repository.SendRecordRepositoryInterface = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{nextTargetID: 1, nextRecordID: 1, successErr: map[int]error{}}
}

// enroll adds a customer with n fresh targets and an unfinished enrollment.
func (m *memStore) enroll(id int, weeks, n int) model.Enrollment {
	customer := model.Customer{ID: id, Name: fmt.Sprintf("customer-%d", id), IntervalWeeks: weeks}
	for i := 0; i < n; i++ {
		tid := m.nextTargetID
		m.nextTargetID++
		m.targets = append(m.targets, model.Target{ID: tid, CustomerID: id, Email: fmt.Sprintf("t%d@example.com", tid)})
	}
	e := model.Enrollment{
		ID:         id,
		CustomerID: id,
		CampaignID: 1,
		Customer:   customer,
		Campaign:   model.Campaign{ID: 1, Title: "Autumn launch", Content: "Our autumn collection is here"},
	}
	m.enrollments = append(m.enrollments, e)
	return e
}

func (m *memStore) addRecord(targetID, customerID int, ts time.Time, success bool) {
	m.records = append(m.records, model.SendRecord{
		ID:         m.nextRecordID,
		TargetID:   targetID,
		CustomerID: customerID,
		CampaignID: 1,
		Timestamp:  ts,
		Interval:   1,
		Success:    success,
	})
	m.nextRecordID++
}

func (m *memStore) ListActive(ctx context.Context) ([]model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	active := []model.Enrollment{}
	for _, e := range m.enrollments {
		if e.Finished {
			continue
		}
		e.Customer.Targets = m.targetsOf(e.CustomerID)
		active = append(active, e)
	}
	return active, nil
}

func (m *memStore) GetByID(ctx context.Context, id int) (*model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.enrollments {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, appErrors.NewEnrollmentNotFound(id)
}

func (m *memStore) MarkFinished(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.enrollments {
		if m.enrollments[i].ID == id {
			m.enrollments[i].Finished = true
			return nil
		}
	}
	return appErrors.NewEnrollmentNotFound(id)
}

func (m *memStore) CountByCustomer(ctx context.Context, customerID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.targetsOf(customerID)), nil
}

func (m *memStore) CountPending(ctx context.Context, customerID int, exclude []int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending(customerID, exclude)), nil
}

func (m *memStore) ListPending(ctx context.Context, customerID int, exclude []int, limit int) ([]model.Target, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending := m.pending(customerID, exclude)
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (m *memStore) ListSuccessful(ctx context.Context, customerID, campaignID int) ([]model.SentTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.successErr[customerID]; err != nil {
		return nil, err
	}
	var ok []model.SendRecord
	for _, r := range m.records {
		if r.Success && r.CustomerID == customerID && r.CampaignID == campaignID {
			ok = append(ok, r)
		}
	}
	sort.SliceStable(ok, func(i, j int) bool {
		if !ok[i].Timestamp.Equal(ok[j].Timestamp) {
			return ok[i].Timestamp.Before(ok[j].Timestamp)
		}
		return ok[i].ID < ok[j].ID
	})
	sent := make([]model.SentTarget, 0, len(ok))
	for _, r := range ok {
		sent = append(sent, model.SentTarget{TargetID: r.TargetID, Timestamp: r.Timestamp})
	}
	return sent, nil
}

func (m *memStore) CountFailed(ctx context.Context, customerID, campaignID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.records {
		if !r.Success && r.CustomerID == customerID && r.CampaignID == campaignID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) BulkAppend(ctx context.Context, records []model.SendRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	for _, r := range records {
		r.ID = m.nextRecordID
		m.nextRecordID++
		m.records = append(m.records, r)
	}
	return nil
}

func (m *memStore) targetsOf(customerID int) []model.Target {
	out := []model.Target{}
	for _, t := range m.targets {
		if t.CustomerID == customerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) pending(customerID int, exclude []int) []model.Target {
	skip := make(map[int]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	out := []model.Target{}
	for _, t := range m.targetsOf(customerID) {
		if !skip[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

func (m *memStore) recordsFor(customerID int) []model.SendRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SendRecord
	for _, r := range m.records {
		if r.CustomerID == customerID {
			out = append(out, r)
		}
	}
	return out
}

// recordingSender keeps every delivery it saw and fails the target ids in failFor.
type recordingSender struct {
	mu      sync.Mutex
	seen    []delivery.Delivery
	failFor map[int]bool
}

func (s *recordingSender) Send(ctx context.Context, d delivery.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, d)
	if s.failFor[d.TargetID] {
		return fmt.Errorf("transport rejected target %d", d.TargetID)
	}
	return nil
}

type reportCollector struct {
	reports []ProgressReport
}

func (c *reportCollector) EnrollmentProcessed(ctx context.Context, r ProgressReport) {
	c.reports = append(c.reports, r)
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestScheduler(store *memStore, sender delivery.Sender, now time.Time) *Scheduler {
	s := NewScheduler(store, store, store, sender)
	s.Location = time.UTC
	s.Now = func() time.Time { return now }
	return s
}

func recordTargetIDs(records []model.SendRecord) []int {
	ids := make([]int, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.TargetID)
	}
	return ids
}
