package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/baz-scheduler/internal/db"
	appErrors "github.com/unclebandit/baz-scheduler/internal/errors"
	"github.com/unclebandit/baz-scheduler/internal/model"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(ctx, conn))

	conn.MustExecContext(ctx, `INSERT INTO customers (id, name, interval_weeks) VALUES (1, 'Acme', 2), (2, 'Globex', 3)`)
	conn.MustExecContext(ctx, `INSERT INTO campaigns (id, title, content) VALUES (1, 'Launch', 'hello'), (2, 'Follow-up', 'again')`)
	conn.MustExecContext(ctx, `INSERT INTO targets (id, customer_id, email) VALUES
        (1, 1, 'a@example.com'), (2, 1, 'b@example.com'), (3, 1, 'c@example.com'),
        (4, 1, 'd@example.com'), (5, 2, 'e@example.com')`)
	conn.MustExecContext(ctx, `INSERT INTO enrollments (id, customer_id, campaign_id, finished) VALUES
        (1, 1, 1, FALSE), (2, 2, 1, TRUE), (3, 2, 2, FALSE)`)
	return conn
}

func TestEnrollmentRepositoryListActive(t *testing.T) {
	conn := setupDB(t)
	repo := &EnrollmentRepository{DB: conn}

	active, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 2)

	first := active[0]
	assert.Equal(t, 1, first.ID)
	assert.False(t, first.Finished)
	assert.Equal(t, "Acme", first.Customer.Name)
	assert.Equal(t, 2, first.Customer.IntervalWeeks)
	assert.Equal(t, "hello", first.Campaign.Content)
	require.Len(t, first.Customer.Targets, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, targetIDs(first.Customer.Targets))

	second := active[1]
	assert.Equal(t, 3, second.ID)
	assert.Equal(t, "again", second.Campaign.Content)
	assert.Equal(t, []int{5}, targetIDs(second.Customer.Targets))
}

func TestEnrollmentRepositoryGetAndFinish(t *testing.T) {
	conn := setupDB(t)
	repo := &EnrollmentRepository{DB: conn}
	ctx := context.Background()

	e, err := repo.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, e.CustomerID)
	assert.Equal(t, 3, e.Customer.IntervalWeeks)

	require.NoError(t, repo.MarkFinished(ctx, 3))
	e, err = repo.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.True(t, e.Finished)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 1, active[0].ID)
}

func TestEnrollmentRepositoryNotFound(t *testing.T) {
	conn := setupDB(t)
	repo := &EnrollmentRepository{DB: conn}
	ctx := context.Background()

	var nf *appErrors.ErrEnrollmentNotFound

	_, err := repo.GetByID(ctx, 99)
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, 99, nf.EnrollmentID)

	err = repo.MarkFinished(ctx, 99)
	assert.True(t, errors.As(err, &nf))
}

func TestEnrollmentRepositoryListActiveEmpty(t *testing.T) {
	conn := setupDB(t)
	conn.MustExec(`UPDATE enrollments SET finished = TRUE`)
	repo := &EnrollmentRepository{DB: conn}

	active, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestTargetRepositoryPending(t *testing.T) {
	conn := setupDB(t)
	repo := &TargetRepository{DB: conn}
	ctx := context.Background()

	total, err := repo.CountByCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	tests := []struct {
		name      string
		exclude   []int
		limit     int
		wantCount int
		wantIDs   []int
	}{
		{name: "nothing excluded", exclude: nil, limit: 0, wantCount: 4, wantIDs: []int{1, 2, 3, 4}},
		{name: "excluded ids skipped", exclude: []int{1, 3}, limit: 0, wantCount: 2, wantIDs: []int{2, 4}},
		{name: "bounded prefix", exclude: []int{2}, limit: 2, wantCount: 3, wantIDs: []int{1, 3}},
		{name: "other customer's ids ignored", exclude: []int{5}, limit: 1, wantCount: 4, wantIDs: []int{1}},
		{name: "everything sent", exclude: []int{1, 2, 3, 4}, limit: 10, wantCount: 0, wantIDs: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := repo.CountPending(ctx, 1, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)

			targets, err := repo.ListPending(ctx, 1, tt.exclude, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, targetIDs(targets))
		})
	}
}

func TestSendRecordRepositoryAppendAndQuery(t *testing.T) {
	conn := setupDB(t)
	repo := &SendRecordRepository{DB: conn}
	ctx := context.Background()

	day := time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)
	records := []model.SendRecord{
		{TargetID: 2, CustomerID: 1, CampaignID: 1, Timestamp: day.Add(9 * time.Hour), Interval: 1, Success: true},
		{TargetID: 1, CustomerID: 1, CampaignID: 1, Timestamp: day.Add(8 * time.Hour), Interval: 1, Success: true},
		{TargetID: 3, CustomerID: 1, CampaignID: 1, Timestamp: day.Add(10 * time.Hour), Interval: 1, Success: false},
		{TargetID: 5, CustomerID: 2, CampaignID: 2, Timestamp: day.Add(8 * time.Hour), Interval: 1, Success: true},
	}
	require.NoError(t, repo.BulkAppend(ctx, records))
	require.NoError(t, repo.BulkAppend(ctx, nil))

	sent, err := repo.ListSuccessful(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, sent, 2)
	assert.Equal(t, 1, sent[0].TargetID)
	assert.True(t, sent[0].Timestamp.Equal(day.Add(8*time.Hour)), "got %s", sent[0].Timestamp)
	assert.Equal(t, 2, sent[1].TargetID)

	failed, err := repo.CountFailed(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	none, err := repo.ListSuccessful(ctx, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSendRecordRepositoryBulkAppendIsAtomic(t *testing.T) {
	conn := setupDB(t)
	repo := &SendRecordRepository{DB: conn}
	ctx := context.Background()

	ts := time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC)
	records := make([]model.SendRecord, insertChunk+1)
	for i := range records {
		records[i] = model.SendRecord{TargetID: 1, CustomerID: 1, CampaignID: 1, Timestamp: ts, Interval: 1, Success: true}
	}
	// lands in the second chunk and violates the targets foreign key
	records[insertChunk].TargetID = 404

	require.Error(t, repo.BulkAppend(ctx, records))

	var count int
	require.NoError(t, conn.Get(&count, `SELECT COUNT(*) FROM send_records`))
	assert.Equal(t, 0, count)
}

func targetIDs(targets []model.Target) []int {
	ids := make([]int, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.ID)
	}
	return ids
}
