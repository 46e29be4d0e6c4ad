package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/unclebandit/baz-scheduler/internal/model"
)

// insertChunk keeps one INSERT under the postgres bind parameter limit.
const insertChunk = 1000

type SendRecordRepositoryInterface interface {
	// ListSuccessful returns successful sends of a customer/campaign pair, oldest first.
	ListSuccessful(ctx context.Context, customerID, campaignID int) ([]model.SentTarget, error)
	CountFailed(ctx context.Context, customerID, campaignID int) (int, error)
	// BulkAppend writes all records in one transaction.
	BulkAppend(ctx context.Context, records []model.SendRecord) error
}

type SendRecordRepository struct {
	DB *sqlx.DB
}

func (r *SendRecordRepository) ListSuccessful(ctx context.Context, customerID, campaignID int) ([]model.SentTarget, error) {
	sent := []model.SentTarget{}
	query := r.DB.Rebind(`
        SELECT target_id, scheduled_at
        FROM send_records
        WHERE customer_id = ? AND campaign_id = ? AND success = ?
        ORDER BY scheduled_at, id
    `)
	if err := r.DB.SelectContext(ctx, &sent, query, customerID, campaignID, true); err != nil {
		return nil, err
	}
	return sent, nil
}

func (r *SendRecordRepository) CountFailed(ctx context.Context, customerID, campaignID int) (int, error) {
	var count int
	query := r.DB.Rebind(`SELECT COUNT(*) FROM send_records WHERE customer_id = ? AND campaign_id = ? AND success = ?`)
	err := r.DB.GetContext(ctx, &count, query, customerID, campaignID, false)
	return count, err
}

func (r *SendRecordRepository) BulkAppend(ctx context.Context, records []model.SendRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `
        INSERT INTO send_records (target_id, customer_id, campaign_id, scheduled_at, interval_number, success)
        VALUES (:target_id, :customer_id, :campaign_id, :scheduled_at, :interval_number, :success)
    `
	for start := 0; start < len(records); start += insertChunk {
		end := min(start+insertChunk, len(records))
		if _, err = tx.NamedExecContext(ctx, insert, records[start:end]); err != nil {
			return fmt.Errorf("insert send records %d-%d: %w", start, end, err)
		}
	}
	return tx.Commit()
}

var _ SendRecordRepositoryInterface = (*SendRecordRepository)(nil)
