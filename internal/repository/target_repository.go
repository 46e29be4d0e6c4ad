package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/unclebandit/baz-scheduler/internal/model"
)

// TargetRepositoryInterface counts are plain queries: nothing is cached between calls.
type TargetRepositoryInterface interface {
	CountByCustomer(ctx context.Context, customerID int) (int, error)
	CountPending(ctx context.Context, customerID int, exclude []int) (int, error)
	// ListPending returns targets not in exclude ordered by id; limit <= 0 means no limit.
	ListPending(ctx context.Context, customerID int, exclude []int, limit int) ([]model.Target, error)
}

type TargetRepository struct {
	DB *sqlx.DB
}

func (r *TargetRepository) CountByCustomer(ctx context.Context, customerID int) (int, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, r.DB.Rebind(`SELECT COUNT(*) FROM targets WHERE customer_id = ?`), customerID)
	return count, err
}

func (r *TargetRepository) CountPending(ctx context.Context, customerID int, exclude []int) (int, error) {
	query, args, err := pendingQuery(`SELECT COUNT(*)`, customerID, exclude)
	if err != nil {
		return 0, err
	}
	var count int
	err = r.DB.GetContext(ctx, &count, r.DB.Rebind(query), args...)
	return count, err
}

func (r *TargetRepository) ListPending(ctx context.Context, customerID int, exclude []int, limit int) ([]model.Target, error) {
	query, args, err := pendingQuery(`SELECT id, customer_id, email`, customerID, exclude)
	if err != nil {
		return nil, err
	}
	query += ` ORDER BY id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	targets := []model.Target{}
	if err := r.DB.SelectContext(ctx, &targets, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	return targets, nil
}

func pendingQuery(selectClause string, customerID int, exclude []int) (string, []interface{}, error) {
	query := selectClause + ` FROM targets WHERE customer_id = ?`
	args := []interface{}{customerID}
	if len(exclude) == 0 {
		return query, args, nil
	}
	query += ` AND id NOT IN (?)`
	args = append(args, exclude)
	return sqlx.In(query, args...)
}

var _ TargetRepositoryInterface = (*TargetRepository)(nil)
