package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/unclebandit/baz-scheduler/internal/errors"
	"github.com/unclebandit/baz-scheduler/internal/model"
)

type EnrollmentRepositoryInterface interface {
	// ListActive returns unfinished enrollments with customer, customer targets and campaign loaded.
	ListActive(ctx context.Context) ([]model.Enrollment, error)
	GetByID(ctx context.Context, id int) (*model.Enrollment, error)
	MarkFinished(ctx context.Context, id int) error
}

type EnrollmentRepository struct {
	DB *sqlx.DB
}

const enrollmentSelect = `
    SELECT e.id, e.customer_id, e.campaign_id, e.finished,
           c.id AS "customer.id", c.name AS "customer.name", c.interval_weeks AS "customer.interval_weeks",
           b.id AS "campaign.id", b.title AS "campaign.title", b.content AS "campaign.content"
    FROM enrollments e
    JOIN customers c ON c.id = e.customer_id
    JOIN campaigns b ON b.id = e.campaign_id
`

func (r *EnrollmentRepository) ListActive(ctx context.Context) ([]model.Enrollment, error) {
	enrollments := []model.Enrollment{}
	query := r.DB.Rebind(enrollmentSelect + ` WHERE e.finished = ? ORDER BY e.id`)
	if err := r.DB.SelectContext(ctx, &enrollments, query, false); err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return enrollments, nil
	}

	customerIDs := make([]int, 0, len(enrollments))
	seen := map[int]bool{}
	for _, e := range enrollments {
		if !seen[e.CustomerID] {
			seen[e.CustomerID] = true
			customerIDs = append(customerIDs, e.CustomerID)
		}
	}

	query, args, err := sqlx.In(`SELECT id, customer_id, email FROM targets WHERE customer_id IN (?) ORDER BY id`, customerIDs)
	if err != nil {
		return nil, err
	}
	var targets []model.Target
	if err := r.DB.SelectContext(ctx, &targets, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}

	byCustomer := map[int][]model.Target{}
	for _, t := range targets {
		byCustomer[t.CustomerID] = append(byCustomer[t.CustomerID], t)
	}
	for i := range enrollments {
		enrollments[i].Customer.Targets = byCustomer[enrollments[i].CustomerID]
	}
	return enrollments, nil
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, id int) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.GetContext(ctx, &e, r.DB.Rebind(enrollmentSelect+` WHERE e.id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewEnrollmentNotFound(id)
		}
		return nil, err
	}
	return &e, nil
}

// MarkFinished is the operator-side completion; the scheduler never calls it.
func (r *EnrollmentRepository) MarkFinished(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`UPDATE enrollments SET finished = ? WHERE id = ?`), true, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewEnrollmentNotFound(id)
	}
	return nil
}

var _ EnrollmentRepositoryInterface = (*EnrollmentRepository)(nil)
