package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionCols = `id, customer_id, plan_id, status, start_date, end_date, next_billing_date, anchor_policy`

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (` + subscriptionCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  plan_id=$3, status=$4, start_date=$5, end_date=$6, next_billing_date=$7, anchor_policy=$8;`

	anchor := s.AnchorPolicy
	if anchor == "" {
		anchor = model.AnchorAnniversary
	}
	_, err := execSQL(ctx, r.pool, tx, q, s.ID, s.CustomerID, s.PlanID, s.Status, s.StartDate, s.EndDate, s.NextBillingDate, anchor)
	return writeErr(err)
}

// FindByID locks the row with FOR UPDATE when tx is a live transaction.
func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	q := forUpdate(tx, `SELECT `+subscriptionCols+` FROM subscriptions WHERE id=$1`) + ";"
	return r.queryOne(ctx, tx, q, id)
}

func (r *subscriptionRepo) FindActiveByCustomer(ctx context.Context, tx repository.Tx, customerID string) (*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionCols + `
  FROM subscriptions
 WHERE customer_id=$1 AND status IN ('ACTIVE','TRIALING')
 ORDER BY start_date DESC
 LIMIT 1;`
	return r.queryOne(ctx, tx, q, customerID)
}

func (r *subscriptionRepo) ListDueForBilling(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionCols + `
  FROM subscriptions
 WHERE status='ACTIVE'
   AND next_billing_date IS NOT NULL
   AND next_billing_date <= $1
 ORDER BY next_billing_date ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, now)
	if err != nil {
		return nil, queryErr(err)
	}
	defer rows.Close()
	var out []*model.Subscription
	for rows.Next() {
		s, err := scanSub(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *subscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM subscriptions GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, queryErr(err)
	}
	defer rows.Close()

	counts := make(map[model.SubscriptionStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		counts[model.SubscriptionStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return counts, nil
}

func (r *subscriptionRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...interface{}) (*model.Subscription, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	s, err := scanSub(row)
	if err != nil {
		return nil, scanErr(err)
	}
	return s, nil
}

func scanSub(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	var status, anchor string
	if err := row.Scan(&s.ID, &s.CustomerID, &s.PlanID, &status, &s.StartDate, &s.EndDate, &s.NextBillingDate, &anchor); err != nil {
		return nil, err
	}
	s.Status = model.SubscriptionStatus(status)
	s.AnchorPolicy = model.AnchorPolicy(anchor)
	return s, nil
}
