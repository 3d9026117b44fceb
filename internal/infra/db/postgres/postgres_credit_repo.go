package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
)

var _ repository.CreditBalanceRepository = (*creditBalanceRepo)(nil)

type creditBalanceRepo struct{ pool *pgxpool.Pool }

func NewCreditBalanceRepo(pool *pgxpool.Pool) *creditBalanceRepo {
	return &creditBalanceRepo{pool: pool}
}

func (r *creditBalanceRepo) Find(ctx context.Context, tx repository.Tx, externalCustomerID string) (*model.CreditBalance, error) {
	q := forUpdate(tx, `SELECT external_customer_id, remaining, updated_at FROM credit_balances WHERE external_customer_id=$1`) + ";"
	row, err := pickRow(ctx, r.pool, tx, q, externalCustomerID)
	if err != nil {
		return nil, err
	}
	b := &model.CreditBalance{}
	if err := row.Scan(&b.ExternalCustomerID, &b.Remaining, &b.UpdatedAt); err != nil {
		return nil, scanErr(err)
	}
	return b, nil
}

func (r *creditBalanceRepo) Upsert(ctx context.Context, tx repository.Tx, b *model.CreditBalance) error {
	const q = `
INSERT INTO credit_balances (external_customer_id, remaining, updated_at)
VALUES ($1,$2,$3)
ON CONFLICT (external_customer_id) DO UPDATE SET remaining=$2, updated_at=$3;`
	_, err := execSQL(ctx, r.pool, tx, q, b.ExternalCustomerID, b.Remaining, b.UpdatedAt)
	return writeErr(err)
}

func (r *creditBalanceRepo) Add(ctx context.Context, tx repository.Tx, externalCustomerID string, credits int64, at time.Time) (*model.CreditBalance, error) {
	const q = `
INSERT INTO credit_balances (external_customer_id, remaining, updated_at)
VALUES ($1,$2,$3)
ON CONFLICT (external_customer_id) DO UPDATE
SET remaining = credit_balances.remaining + EXCLUDED.remaining, updated_at = EXCLUDED.updated_at
RETURNING external_customer_id, remaining, updated_at;`
	row, err := pickRow(ctx, r.pool, tx, q, externalCustomerID, credits, at)
	if err != nil {
		return nil, err
	}
	b := &model.CreditBalance{}
	if err := row.Scan(&b.ExternalCustomerID, &b.Remaining, &b.UpdatedAt); err != nil {
		return nil, writeErr(err)
	}
	return b, nil
}
