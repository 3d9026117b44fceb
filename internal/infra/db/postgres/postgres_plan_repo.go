package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.PlanRepository = (*PostgresPlanRepo)(nil)

type PostgresPlanRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPlanRepo(pool *pgxpool.Pool) *PostgresPlanRepo {
	return &PostgresPlanRepo{pool: pool}
}

func (r *PostgresPlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	const sql = `
INSERT INTO plans (id, name, period, price_cents, currency, description, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
  SET name        = EXCLUDED.name,
      period      = EXCLUDED.period,
      price_cents = EXCLUDED.price_cents,
      currency    = EXCLUDED.currency,
      description = EXCLUDED.description,
      active      = EXCLUDED.active;
`
	_, err := execSQL(ctx, r.pool, tx, sql,
		plan.ID, plan.Name, plan.Period, plan.PriceCents, plan.Currency, plan.Description, plan.Active, plan.CreatedAt,
	)
	return writeErr(err)
}

func (r *PostgresPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	const sql = `
SELECT id, name, period, price_cents, currency, description, active, created_at
  FROM plans
 WHERE id = $1;
`
	row, err := pickRow(ctx, r.pool, tx, sql, id)
	if err != nil {
		return nil, err
	}
	p, err := scanPlan(row)
	if err != nil {
		return nil, scanErr(err)
	}
	return p, nil
}

func (r *PostgresPlanRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	const sql = `
SELECT id, name, period, price_cents, currency, description, active, created_at
  FROM plans
 WHERE active
 ORDER BY price_cents ASC;
`
	rows, err := queryRows(ctx, r.pool, tx, sql)
	if err != nil {
		return nil, queryErr(err)
	}
	defer rows.Close()
	var out []*model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanPlan(row pgx.Row) (*model.Plan, error) {
	var p model.Plan
	var period string
	if err := row.Scan(&p.ID, &p.Name, &period, &p.PriceCents, &p.Currency, &p.Description, &p.Active, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Period = model.Period(period)
	return &p, nil
}
