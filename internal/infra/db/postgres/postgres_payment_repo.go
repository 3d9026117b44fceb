package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentCols = `id, customer_id, payment_method_id, subscription_id, product_id, status, amount_cents, currency, processor_intent_id, created_at`

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (` + paymentCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET status=$6, processor_intent_id=$9;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.CustomerID, p.PaymentMethodID, p.SubscriptionID, p.ProductID,
		p.Status, p.AmountCents, p.Currency, p.ProcessorIntentID, p.CreatedAt)
	return writeErr(err)
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	q := forUpdate(tx, `SELECT `+paymentCols+` FROM payments WHERE id=$1`) + ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	p, err := scanPayment(row)
	if err != nil {
		return nil, scanErr(err)
	}
	return p, nil
}

func (r *paymentRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string) ([]*model.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE customer_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, customerID)
	if err != nil {
		return nil, queryErr(err)
	}
	defer rows.Close()
	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
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

// SumByPeriod returns the completed revenue of the trailing week, month or year.
func (r *paymentRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	var interval string
	switch period {
	case "week":
		interval = "7 days"
	case "month":
		interval = "1 month"
	case "year":
		interval = "1 year"
	default:
		return 0, domain.ErrInvalidArgument
	}
	const q = `
SELECT COALESCE(SUM(amount_cents), 0)
  FROM payments
 WHERE status='COMPLETED' AND created_at >= NOW() - $1::interval;`
	row, err := pickRow(ctx, r.pool, tx, q, interval)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return total, nil
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	var status string
	if err := row.Scan(&p.ID, &p.CustomerID, &p.PaymentMethodID, &p.SubscriptionID, &p.ProductID,
		&status, &p.AmountCents, &p.Currency, &p.ProcessorIntentID, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Status = model.PaymentStatus(status)
	return p, nil
}
