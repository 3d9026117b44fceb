package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
)

var _ repository.PaymentMethodRepository = (*paymentMethodRepo)(nil)

type paymentMethodRepo struct{ pool *pgxpool.Pool }

func NewPaymentMethodRepo(pool *pgxpool.Pool) *paymentMethodRepo {
	return &paymentMethodRepo{pool: pool}
}

const paymentMethodCols = `id, customer_id, type, brand, last4, exp_month, exp_year, processor_method_id, is_default, status, fingerprint, created_at, updated_at`

func (r *paymentMethodRepo) Save(ctx context.Context, tx repository.Tx, pm *model.PaymentMethod) error {
	const q = `
INSERT INTO payment_methods (` + paymentMethodCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
  type=$3, brand=$4, last4=$5, exp_month=$6, exp_year=$7, processor_method_id=$8,
  is_default=$9, status=$10, fingerprint=$11, updated_at=$13;`
	_, err := execSQL(ctx, r.pool, tx, q,
		pm.ID, pm.CustomerID, pm.Type, pm.Brand, pm.Last4, pm.ExpMonth, pm.ExpYear,
		pm.ProcessorMethodID, pm.IsDefault, pm.Status, pm.Fingerprint, pm.CreatedAt, pm.UpdatedAt)
	return writeErr(err)
}

func (r *paymentMethodRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentMethod, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+paymentMethodCols+` FROM payment_methods WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	pm, err := scanPaymentMethod(row)
	if err != nil {
		return nil, scanErr(err)
	}
	return pm, nil
}

func (r *paymentMethodRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string) ([]*model.PaymentMethod, error) {
	const q = `SELECT ` + paymentMethodCols + ` FROM payment_methods WHERE customer_id=$1 ORDER BY is_default DESC, created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, customerID)
	if err != nil {
		return nil, queryErr(err)
	}
	defer rows.Close()
	var out []*model.PaymentMethod
	for rows.Next() {
		pm, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, pm)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanPaymentMethod(row pgx.Row) (*model.PaymentMethod, error) {
	pm := &model.PaymentMethod{}
	var status string
	if err := row.Scan(&pm.ID, &pm.CustomerID, &pm.Type, &pm.Brand, &pm.Last4, &pm.ExpMonth, &pm.ExpYear,
		&pm.ProcessorMethodID, &pm.IsDefault, &status, &pm.Fingerprint, &pm.CreatedAt, &pm.UpdatedAt); err != nil {
		return nil, err
	}
	pm.Status = model.PaymentMethodStatus(status)
	return pm, nil
}
