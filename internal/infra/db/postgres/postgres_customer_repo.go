package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
)

var _ repository.CustomerRepository = (*customerRepo)(nil)

type customerRepo struct{ pool *pgxpool.Pool }

func NewCustomerRepo(pool *pgxpool.Pool) *customerRepo {
	return &customerRepo{pool: pool}
}

const customerCols = `id, email, company_name, serial_number, external_customer_id, created_at`

// Save upserts the customer and reads back the generated serial number.
func (r *customerRepo) Save(ctx context.Context, tx repository.Tx, c *model.Customer) error {
	const q = `
INSERT INTO customers (id, email, company_name, external_customer_id, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
  email=$2, company_name=$3, external_customer_id=$4
RETURNING serial_number;`
	row, err := pickRow(ctx, r.pool, tx, q, c.ID, c.Email, c.CompanyName, c.ExternalCustomerID, c.CreatedAt)
	if err != nil {
		return err
	}
	if err := row.Scan(&c.SerialNumber); err != nil {
		return writeErr(err)
	}
	return nil
}

func (r *customerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Customer, error) {
	return r.queryOne(ctx, tx, `SELECT `+customerCols+` FROM customers WHERE id=$1;`, id)
}

func (r *customerRepo) FindByExternalID(ctx context.Context, tx repository.Tx, externalID string) (*model.Customer, error) {
	return r.queryOne(ctx, tx, `SELECT `+customerCols+` FROM customers WHERE external_customer_id=$1;`, externalID)
}

func (r *customerRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...interface{}) (*model.Customer, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	c := &model.Customer{}
	if err := row.Scan(&c.ID, &c.Email, &c.CompanyName, &c.SerialNumber, &c.ExternalCustomerID, &c.CreatedAt); err != nil {
		return nil, scanErr(err)
	}
	return c, nil
}
