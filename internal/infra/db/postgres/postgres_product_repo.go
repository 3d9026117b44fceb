package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
)

var _ repository.ProductRepository = (*PostgresProductRepo)(nil)

type PostgresProductRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresProductRepo(pool *pgxpool.Pool) *PostgresProductRepo {
	return &PostgresProductRepo{pool: pool}
}

func (r *PostgresProductRepo) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	const sql = `
INSERT INTO products (id, type, name, price_cents, currency, description, sms_count)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
  SET type        = EXCLUDED.type,
      name        = EXCLUDED.name,
      price_cents = EXCLUDED.price_cents,
      currency    = EXCLUDED.currency,
      description = EXCLUDED.description,
      sms_count   = EXCLUDED.sms_count;
`
	_, err := execSQL(ctx, r.pool, tx, sql, p.ID, p.Type, p.Name, p.PriceCents, p.Currency, p.Description, p.SMSCount)
	return writeErr(err)
}

func (r *PostgresProductRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	const sql = `SELECT id, type, name, price_cents, currency, description, sms_count FROM products WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, sql, id)
	if err != nil {
		return nil, err
	}
	p, err := scanProduct(row)
	if err != nil {
		return nil, scanErr(err)
	}
	return p, nil
}

func (r *PostgresProductRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Product, error) {
	const sql = `SELECT id, type, name, price_cents, currency, description, sms_count FROM products ORDER BY type, price_cents;`
	rows, err := queryRows(ctx, r.pool, tx, sql)
	if err != nil {
		return nil, queryErr(err)
	}
	defer rows.Close()
	var out []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
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

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	var typ string
	if err := row.Scan(&p.ID, &typ, &p.Name, &p.PriceCents, &p.Currency, &p.Description, &p.SMSCount); err != nil {
		return nil, err
	}
	p.Type = model.ProductType(typ)
	return &p, nil
}
