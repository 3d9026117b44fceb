package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
)

var _ repository.ReceiptRepository = (*receiptRepo)(nil)

type receiptRepo struct{ pool *pgxpool.Pool }

func NewReceiptRepo(pool *pgxpool.Pool) *receiptRepo {
	return &receiptRepo{pool: pool}
}

const receiptCols = `id, payment_id, receipt_number, price_cents, paid_at, status, processor_receipt_url,
  customer_email, company_name, pm_brand, pm_last4, pm_exp_year, processor_intent_id, metadata, created_at`

// Create inserts a receipt. payment_id and receipt_number are unique, so a
// second receipt for one payment returns domain.ErrAlreadyExists.
func (r *receiptRepo) Create(ctx context.Context, tx repository.Tx, rc *model.Receipt) error {
	meta, err := json.Marshal(rc.Metadata)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO receipts (` + receiptCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15);`
	_, err = execSQL(ctx, r.pool, tx, q,
		rc.ID, rc.PaymentID, rc.ReceiptNumber, rc.PriceCents, rc.PaidAt, rc.Status, rc.ProcessorReceiptURL,
		rc.CustomerEmail, rc.CompanyName, rc.PMBrand, rc.PMLast4, rc.PMExpYear, rc.ProcessorIntentID, meta, rc.CreatedAt)
	return writeErr(err)
}

func (r *receiptRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Receipt, error) {
	return r.queryOne(ctx, tx, `SELECT `+receiptCols+` FROM receipts WHERE id=$1;`, id)
}

func (r *receiptRepo) FindByNumber(ctx context.Context, tx repository.Tx, number string) (*model.Receipt, error) {
	return r.queryOne(ctx, tx, `SELECT `+receiptCols+` FROM receipts WHERE receipt_number=$1;`, number)
}

func (r *receiptRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.Receipt, error) {
	return r.queryOne(ctx, tx, `SELECT `+receiptCols+` FROM receipts WHERE payment_id=$1;`, paymentID)
}

func (r *receiptRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string) ([]*model.Receipt, error) {
	const q = `
SELECT r.id, r.payment_id, r.receipt_number, r.price_cents, r.paid_at, r.status, r.processor_receipt_url,
       r.customer_email, r.company_name, r.pm_brand, r.pm_last4, r.pm_exp_year, r.processor_intent_id, r.metadata, r.created_at
  FROM receipts r
  JOIN payments p ON p.id = r.payment_id
 WHERE p.customer_id=$1
 ORDER BY r.paid_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, customerID)
	if err != nil {
		return nil, queryErr(err)
	}
	defer rows.Close()
	var out []*model.Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *receiptRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...interface{}) (*model.Receipt, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	rc, err := scanReceipt(row)
	if err != nil {
		return nil, scanErr(err)
	}
	return rc, nil
}

func scanReceipt(row pgx.Row) (*model.Receipt, error) {
	rc := &model.Receipt{}
	var status string
	var meta []byte
	if err := row.Scan(&rc.ID, &rc.PaymentID, &rc.ReceiptNumber, &rc.PriceCents, &rc.PaidAt, &status, &rc.ProcessorReceiptURL,
		&rc.CustomerEmail, &rc.CompanyName, &rc.PMBrand, &rc.PMLast4, &rc.PMExpYear, &rc.ProcessorIntentID, &meta, &rc.CreatedAt); err != nil {
		return nil, err
	}
	rc.Status = model.ReceiptStatus(status)
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &rc.Metadata); err != nil {
			return nil, err
		}
	}
	return rc, nil
}
