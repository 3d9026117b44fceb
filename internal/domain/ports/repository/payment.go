package repository

import (
	"context"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
)

// -----------------------------
// Payments
// -----------------------------

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	ListByCustomer(ctx context.Context, tx Tx, customerID string) ([]*model.Payment, error)
	SumByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}

// -----------------------------
// Receipts
// -----------------------------

// ReceiptRepository stores receipts. Receipts are insert-only; a second receipt
// for the same payment fails with domain.ErrAlreadyExists.
type ReceiptRepository interface {
	Create(ctx context.Context, tx Tx, r *model.Receipt) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Receipt, error)
	FindByNumber(ctx context.Context, tx Tx, number string) (*model.Receipt, error)
	FindByPaymentID(ctx context.Context, tx Tx, paymentID string) (*model.Receipt, error)
	ListByCustomer(ctx context.Context, tx Tx, customerID string) ([]*model.Receipt, error)
}
