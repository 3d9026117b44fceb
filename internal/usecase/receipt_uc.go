package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/logging"
)

// Compile-time check
var _ ReceiptUseCase = (*receiptUC)(nil)

// ReceiptUseCase exposes read access to issued receipts.
type ReceiptUseCase interface {
	GetByID(ctx context.Context, id string) (*model.Receipt, error)
	GetByNumber(ctx context.Context, number string) (*model.Receipt, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*model.Receipt, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*model.Receipt, error)
}

type receiptUC struct {
	receipts repository.ReceiptRepository
	log      *zerolog.Logger
}

func NewReceiptUseCase(receipts repository.ReceiptRepository, logger *zerolog.Logger) *receiptUC {
	return &receiptUC{receipts: receipts, log: logger}
}

func (u *receiptUC) GetByID(ctx context.Context, id string) (*model.Receipt, error) {
	defer logging.TraceDuration(u.log, "ReceiptUC.GetByID")()
	return u.receipts.FindByID(ctx, repository.NoTX, id)
}

func (u *receiptUC) GetByNumber(ctx context.Context, number string) (*model.Receipt, error) {
	defer logging.TraceDuration(u.log, "ReceiptUC.GetByNumber")()
	return u.receipts.FindByNumber(ctx, repository.NoTX, number)
}

func (u *receiptUC) GetByPaymentID(ctx context.Context, paymentID string) (*model.Receipt, error) {
	defer logging.TraceDuration(u.log, "ReceiptUC.GetByPaymentID")()
	return u.receipts.FindByPaymentID(ctx, repository.NoTX, paymentID)
}

func (u *receiptUC) ListByCustomer(ctx context.Context, customerID string) ([]*model.Receipt, error) {
	defer logging.TraceDuration(u.log, "ReceiptUC.ListByCustomer")()
	return u.receipts.ListByCustomer(ctx, repository.NoTX, customerID)
}
