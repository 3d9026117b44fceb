package repository

import (
	"context"
	"time"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
)

// CreditBalanceRepository persists prepaid balances keyed by external customer id.
type CreditBalanceRepository interface {
	// Find returns the balance, locking it when tx is a live transaction.
	Find(ctx context.Context, tx Tx, externalCustomerID string) (*model.CreditBalance, error)
	// Upsert creates or overwrites the balance row.
	Upsert(ctx context.Context, tx Tx, b *model.CreditBalance) error
	// Add increments the balance in one statement, creating the row if needed,
	// and returns the new balance. Concurrent first purchases both count.
	Add(ctx context.Context, tx Tx, externalCustomerID string, credits int64, at time.Time) (*model.CreditBalance, error)
}

// ActivityLogRepository is append-only: there is no update or delete.
type ActivityLogRepository interface {
	Append(ctx context.Context, tx Tx, entry *model.ActivityLog) error
	ListByCustomer(ctx context.Context, tx Tx, customerID string, limit int) ([]*model.ActivityLog, error)
}
