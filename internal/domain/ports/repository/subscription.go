package repository

import (
	"context"
	"time"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
)

// SubscriptionRepository is the port for customer subscriptions.
// FindByID called with a live transaction locks the row until commit.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, sub *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	FindActiveByCustomer(ctx context.Context, tx Tx, customerID string) (*model.Subscription, error)
	ListDueForBilling(ctx context.Context, tx Tx, now time.Time) ([]*model.Subscription, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.SubscriptionStatus]int, error)
}
