// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/logging"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type SubscriptionUseCase interface {
	Get(ctx context.Context, id string) (*model.Subscription, error)
	ActiveForCustomer(ctx context.Context, customerID string) (*model.Subscription, error)
	// Cancel ends the subscription now and records SUBSCRIPTION_CANCELLED.
	Cancel(ctx context.Context, customerID, subscriptionID string, sessionID *string) (*model.Subscription, error)
	DueForBilling(ctx context.Context, now time.Time) ([]*model.Subscription, error)
	CountByStatus(ctx context.Context) (map[model.SubscriptionStatus]int, error)
}

type subscriptionUC struct {
	subs     repository.SubscriptionRepository
	activity *ActivityRecorder
	tm       repository.TransactionManager
	log      *zerolog.Logger
	now      func() time.Time
}

func NewSubscriptionUseCase(subs repository.SubscriptionRepository, activity *ActivityRecorder, tm repository.TransactionManager, logger *zerolog.Logger) *subscriptionUC {
	return &subscriptionUC{subs: subs, activity: activity, tm: tm, log: logger, now: time.Now}
}

func (u *subscriptionUC) Get(ctx context.Context, id string) (*model.Subscription, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.Get")()
	return u.subs.FindByID(ctx, repository.NoTX, id)
}

func (u *subscriptionUC) ActiveForCustomer(ctx context.Context, customerID string) (*model.Subscription, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.ActiveForCustomer")()
	return u.subs.FindActiveByCustomer(ctx, repository.NoTX, customerID)
}

func (u *subscriptionUC) Cancel(ctx context.Context, customerID, subscriptionID string, sessionID *string) (*model.Subscription, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.Cancel")()

	var out *model.Subscription
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		sub, err := u.subs.FindByID(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		if sub.CustomerID != customerID {
			return domain.ErrNotFound
		}
		now := u.now()
		if err := sub.Cancel(now); err != nil {
			return err
		}
		if err := u.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		if _, err := u.activity.Record(ctx, tx, Activity{
			CustomerID: customerID,
			SessionID:  sessionID,
			Type:       model.ActivitySubscriptionCancelled,
			Metadata: map[string]interface{}{
				"subscriptionId": sub.ID,
				"planId":         sub.PlanID,
				"endDate":        now.Format(time.RFC3339),
			},
		}); err != nil {
			return err
		}
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("subscription_id", subscriptionID).Str("customer_id", customerID).Msg("subscription canceled")
	return out, nil
}

func (u *subscriptionUC) DueForBilling(ctx context.Context, now time.Time) ([]*model.Subscription, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.DueForBilling")()
	return u.subs.ListDueForBilling(ctx, repository.NoTX, now)
}

func (u *subscriptionUC) CountByStatus(ctx context.Context) (map[model.SubscriptionStatus]int, error) {
	return u.subs.CountByStatus(ctx, repository.NoTX)
}
