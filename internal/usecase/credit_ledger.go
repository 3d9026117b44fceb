package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/logging"
)

// CreditLedger keeps the prepaid SMS balance per external customer id.
// Mutations run in the caller's transaction. TopUp is one atomic upsert; Consume
// locks the existing row with Find before writing it back.
type CreditLedger struct {
	balances repository.CreditBalanceRepository
	log      *zerolog.Logger
	now      func() time.Time
}

func NewCreditLedger(balances repository.CreditBalanceRepository, logger *zerolog.Logger) *CreditLedger {
	l := logger.With().Str("component", "CreditLedger").Logger()
	return &CreditLedger{balances: balances, log: &l, now: time.Now}
}

// TopUp adds credits, creating the balance row on first purchase.
// The increment is a single upsert, so concurrent first top-ups add up.
func (c *CreditLedger) TopUp(ctx context.Context, tx repository.Tx, externalCustomerID string, credits int64) (*model.CreditBalance, error) {
	defer logging.TraceDuration(c.log, "CreditLedger.TopUp")()
	if externalCustomerID == "" {
		return nil, fmt.Errorf("%w: external customer id is required", domain.ErrInvalidArgument)
	}
	if credits <= 0 {
		return nil, fmt.Errorf("%w: credits must be positive", domain.ErrInvalidArgument)
	}

	bal, err := c.balances.Add(ctx, tx, externalCustomerID, credits, c.now())
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("external_customer_id", externalCustomerID).Int64("added", credits).Int64("remaining", bal.Remaining).Msg("credits topped up")
	return bal, nil
}

// Consume removes credits. A missing balance is treated as zero.
func (c *CreditLedger) Consume(ctx context.Context, tx repository.Tx, externalCustomerID string, credits int64) (*model.CreditBalance, error) {
	defer logging.TraceDuration(c.log, "CreditLedger.Consume")()
	bal, err := c.find(ctx, tx, externalCustomerID)
	if err != nil {
		return nil, err
	}
	if err := bal.Consume(credits); err != nil {
		return nil, err
	}
	bal.UpdatedAt = c.now()
	if err := c.balances.Upsert(ctx, tx, bal); err != nil {
		return nil, err
	}
	return bal, nil
}

// Balance returns the remaining credits; customers that never bought any have zero.
func (c *CreditLedger) Balance(ctx context.Context, externalCustomerID string) (int64, error) {
	bal, err := c.balances.Find(ctx, repository.NoTX, externalCustomerID)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return bal.Remaining, nil
}

func (c *CreditLedger) find(ctx context.Context, tx repository.Tx, externalCustomerID string) (*model.CreditBalance, error) {
	bal, err := c.balances.Find(ctx, tx, externalCustomerID)
	if errors.Is(err, domain.ErrNotFound) {
		return &model.CreditBalance{ExternalCustomerID: externalCustomerID}, nil
	}
	if err != nil {
		return nil, err
	}
	return bal, nil
}
