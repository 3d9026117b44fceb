package model

import (
	"time"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
)

// CreditBalance is a customer's prepaid unit (SMS) balance, keyed by the
// external customer id rather than the internal one.
type CreditBalance struct {
	ExternalCustomerID string
	Remaining          int64
	UpdatedAt          time.Time
}

// Recharge adds n credits.
func (b *CreditBalance) Recharge(n int64) error {
	if n <= 0 {
		return domain.ErrInvalidArgument
	}
	b.Remaining += n
	b.UpdatedAt = time.Now()
	return nil
}

// Consume removes n credits; the balance never goes negative.
func (b *CreditBalance) Consume(n int64) error {
	if n <= 0 {
		return domain.ErrInvalidArgument
	}
	if b.Remaining < n {
		return domain.ErrInsufficientCredits
	}
	b.Remaining -= n
	b.UpdatedAt = time.Now()
	return nil
}
