package adapter

import (
	"context"
	"time"
)

// ChargeStatus is the gateway-reported state of a charge.
type ChargeStatus string

const (
	ChargeStatusSucceeded      ChargeStatus = "succeeded"
	ChargeStatusProcessing     ChargeStatus = "processing"
	ChargeStatusRequiresAction ChargeStatus = "requires_action"
	ChargeStatusFailed         ChargeStatus = "failed"
	ChargeStatusCanceled       ChargeStatus = "canceled"
)

// ChargeRequest asks the gateway to create and immediately confirm a charge.
type ChargeRequest struct {
	AmountCents      int64  // minor units, > 0
	Currency         string // 3-letter code
	PaymentMethodRef string // gateway-side method id or one-time token
	Description      string
	Metadata         map[string]string
}

// ChargeConfirmation is what the gateway returns for a created charge.
type ChargeConfirmation struct {
	ID             string
	Status         ChargeStatus
	ReceiptURL     string // optional, may be filled lazily via ReceiptURL
	LatestChargeID string
}

// PaymentGateway is the hex port for the remote card processor. Calls are not
// transactional, not retried and not assumed idempotent.
type PaymentGateway interface {
	Name() string

	// CreateCharge creates and confirms a charge. Declines and transport failures
	// come back as *domain.GatewayError.
	CreateCharge(ctx context.Context, req ChargeRequest) (ChargeConfirmation, error)
	// IsSuccessful reports whether the confirmation is a settled success.
	IsSuccessful(c ChargeConfirmation) bool
	// ReceiptURL fetches the gateway-hosted receipt page for a confirmed charge.
	ReceiptURL(ctx context.Context, c ChargeConfirmation) (string, error)
}

// Locker provides mutual exclusion keyed by an arbitrary string.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
