package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"   // created at the gateway, not yet confirmed
	PaymentStatusCompleted PaymentStatus = "COMPLETED" // gateway confirmed the charge
	PaymentStatusFailed    PaymentStatus = "FAILED"    // gateway declined or errored
)

// Payment records a gateway-confirmed charge. It is the root of the local
// transaction: receipt, credit top-up, renewal and activity entries all hang off it.
type Payment struct {
	ID                string
	CustomerID        string
	PaymentMethodID   *string // nil for one-time gateway tokens
	SubscriptionID    *string
	ProductID         *string
	Status            PaymentStatus
	AmountCents       int64  // minor units, always > 0
	Currency          string // upper-case ISO 4217
	ProcessorIntentID string // gateway confirmation id
	CreatedAt         time.Time
}
