package model

import "time"

type PaymentMethodStatus string

const (
	PaymentMethodStatusActive   PaymentMethodStatus = "ACTIVE"
	PaymentMethodStatusInactive PaymentMethodStatus = "INACTIVE"
	PaymentMethodStatusExpired  PaymentMethodStatus = "EXPIRED"
)

// OneTimeMethodPrefix marks a payment-method reference that is a raw gateway token
// rather than the id of a saved method.
const OneTimeMethodPrefix = "pm_"

// PaymentMethod is a card saved at the gateway on behalf of a customer.
type PaymentMethod struct {
	ID                string
	CustomerID        string
	Type              string // e.g. "card"
	Brand             string
	Last4             string
	ExpMonth          int
	ExpYear           int
	ProcessorMethodID string // gateway-side id used when charging
	IsDefault         bool
	Status            PaymentMethodStatus
	Fingerprint       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsOneTimeRef reports whether ref is a one-time gateway token.
func IsOneTimeRef(ref string) bool {
	return len(ref) > len(OneTimeMethodPrefix) && ref[:len(OneTimeMethodPrefix)] == OneTimeMethodPrefix
}
