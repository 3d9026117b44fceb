package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound                 = errors.New("entity not found")
	ErrAlreadyExists            = errors.New("entity already exists")
	ErrInvalidArgument          = errors.New("invalid argument")
	ErrInsufficientCredits      = errors.New("insufficient credits")
	ErrSubscriptionNotRenewable = errors.New("subscription cannot be renewed")
	ErrLockNotAcquired          = errors.New("lock not acquired")

	// Infra-level errors surfaced by repositories
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")
)

// ErrorCategory is the stable, caller-facing classification of a failed payment.
type ErrorCategory string

const (
	CategoryInvalidArgument ErrorCategory = "invalid_argument"
	CategoryNotFound        ErrorCategory = "not_found"
	CategoryNotRenewable    ErrorCategory = "not_renewable"
	CategoryConflict        ErrorCategory = "conflict"
	CategoryGateway         ErrorCategory = "gateway"
	CategoryPersistence     ErrorCategory = "persistence"
)

// GatewayError is returned when the payment gateway declines a charge or cannot be reached.
// Message is already mapped to something a customer can read.
type GatewayError struct {
	Code    string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway: %s (%s)", e.Message, e.Code)
	}
	return "gateway: " + e.Message
}

func (e *GatewayError) Unwrap() error { return e.Err }

// PersistenceError reports a failure inside the atomic persistence phase.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persist %s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

// PaymentProcessingError is the single error type ProcessPayment hands back to callers.
type PaymentProcessingError struct {
	Category ErrorCategory
	Message  string
	Err      error
}

func (e *PaymentProcessingError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *PaymentProcessingError) Unwrap() error { return e.Err }

// CategoryOf returns the category of err, or "" when err is not a PaymentProcessingError.
func CategoryOf(err error) ErrorCategory {
	var ppe *PaymentProcessingError
	if errors.As(err, &ppe) {
		return ppe.Category
	}
	return ""
}
