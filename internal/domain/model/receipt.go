package model

import "time"

type ReceiptStatus string

const (
	ReceiptStatusPaid     ReceiptStatus = "PAID"
	ReceiptStatusVoid     ReceiptStatus = "VOID"
	ReceiptStatusRefunded ReceiptStatus = "REFUNDED"
)

// Placeholder card attributes for receipts of one-time (unsaved) methods.
const (
	ReceiptBrandPlaceholder = "Card"
	ReceiptLast4Placeholder = "****"
)

// Receipt is the immutable snapshot issued for exactly one completed payment.
// Card attributes are copied, not referenced, so later changes to the saved
// method do not rewrite history.
type Receipt struct {
	ID                  string
	PaymentID           string
	ReceiptNumber       string
	PriceCents          int64
	PaidAt              time.Time
	Status              ReceiptStatus
	ProcessorReceiptURL string
	CustomerEmail       string
	CompanyName         string
	PMBrand             string
	PMLast4             string
	PMExpYear           *int
	ProcessorIntentID   string
	Metadata            map[string]interface{}
	CreatedAt           time.Time
}
