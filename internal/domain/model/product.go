package model

type ProductType string

const (
	ProductTypeSubscription ProductType = "SUBSCRIPTION"
	ProductTypeSMS          ProductType = "SMS"
)

// Product is a one-off purchasable item. When SMSCount is set the product
// is a prepaid credit bundle.
type Product struct {
	ID          string
	Type        ProductType
	Name        string
	PriceCents  int64
	Currency    string
	Description string
	SMSCount    *int
}

// GrantsCredits reports whether buying the product tops up the credit ledger.
func (p *Product) GrantsCredits() bool {
	return p != nil && p.SMSCount != nil && *p.SMSCount > 0
}
