package model

import (
	"time"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"

	"github.com/google/uuid"
)

// Customer is a verified account that can pay for plans and credit bundles.
// ExternalCustomerID mirrors the id used by the external provisioning system
// and keys the credit ledger.
type Customer struct {
	ID                 string
	Email              string
	CompanyName        string
	SerialNumber       int
	ExternalCustomerID string
	CreatedAt          time.Time
}

func NewCustomer(id, email, companyName, externalID string) (*Customer, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if email == "" || externalID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Customer{
		ID:                 id,
		Email:              email,
		CompanyName:        companyName,
		ExternalCustomerID: externalID,
		CreatedAt:          time.Now(),
	}, nil
}

func (c *Customer) IsZero() bool { return c == nil || c.ID == "" }
