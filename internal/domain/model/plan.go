package model

import (
	"time"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
)

type Period string

const (
	PeriodMonthly Period = "MONTHLY"
	PeriodYearly  Period = "YEARLY"
)

func (p Period) Valid() bool { return p == PeriodMonthly || p == PeriodYearly }

// Plan is a recurring offer a subscription is bound to.
type Plan struct {
	ID          string
	Name        string
	Period      Period
	PriceCents  int64
	Currency    string
	Description string
	Active      bool
	CreatedAt   time.Time
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// NewPlan validates and constructs a plan.
func NewPlan(id, name string, period Period, priceCents int64, currency string) (*Plan, error) {
	if id == "" || name == "" || !period.Valid() || priceCents <= 0 || len(currency) != 3 {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:         id,
		Name:       name,
		Period:     period,
		PriceCents: priceCents,
		Currency:   currency,
		Active:     true,
		CreatedAt:  time.Now(),
	}, nil
}
