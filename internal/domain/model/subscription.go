package model

import (
	"time"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusTrialing SubscriptionStatus = "TRIALING"
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCanceled SubscriptionStatus = "CANCELED"
)

type AnchorPolicy string

const (
	AnchorAnniversary AnchorPolicy = "ANNIVERSARY" // pinned to the start date
	AnchorCalendar    AnchorPolicy = "CALENDAR"    // pinned to the first of the month
)

// Subscription binds a customer to a plan. NextBillingDate never moves backwards.
type Subscription struct {
	ID              string
	CustomerID      string
	PlanID          string
	Status          SubscriptionStatus
	StartDate       time.Time
	EndDate         *time.Time
	NextBillingDate *time.Time
	AnchorPolicy    AnchorPolicy
}

// Renewal describes how a renewal moved the billing date.
type Renewal struct {
	Previous time.Time
	Next     time.Time
}

// CanRenew reports whether a successful charge may advance this subscription.
func (s *Subscription) CanRenew() bool {
	return s != nil && (s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrialing)
}

// Renew advances NextBillingDate by one period and forces the subscription ACTIVE,
// which also covers trial-to-paid. When no billing date is set yet the cycle is
// anchored on the start date. CALENDAR subscriptions land on the first of the month.
func (s *Subscription) Renew(period Period) (Renewal, error) {
	if !period.Valid() {
		return Renewal{}, domain.ErrInvalidArgument
	}
	if !s.CanRenew() {
		return Renewal{}, domain.ErrSubscriptionNotRenewable
	}
	prev := s.StartDate
	if s.NextBillingDate != nil {
		prev = *s.NextBillingDate
	}
	base := prev
	if s.AnchorPolicy == AnchorCalendar {
		base = firstOfMonth(prev)
	}
	next := NextBillingDate(base, period)
	if next.Before(prev) {
		next = prev
	}
	s.NextBillingDate = &next
	s.Status = SubscriptionStatusActive
	return Renewal{Previous: prev, Next: next}, nil
}

// Cancel ends the subscription at the given instant.
func (s *Subscription) Cancel(at time.Time) error {
	if s.Status == SubscriptionStatusCanceled {
		return domain.ErrSubscriptionNotRenewable
	}
	s.Status = SubscriptionStatusCanceled
	s.EndDate = &at
	return nil
}

// DueForBilling reports whether an active subscription has reached its billing date.
func (s *Subscription) DueForBilling(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && s.NextBillingDate != nil && !s.NextBillingDate.After(now)
}

func firstOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, 1, hh, mm, ss, t.Nanosecond(), t.Location())
}
