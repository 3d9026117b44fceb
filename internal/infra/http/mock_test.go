//go:build !integration

package http

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type mockPaymentUC struct {
	ProcessPaymentFunc func(ctx context.Context, req usecase.PaymentRequest) (*usecase.PaymentResult, error)
	payments           map[string]*model.Payment
}

func (m *mockPaymentUC) ProcessPayment(ctx context.Context, req usecase.PaymentRequest) (*usecase.PaymentResult, error) {
	return m.ProcessPaymentFunc(ctx, req)
}
func (m *mockPaymentUC) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	if p, ok := m.payments[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}
func (m *mockPaymentUC) ListPaymentsByCustomer(ctx context.Context, customerID string) ([]*model.Payment, error) {
	var out []*model.Payment
	for _, p := range m.payments {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}
func (m *mockPaymentUC) SumByPeriod(ctx context.Context, period string) (int64, error) { return 0, nil }

type mockReceiptUC struct {
	byPayment map[string]*model.Receipt
}

func (m *mockReceiptUC) GetByID(ctx context.Context, id string) (*model.Receipt, error) {
	return nil, domain.ErrNotFound
}
func (m *mockReceiptUC) GetByNumber(ctx context.Context, number string) (*model.Receipt, error) {
	for _, r := range m.byPayment {
		if r.ReceiptNumber == number {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (m *mockReceiptUC) GetByPaymentID(ctx context.Context, paymentID string) (*model.Receipt, error) {
	if r, ok := m.byPayment[paymentID]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}
func (m *mockReceiptUC) ListByCustomer(ctx context.Context, customerID string) ([]*model.Receipt, error) {
	return nil, nil
}

type mockSubscriptionUC struct {
	CancelFunc func(ctx context.Context, customerID, subscriptionID string, sessionID *string) (*model.Subscription, error)
}

func (m *mockSubscriptionUC) Get(ctx context.Context, id string) (*model.Subscription, error) {
	return nil, domain.ErrNotFound
}
func (m *mockSubscriptionUC) ActiveForCustomer(ctx context.Context, customerID string) (*model.Subscription, error) {
	return nil, domain.ErrNotFound
}
func (m *mockSubscriptionUC) Cancel(ctx context.Context, customerID, subscriptionID string, sessionID *string) (*model.Subscription, error) {
	return m.CancelFunc(ctx, customerID, subscriptionID, sessionID)
}
func (m *mockSubscriptionUC) DueForBilling(ctx context.Context, now time.Time) ([]*model.Subscription, error) {
	return nil, nil
}
func (m *mockSubscriptionUC) CountByStatus(ctx context.Context) (map[model.SubscriptionStatus]int, error) {
	return nil, nil
}

type mockCustomerUC struct {
	customers map[string]*model.Customer
}

func (m *mockCustomerUC) Register(ctx context.Context, email, companyName, externalID string) (*model.Customer, error) {
	return nil, domain.ErrInvalidArgument
}
func (m *mockCustomerUC) Get(ctx context.Context, id string) (*model.Customer, error) {
	if c, ok := m.customers[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}
func (m *mockCustomerUC) AddPaymentMethod(ctx context.Context, pm *model.PaymentMethod, sessionID *string) (*model.PaymentMethod, error) {
	cp := *pm
	cp.ID = "pm-new"
	cp.Status = model.PaymentMethodStatusActive
	return &cp, nil
}
func (m *mockCustomerUC) ListPaymentMethods(ctx context.Context, customerID string) ([]*model.PaymentMethod, error) {
	return nil, nil
}

type mockStatsUC struct{}

func (mockStatsUC) Subscriptions(ctx context.Context) (map[model.SubscriptionStatus]int, error) {
	return map[model.SubscriptionStatus]int{model.SubscriptionStatusActive: 7}, nil
}
func (mockStatsUC) Revenue(ctx context.Context) (int64, int64, int64, error) {
	return 100, 400, 4800, nil
}

type mockCredits struct{ balances map[string]int64 }

func (m *mockCredits) Balance(ctx context.Context, externalCustomerID string) (int64, error) {
	return m.balances[externalCustomerID], nil
}

type mockCatalog struct{}

func (mockCatalog) ListPlans(ctx context.Context) ([]*model.Plan, error) {
	return []*model.Plan{{ID: "plan-monthly", Name: "Basic", Period: model.PeriodMonthly, PriceCents: 9900, Currency: "DKK", Active: true}}, nil
}
func (mockCatalog) ListProducts(ctx context.Context) ([]*model.Product, error) { return nil, nil }

type mockActivity struct{}

func (mockActivity) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*model.ActivityLog, error) {
	return nil, nil
}

// mockLimiter allows the first n calls.
type mockLimiter struct {
	n     int
	calls int
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.calls++
	return m.calls <= m.n, nil
}
