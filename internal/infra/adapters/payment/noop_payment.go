package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// Test tokens understood by NoopPaymentGateway, named after Stripe's test methods.
const (
	NoopTokenDeclined          = "pm_card_chargeDeclined"
	NoopTokenInsufficientFunds = "pm_card_chargeDeclinedInsufficientFunds"
	NoopTokenExpired           = "pm_card_chargeDeclinedExpiredCard"
	NoopToken3DS               = "pm_card_authenticationRequired"
)

// NoopPaymentGateway is a simple in-memory gateway for dev mode and tests.
// Every charge succeeds unless its method ref was scripted to fail.
type NoopPaymentGateway struct {
	mu       sync.Mutex
	seq      int64
	charges  map[string]adapter.ChargeRequest // confirmation id -> request
	failures map[string]string                // method ref -> error code
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{
		charges: make(map[string]adapter.ChargeRequest),
		failures: map[string]string{
			NoopTokenDeclined:          "card_declined",
			NoopTokenInsufficientFunds: "insufficient_funds",
			NoopTokenExpired:           "expired_card",
		},
	}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

// FailWith makes charges against ref fail with the given decline code.
func (g *NoopPaymentGateway) FailWith(ref, code string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[ref] = code
}

func (g *NoopPaymentGateway) next() string {
	g.seq++
	return fmt.Sprintf("noop_pi_%d", g.seq)
}

func (g *NoopPaymentGateway) CreateCharge(ctx context.Context, req adapter.ChargeRequest) (adapter.ChargeConfirmation, error) {
	if err := ctx.Err(); err != nil {
		return adapter.ChargeConfirmation{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if code, bad := g.failures[req.PaymentMethodRef]; bad {
		return adapter.ChargeConfirmation{}, &domain.GatewayError{Code: code, Message: DescribeDeclineCode(code, "declined by noop gateway")}
	}
	id := g.next()
	g.charges[id] = req
	status := adapter.ChargeStatusSucceeded
	if req.PaymentMethodRef == NoopToken3DS {
		status = adapter.ChargeStatusRequiresAction
	}
	return adapter.ChargeConfirmation{ID: id, Status: status, LatestChargeID: "noop_ch_" + id[len("noop_pi_"):]}, nil
}

func (g *NoopPaymentGateway) IsSuccessful(c adapter.ChargeConfirmation) bool {
	return c.Status == adapter.ChargeStatusSucceeded
}

func (g *NoopPaymentGateway) ReceiptURL(ctx context.Context, c adapter.ChargeConfirmation) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.charges[c.ID]; !ok {
		return "", fmt.Errorf("noop: charge %s not found", c.ID)
	}
	return "https://example.test/receipts/" + c.ID, nil
}

// Charges returns how many charges succeeded at the gateway.
func (g *NoopPaymentGateway) Charges() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.charges)
}
