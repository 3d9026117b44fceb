// File: internal/infra/adapters/payment/stripe_gateway.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/adapter"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/metrics"
)

var _ adapter.PaymentGateway = (*StripeGateway)(nil)

// StripeGateway charges through Stripe PaymentIntents, confirmed on creation.
// Network retries are disabled: a charge is attempted exactly once.
type StripeGateway struct {
	sc  *client.API
	log *zerolog.Logger
}

// StripeOptions overrides the API endpoint and HTTP client, mostly for tests.
type StripeOptions struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewStripeGateway(secretKey string, logger *zerolog.Logger, opts StripeOptions) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key empty")
	}
	l := logger.With().Str("component", "StripeGateway").Logger()

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	// GetBackendWithConfig fills in a default URL, so each backend gets its own config.
	newCfg := func() *stripe.BackendConfig {
		cfg := &stripe.BackendConfig{
			HTTPClient:        httpClient,
			MaxNetworkRetries: stripe.Int64(0),
			LeveledLogger:     &stripeLogger{log: &l},
		}
		if opts.BaseURL != "" {
			cfg.URL = stripe.String(opts.BaseURL)
		}
		return cfg
	}
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, newCfg()),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, newCfg()),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, newCfg()),
	}
	return &StripeGateway{sc: client.New(secretKey, backends), log: &l}, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) CreateCharge(ctx context.Context, req adapter.ChargeRequest) (adapter.ChargeConfirmation, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.AmountCents),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod: stripe.String(req.PaymentMethodRef),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String(string(stripe.PaymentIntentAutomaticPaymentMethodsAllowRedirectsNever)),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	start := time.Now()
	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		gerr := toGatewayError(err)
		result := "error"
		if gerr.Code != "" {
			result = "declined"
		}
		metrics.ObserveGatewayCharge(g.Name(), result, time.Since(start))
		g.log.Warn().Str("code", gerr.Code).Int64("amount", req.AmountCents).Msg("stripe charge failed")
		return adapter.ChargeConfirmation{}, gerr
	}
	metrics.ObserveGatewayCharge(g.Name(), "ok", time.Since(start))

	conf := adapter.ChargeConfirmation{ID: pi.ID, Status: mapIntentStatus(pi.Status)}
	if pi.LatestCharge != nil {
		conf.LatestChargeID = pi.LatestCharge.ID
		conf.ReceiptURL = pi.LatestCharge.ReceiptURL
	}
	g.log.Info().Str("intent_id", pi.ID).Str("status", string(pi.Status)).Msg("stripe payment intent created")
	return conf, nil
}

func (g *StripeGateway) IsSuccessful(c adapter.ChargeConfirmation) bool {
	return c.Status == adapter.ChargeStatusSucceeded
}

// ReceiptURL fetches the hosted receipt of the intent's latest charge.
func (g *StripeGateway) ReceiptURL(ctx context.Context, c adapter.ChargeConfirmation) (string, error) {
	if c.ReceiptURL != "" {
		return c.ReceiptURL, nil
	}
	if c.LatestChargeID == "" {
		return "", fmt.Errorf("stripe: intent %s has no charge", c.ID)
	}
	params := &stripe.ChargeParams{}
	params.Context = ctx
	ch, err := g.sc.Charges.Get(c.LatestChargeID, params)
	if err != nil {
		return "", fmt.Errorf("stripe: get charge %s: %w", c.LatestChargeID, err)
	}
	return ch.ReceiptURL, nil
}

func mapIntentStatus(s stripe.PaymentIntentStatus) adapter.ChargeStatus {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return adapter.ChargeStatusSucceeded
	case stripe.PaymentIntentStatusProcessing:
		return adapter.ChargeStatusProcessing
	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation:
		return adapter.ChargeStatusRequiresAction
	case stripe.PaymentIntentStatusCanceled:
		return adapter.ChargeStatusCanceled
	default:
		return adapter.ChargeStatusFailed
	}
}

// toGatewayError prefers the decline code when it has a more specific message
// than the generic card_declined.
func toGatewayError(err error) *domain.GatewayError {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return &domain.GatewayError{Message: DescribeDeclineCode("", err.Error()), Err: err}
	}
	code := string(se.Code)
	if dc := string(se.DeclineCode); dc != "" && KnownDeclineCode(dc) {
		code = dc
	}
	return &domain.GatewayError{Code: code, Message: DescribeDeclineCode(code, se.Msg), Err: err}
}

// stripeLogger routes stripe-go's leveled logging into zerolog.
type stripeLogger struct{ log *zerolog.Logger }

func (l *stripeLogger) Debugf(format string, v ...interface{}) { l.log.Debug().Msgf(format, v...) }
func (l *stripeLogger) Infof(format string, v ...interface{})  { l.log.Debug().Msgf(format, v...) }
func (l *stripeLogger) Warnf(format string, v ...interface{})  { l.log.Warn().Msgf(format, v...) }
func (l *stripeLogger) Errorf(format string, v ...interface{}) { l.log.Error().Msgf(format, v...) }
