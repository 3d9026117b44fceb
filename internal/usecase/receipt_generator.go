package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/adapter"
)

// ReceiptNumberPrefix starts every receipt number.
const ReceiptNumberPrefix = "RCP-"

// ReceiptInput is everything a receipt snapshots. Method is nil for one-time tokens;
// Subscription, Plan and Product are nil when the payment has no such association.
type ReceiptInput struct {
	Payment      *model.Payment
	Customer     *model.Customer
	Method       *model.PaymentMethod
	Confirmation adapter.ChargeConfirmation
	Subscription *model.Subscription
	Plan         *model.Plan
	Product      *model.Product
}

// ReceiptGenerator builds receipts. It does not persist them: the orchestrator
// saves the receipt inside the payment transaction.
type ReceiptGenerator struct {
	gateway adapter.PaymentGateway
	log     *zerolog.Logger
	now     func() time.Time
}

func NewReceiptGenerator(gateway adapter.PaymentGateway, logger *zerolog.Logger) *ReceiptGenerator {
	l := logger.With().Str("component", "ReceiptGenerator").Logger()
	return &ReceiptGenerator{gateway: gateway, log: &l, now: time.Now}
}

// NewReceiptNumber returns a unique, time-ordered receipt number.
func NewReceiptNumber() string {
	return ReceiptNumberPrefix + ulid.Make().String()
}

// Generate assembles the receipt for a confirmed payment. A failed receipt URL
// lookup is logged and leaves the URL empty.
func (g *ReceiptGenerator) Generate(ctx context.Context, in ReceiptInput) *model.Receipt {
	now := g.now()
	r := &model.Receipt{
		ID:                uuid.NewString(),
		PaymentID:         in.Payment.ID,
		ReceiptNumber:     NewReceiptNumber(),
		PriceCents:        in.Payment.AmountCents,
		PaidAt:            now,
		Status:            model.ReceiptStatusPaid,
		ProcessorIntentID: in.Payment.ProcessorIntentID,
		CreatedAt:         now,
		PMBrand:           model.ReceiptBrandPlaceholder,
		PMLast4:           model.ReceiptLast4Placeholder,
	}
	if in.Customer != nil {
		r.CustomerEmail = in.Customer.Email
		r.CompanyName = in.Customer.CompanyName
	}
	if in.Method != nil {
		r.PMBrand = in.Method.Brand
		r.PMLast4 = in.Method.Last4
		if in.Method.ExpYear > 0 {
			y := in.Method.ExpYear
			r.PMExpYear = &y
		}
	}

	r.ProcessorReceiptURL = in.Confirmation.ReceiptURL
	if r.ProcessorReceiptURL == "" && g.gateway != nil {
		url, err := g.gateway.ReceiptURL(ctx, in.Confirmation)
		if err != nil {
			g.log.Warn().Err(err).Str("confirmation_id", in.Confirmation.ID).Msg("could not fetch gateway receipt url")
		} else {
			r.ProcessorReceiptURL = url
		}
	}

	r.Metadata = receiptMetadata(in)
	return r
}

func receiptMetadata(in ReceiptInput) map[string]interface{} {
	md := map[string]interface{}{
		"paymentId":     in.Payment.ID,
		"customerId":    in.Payment.CustomerID,
		"currency":      in.Payment.Currency,
		"paymentStatus": string(in.Payment.Status),
	}
	if in.Subscription != nil {
		md["subscriptionId"] = in.Subscription.ID
		if in.Plan != nil {
			md["planName"] = in.Plan.Name
			md["billingPeriod"] = string(in.Plan.Period)
		}
	}
	if in.Product != nil {
		md["productId"] = in.Product.ID
		md["productName"] = in.Product.Name
		md["productType"] = string(in.Product.Type)
		if in.Product.SMSCount != nil {
			md["smsCount"] = *in.Product.SMSCount
		}
	}
	return md
}
