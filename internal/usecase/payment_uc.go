// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/adapter"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/logging"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

const (
	// defaultLockTTL outlives the gateway client timeout plus defaultPersistTimeout.
	defaultLockTTL        = 2 * time.Minute
	defaultPersistTimeout = 15 * time.Second
	defaultDescription    = "Payment"
	successMessage        = "Payment processed successfully"
)

// PaymentRequest asks for one charge. A PaymentMethodRef starting with "pm_" is a
// one-time gateway token; anything else is the id of a saved payment method.
type PaymentRequest struct {
	CustomerID       string
	PaymentMethodRef string
	AmountCents      int64
	Currency         string
	Description      string
	SubscriptionID   *string
	ProductID        *string
	SessionID        *string
}

// PaymentResult is returned only for committed payments.
type PaymentResult struct {
	Success       bool
	Payment       *model.Payment
	Receipt       *model.Receipt
	Subscription  *model.Subscription // nil when the payment renewed nothing
	CreditBalance *model.CreditBalance
	Message       string
}

type PaymentUseCase interface {
	// ProcessPayment charges the gateway, then records payment, receipt, credits,
	// renewal and activity in one local transaction. Errors are *domain.PaymentProcessingError.
	ProcessPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
	GetPayment(ctx context.Context, id string) (*model.Payment, error)
	ListPaymentsByCustomer(ctx context.Context, customerID string) ([]*model.Payment, error)
	// Totals per period ("week", "month", "year"), used by stats
	SumByPeriod(ctx context.Context, period string) (int64, error)
}

// PaymentDeps groups the collaborators of the payment orchestrator.
// Locker is optional; without it renewals rely on the row lock alone.
type PaymentDeps struct {
	Customers     repository.CustomerRepository
	Methods       repository.PaymentMethodRepository
	Subscriptions repository.SubscriptionRepository
	Plans         repository.PlanRepository
	Products      repository.ProductRepository
	Payments      repository.PaymentRepository
	Receipts      repository.ReceiptRepository
	Ledger        *CreditLedger
	Activity      *ActivityRecorder
	Receipt       *ReceiptGenerator
	Gateway       adapter.PaymentGateway
	Locker        adapter.Locker
	LockTTL       time.Duration
	// PersistTimeout bounds the local transaction once the gateway confirmed.
	PersistTimeout time.Duration
	TM             repository.TransactionManager
}

type paymentUC struct {
	PaymentDeps
	log *zerolog.Logger
	now func() time.Time
}

func NewPaymentUseCase(deps PaymentDeps, logger *zerolog.Logger) *paymentUC {
	if deps.LockTTL <= 0 {
		deps.LockTTL = defaultLockTTL
	}
	if deps.PersistTimeout <= 0 {
		deps.PersistTimeout = defaultPersistTimeout
	}
	l := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{PaymentDeps: deps, log: &l, now: time.Now}
}

// chargeContext is what the validating phase resolved.
type chargeContext struct {
	customer  *model.Customer
	method    *model.PaymentMethod // nil for one-time tokens
	chargeRef string
	oneTime   bool
	sub       *model.Subscription
	plan      *model.Plan
	product   *model.Product
}

func (u *paymentUC) ProcessPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	ctx = logging.WithCustomerID(ctx, req.CustomerID)
	if req.SessionID != nil {
		ctx = logging.WithSessID(ctx, *req.SessionID)
	}
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "PaymentUC.ProcessPayment")()

	// --- validating ---
	cc, err := u.validate(ctx, &req)
	if err != nil {
		log.Info().Err(err).Msg("payment rejected before charging")
		metrics.IncPayment("rejected")
		return nil, err
	}

	// --- charging ---
	if cc.sub != nil && u.Locker != nil {
		key := "subscription:" + cc.sub.ID
		token, err := u.Locker.TryLock(ctx, key, u.LockTTL)
		switch {
		case errors.Is(err, domain.ErrLockNotAcquired):
			return nil, &domain.PaymentProcessingError{
				Category: domain.CategoryConflict,
				Message:  "another payment for this subscription is in progress",
				Err:      err,
			}
		case err != nil:
			// The subscription row is still locked FOR UPDATE while persisting.
			log.Warn().Err(err).Str("subscription_id", cc.sub.ID).Msg("subscription lock unavailable, relying on row lock")
		default:
			defer func() {
				if err := u.Locker.Unlock(context.Background(), key, token); err != nil {
					log.Warn().Err(err).Str("subscription_id", cc.sub.ID).Msg("failed to release subscription lock")
				}
			}()
		}
	}

	conf, err := u.charge(ctx, req, cc)
	if err != nil {
		log.Warn().Err(err).Int64("amount", req.AmountCents).Str("currency", req.Currency).Msg("gateway charge failed")
		metrics.IncPayment("failed")
		return nil, err
	}

	// --- persisting ---
	payment := &model.Payment{
		ID:                uuid.NewString(),
		CustomerID:        cc.customer.ID,
		SubscriptionID:    idOf(cc.sub),
		ProductID:         productIDOf(cc.product),
		Status:            model.PaymentStatusCompleted,
		AmountCents:       req.AmountCents,
		Currency:          req.Currency,
		ProcessorIntentID: conf.ID,
		CreatedAt:         u.now(),
	}
	if cc.method != nil {
		id := cc.method.ID
		payment.PaymentMethodID = &id
	}
	receipt := u.Receipt.Generate(ctx, ReceiptInput{
		Payment:      payment,
		Customer:     cc.customer,
		Method:       cc.method,
		Confirmation: conf,
		Subscription: cc.sub,
		Plan:         cc.plan,
		Product:      cc.product,
	})

	result := &PaymentResult{Payment: payment, Receipt: receipt}
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	// Money has moved; a canceled request must not roll the record back.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.PersistTimeout)
	defer cancel()
	err = u.TM.WithTx(persistCtx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		return u.persist(ctx, tx, req, cc, result)
	})
	if err != nil {
		// The gateway has already moved money; nothing local records it.
		log.Error().Err(err).
			Str("confirmation_id", conf.ID).
			Str("payment_id", payment.ID).
			Int64("amount", req.AmountCents).
			Str("currency", req.Currency).
			Msg("charge confirmed at gateway but local transaction rolled back")
		metrics.IncPayment("unrecorded")
		var pe *domain.PersistenceError
		if !errors.As(err, &pe) {
			pe = &domain.PersistenceError{Op: "commit", Err: err}
		}
		return nil, &domain.PaymentProcessingError{
			Category: domain.CategoryPersistence,
			Message:  "payment could not be recorded",
			Err:      pe,
		}
	}

	// --- committed ---
	metrics.IncPayment("completed")
	metrics.AddPaymentRevenue(payment.Currency, payment.AmountCents)
	if result.Subscription != nil {
		metrics.IncSubscriptionsRenewed()
	}
	if cc.product.GrantsCredits() {
		metrics.AddCreditsPurchased(*cc.product.SMSCount)
	}
	result.Success = true
	result.Message = successMessage
	log.Info().Str("payment_id", payment.ID).Str("receipt_number", receipt.ReceiptNumber).Int64("amount", payment.AmountCents).Msg("payment committed")
	return result, nil
}

func (u *paymentUC) validate(ctx context.Context, req *PaymentRequest) (*chargeContext, error) {
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.AmountCents <= 0 {
		return nil, invalidArgument("amount must be greater than zero")
	}
	if !validCurrency(req.Currency) {
		return nil, invalidArgument("currency must be a 3-letter code")
	}
	if req.CustomerID == "" || req.PaymentMethodRef == "" {
		return nil, invalidArgument("customer and payment method are required")
	}

	cc := &chargeContext{}
	customer, err := u.Customers.FindByID(ctx, repository.NoTX, req.CustomerID)
	if err != nil {
		return nil, lookupFailure("customer", req.CustomerID, err)
	}
	cc.customer = customer

	if model.IsOneTimeRef(req.PaymentMethodRef) {
		cc.oneTime = true
		cc.chargeRef = req.PaymentMethodRef
	} else {
		method, err := u.Methods.FindByID(ctx, repository.NoTX, req.PaymentMethodRef)
		if err != nil {
			return nil, lookupFailure("payment method", req.PaymentMethodRef, err)
		}
		if method.CustomerID != customer.ID {
			return nil, lookupFailure("payment method", req.PaymentMethodRef, domain.ErrNotFound)
		}
		cc.method = method
		cc.chargeRef = method.ProcessorMethodID
	}

	if req.SubscriptionID != nil && *req.SubscriptionID != "" {
		sub, err := u.Subscriptions.FindByID(ctx, repository.NoTX, *req.SubscriptionID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// no association
		case err != nil:
			return nil, lookupFailure("subscription", *req.SubscriptionID, err)
		default:
			if sub.CustomerID != customer.ID {
				return nil, invalidArgument("subscription belongs to another customer")
			}
			if !sub.CanRenew() {
				return nil, &domain.PaymentProcessingError{
					Category: domain.CategoryNotRenewable,
					Message:  fmt.Sprintf("subscription %s is %s", sub.ID, sub.Status),
					Err:      domain.ErrSubscriptionNotRenewable,
				}
			}
			plan, err := u.Plans.FindByID(ctx, repository.NoTX, sub.PlanID)
			if err != nil {
				return nil, lookupFailure("plan", sub.PlanID, err)
			}
			cc.sub, cc.plan = sub, plan
		}
	}

	if req.ProductID != nil && *req.ProductID != "" {
		product, err := u.Products.FindByID(ctx, repository.NoTX, *req.ProductID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return nil, lookupFailure("product", *req.ProductID, err)
		default:
			cc.product = product
		}
	}
	return cc, nil
}

func (u *paymentUC) charge(ctx context.Context, req PaymentRequest, cc *chargeContext) (adapter.ChargeConfirmation, error) {
	desc := req.Description
	if desc == "" {
		desc = defaultDescription
	}
	md := map[string]string{
		"customer_id":      cc.customer.ID,
		"one_time_payment": strconv.FormatBool(cc.oneTime),
	}
	if cc.sub != nil {
		md["subscription_id"] = cc.sub.ID
	}
	if cc.product != nil {
		md["product_id"] = cc.product.ID
	}

	conf, err := u.Gateway.CreateCharge(ctx, adapter.ChargeRequest{
		AmountCents:      req.AmountCents,
		Currency:         req.Currency,
		PaymentMethodRef: cc.chargeRef,
		Description:      desc,
		Metadata:         md,
	})
	if err != nil {
		var ge *domain.GatewayError
		if !errors.As(err, &ge) {
			ge = &domain.GatewayError{Message: "payment gateway unavailable", Err: err}
		}
		return conf, &domain.PaymentProcessingError{Category: domain.CategoryGateway, Message: ge.Message, Err: ge}
	}
	if !u.Gateway.IsSuccessful(conf) {
		ge := &domain.GatewayError{
			Code:    string(conf.Status),
			Message: fmt.Sprintf("Payment was not completed (status: %s)", conf.Status),
		}
		return conf, &domain.PaymentProcessingError{Category: domain.CategoryGateway, Message: ge.Message, Err: ge}
	}
	return conf, nil
}

// persist runs the local phase. Any error aborts the whole transaction.
func (u *paymentUC) persist(ctx context.Context, tx repository.Tx, req PaymentRequest, cc *chargeContext, res *PaymentResult) error {
	p := res.Payment
	if err := u.Payments.Save(ctx, tx, p); err != nil {
		return &domain.PersistenceError{Op: "save payment", Err: err}
	}
	if err := u.Receipts.Create(ctx, tx, res.Receipt); err != nil {
		return &domain.PersistenceError{Op: "create receipt", Err: err}
	}

	if cc.product.GrantsCredits() {
		credits := int64(*cc.product.SMSCount)
		bal, err := u.Ledger.TopUp(ctx, tx, cc.customer.ExternalCustomerID, credits)
		if err != nil {
			return &domain.PersistenceError{Op: "top up credits", Err: err}
		}
		res.CreditBalance = bal
		if _, err := u.Activity.Record(ctx, tx, Activity{
			CustomerID: cc.customer.ID,
			SessionID:  req.SessionID,
			Type:       model.ActivitySMSPurchase,
			Metadata: map[string]interface{}{
				"productId":       cc.product.ID,
				"productName":     cc.product.Name,
				"smsCreditsAdded": credits,
				"paymentId":       p.ID,
				"oneTimePayment":  cc.oneTime,
			},
		}); err != nil {
			return &domain.PersistenceError{Op: "record sms purchase", Err: err}
		}
	}

	if cc.sub != nil {
		// re-read under the row lock so a concurrent renewal is not lost
		sub, err := u.Subscriptions.FindByID(ctx, tx, cc.sub.ID)
		if err != nil {
			return &domain.PersistenceError{Op: "lock subscription", Err: err}
		}
		renewal, err := sub.Renew(cc.plan.Period)
		if err != nil {
			return &domain.PersistenceError{Op: "renew subscription", Err: err}
		}
		if err := u.Subscriptions.Save(ctx, tx, sub); err != nil {
			return &domain.PersistenceError{Op: "save subscription", Err: err}
		}
		res.Subscription = sub
		if _, err := u.Activity.Record(ctx, tx, Activity{
			CustomerID: cc.customer.ID,
			SessionID:  req.SessionID,
			Type:       model.ActivitySubscriptionRenewed,
			Metadata: map[string]interface{}{
				"subscriptionId":      sub.ID,
				"planId":              cc.plan.ID,
				"planName":            cc.plan.Name,
				"previousBillingDate": renewal.Previous.Format(time.RFC3339),
				"nextBillingDate":     renewal.Next.Format(time.RFC3339),
				"paymentId":           p.ID,
			},
		}); err != nil {
			return &domain.PersistenceError{Op: "record renewal", Err: err}
		}
	}

	md := map[string]interface{}{
		"paymentId":      p.ID,
		"amount":         p.AmountCents,
		"currency":       p.Currency,
		"status":         string(p.Status),
		"oneTimePayment": cc.oneTime,
		"receiptNumber":  res.Receipt.ReceiptNumber,
	}
	if p.SubscriptionID != nil {
		md["subscriptionId"] = *p.SubscriptionID
	}
	if p.ProductID != nil {
		md["productId"] = *p.ProductID
	}
	if _, err := u.Activity.Record(ctx, tx, Activity{
		CustomerID: cc.customer.ID,
		SessionID:  req.SessionID,
		Type:       model.ActivityPayment,
		Metadata:   md,
	}); err != nil {
		return &domain.PersistenceError{Op: "record payment activity", Err: err}
	}
	return nil
}

func (u *paymentUC) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.GetPayment")()
	return u.Payments.FindByID(ctx, repository.NoTX, id)
}

func (u *paymentUC) ListPaymentsByCustomer(ctx context.Context, customerID string) ([]*model.Payment, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.ListPaymentsByCustomer")()
	return u.Payments.ListByCustomer(ctx, repository.NoTX, customerID)
}

func (u *paymentUC) SumByPeriod(ctx context.Context, period string) (int64, error) {
	return u.Payments.SumByPeriod(ctx, repository.NoTX, period)
}

func validCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func invalidArgument(msg string) error {
	return &domain.PaymentProcessingError{
		Category: domain.CategoryInvalidArgument,
		Message:  msg,
		Err:      domain.ErrInvalidArgument,
	}
}

// lookupFailure classifies a failed read during validation.
func lookupFailure(what, id string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.PaymentProcessingError{
			Category: domain.CategoryNotFound,
			Message:  fmt.Sprintf("%s %s not found", what, id),
			Err:      err,
		}
	}
	return &domain.PaymentProcessingError{
		Category: domain.CategoryPersistence,
		Message:  "lookup failed",
		Err:      &domain.PersistenceError{Op: "find " + what, Err: err},
	}
}

func idOf(s *model.Subscription) *string {
	if s == nil {
		return nil
	}
	id := s.ID
	return &id
}

func productIDOf(p *model.Product) *string {
	if p == nil {
		return nil
	}
	id := p.ID
	return &id
}
