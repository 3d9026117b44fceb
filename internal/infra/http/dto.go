package http

import (
	"time"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/usecase"
)

type paymentRequestDTO struct {
	PaymentMethodRef string  `json:"paymentMethodId" validate:"required,max=255"`
	AmountCents      int64   `json:"amount" validate:"required,gt=0"`
	Currency         string  `json:"currency" validate:"required,currency"`
	Description      string  `json:"description" validate:"max=500"`
	SubscriptionID   *string `json:"subscriptionId,omitempty" validate:"omitempty,min=1"`
	ProductID        *string `json:"productId,omitempty" validate:"omitempty,min=1"`
}

type addPaymentMethodDTO struct {
	ProcessorMethodID string `json:"processorMethodId" validate:"required"`
	Brand             string `json:"brand" validate:"required"`
	Last4             string `json:"last4" validate:"required,len=4,numeric"`
	ExpMonth          int    `json:"expMonth" validate:"required,min=1,max=12"`
	ExpYear           int    `json:"expYear" validate:"required,min=2000"`
	IsDefault         bool   `json:"isDefault"`
	Fingerprint       string `json:"fingerprint"`
}

type paymentDTO struct {
	ID                string    `json:"id"`
	CustomerID        string    `json:"customerId"`
	PaymentMethodID   *string   `json:"paymentMethodId,omitempty"`
	SubscriptionID    *string   `json:"subscriptionId,omitempty"`
	ProductID         *string   `json:"productId,omitempty"`
	Status            string    `json:"status"`
	AmountCents       int64     `json:"amount"`
	Currency          string    `json:"currency"`
	ProcessorIntentID string    `json:"processorIntentId"`
	CreatedAt         time.Time `json:"createdAt"`
}

func toPaymentDTO(p *model.Payment) *paymentDTO {
	if p == nil {
		return nil
	}
	return &paymentDTO{
		ID: p.ID, CustomerID: p.CustomerID, PaymentMethodID: p.PaymentMethodID, SubscriptionID: p.SubscriptionID,
		ProductID: p.ProductID, Status: string(p.Status), AmountCents: p.AmountCents, Currency: p.Currency,
		ProcessorIntentID: p.ProcessorIntentID, CreatedAt: p.CreatedAt,
	}
}

type receiptDTO struct {
	ID                  string                 `json:"id"`
	PaymentID           string                 `json:"paymentId"`
	ReceiptNumber       string                 `json:"receiptNumber"`
	PriceCents          int64                  `json:"price"`
	PaidAt              time.Time              `json:"paidAt"`
	Status              string                 `json:"status"`
	ProcessorReceiptURL string                 `json:"processorReceiptUrl,omitempty"`
	CustomerEmail       string                 `json:"customerEmail"`
	CompanyName         string                 `json:"companyName"`
	PMBrand             string                 `json:"pmBrand"`
	PMLast4             string                 `json:"pmLast4"`
	PMExpYear           *int                   `json:"pmExpYear,omitempty"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
}

func toReceiptDTO(r *model.Receipt) *receiptDTO {
	if r == nil {
		return nil
	}
	return &receiptDTO{
		ID: r.ID, PaymentID: r.PaymentID, ReceiptNumber: r.ReceiptNumber, PriceCents: r.PriceCents, PaidAt: r.PaidAt,
		Status: string(r.Status), ProcessorReceiptURL: r.ProcessorReceiptURL, CustomerEmail: r.CustomerEmail,
		CompanyName: r.CompanyName, PMBrand: r.PMBrand, PMLast4: r.PMLast4, PMExpYear: r.PMExpYear, Metadata: r.Metadata,
	}
}

type subscriptionDTO struct {
	ID              string     `json:"id"`
	PlanID          string     `json:"planId"`
	Status          string     `json:"status"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	NextBillingDate *time.Time `json:"nextBillingDate,omitempty"`
}

func toSubscriptionDTO(s *model.Subscription) *subscriptionDTO {
	if s == nil {
		return nil
	}
	return &subscriptionDTO{ID: s.ID, PlanID: s.PlanID, Status: string(s.Status), StartDate: s.StartDate, EndDate: s.EndDate, NextBillingDate: s.NextBillingDate}
}

type paymentResultDTO struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	Payment       *paymentDTO      `json:"payment"`
	Receipt       *receiptDTO      `json:"receipt"`
	Subscription  *subscriptionDTO `json:"subscription,omitempty"`
	CreditBalance *int64           `json:"creditBalance,omitempty"`
}

func toPaymentResultDTO(res *usecase.PaymentResult) *paymentResultDTO {
	out := &paymentResultDTO{
		Success:      res.Success,
		Message:      res.Message,
		Payment:      toPaymentDTO(res.Payment),
		Receipt:      toReceiptDTO(res.Receipt),
		Subscription: toSubscriptionDTO(res.Subscription),
	}
	if res.CreditBalance != nil {
		n := res.CreditBalance.Remaining
		out.CreditBalance = &n
	}
	return out
}

type paymentMethodDTO struct {
	ID        string `json:"id"`
	Brand     string `json:"brand"`
	Last4     string `json:"last4"`
	ExpMonth  int    `json:"expMonth"`
	ExpYear   int    `json:"expYear"`
	IsDefault bool   `json:"isDefault"`
	Status    string `json:"status"`
}

func toPaymentMethodDTO(pm *model.PaymentMethod) *paymentMethodDTO {
	return &paymentMethodDTO{ID: pm.ID, Brand: pm.Brand, Last4: pm.Last4, ExpMonth: pm.ExpMonth, ExpYear: pm.ExpYear, IsDefault: pm.IsDefault, Status: string(pm.Status)}
}

type activityDTO struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}
