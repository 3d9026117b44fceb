package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/logging"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/metrics"
	red "github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/redis"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/usecase"
)

func (s *Server) principal(w http.ResponseWriter, r *http.Request) (Principal, bool) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
	}
	return p, ok
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	var in paymentRequestDTO
	if !decodeAndValidate(w, r, &in) {
		metrics.ObservePaymentRequest("fail", string(domain.CategoryInvalidArgument), time.Since(start))
		return
	}

	if s.limiter != nil && s.rateLimit > 0 {
		allowed, err := s.limiter.Allow(r.Context(), red.PaymentAttemptKey(p.CustomerID), s.rateLimit, time.Minute)
		if err != nil {
			l := logging.With(r.Context(), s.log)
			l.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		} else if !allowed {
			writeJSONError(w, http.StatusTooManyRequests, "too many payment attempts, try again later")
			return
		}
	}

	res, err := s.payments.ProcessPayment(r.Context(), usecase.PaymentRequest{
		CustomerID:       p.CustomerID,
		PaymentMethodRef: in.PaymentMethodRef,
		AmountCents:      in.AmountCents,
		Currency:         in.Currency,
		Description:      in.Description,
		SubscriptionID:   in.SubscriptionID,
		ProductID:        in.ProductID,
		SessionID:        p.SessionID,
	})
	if err != nil {
		metrics.ObservePaymentRequest("fail", string(domain.CategoryOf(err)), time.Since(start))
		writeDomainError(w, err)
		return
	}
	metrics.ObservePaymentRequest("ok", "", time.Since(start))
	writeJSON(w, http.StatusCreated, toPaymentResultDTO(res))
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	list, err := s.payments.ListPaymentsByCustomer(r.Context(), p.CustomerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]*paymentDTO, 0, len(list))
	for _, pay := range list {
		out = append(out, toPaymentDTO(pay))
	}
	writeJSON(w, http.StatusOK, out)
}

// ownedPayment hides payments of other customers behind a 404.
func (s *Server) ownedPayment(w http.ResponseWriter, r *http.Request, p Principal) (*model.Payment, bool) {
	pay, err := s.payments.GetPayment(r.Context(), chi.URLParam(r, "paymentID"))
	if err == nil && pay.CustomerID != p.CustomerID {
		err = domain.ErrNotFound
	}
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return pay, true
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	if pay, ok := s.ownedPayment(w, r, p); ok {
		writeJSON(w, http.StatusOK, toPaymentDTO(pay))
	}
}

func (s *Server) handleGetPaymentReceipt(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	pay, ok := s.ownedPayment(w, r, p)
	if !ok {
		return
	}
	rc, err := s.receipts.GetByPaymentID(r.Context(), pay.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptDTO(rc))
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	list, err := s.receipts.ListByCustomer(r.Context(), p.CustomerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]*receiptDTO, 0, len(list))
	for _, rc := range list {
		out = append(out, toReceiptDTO(rc))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetReceiptByNumber(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	rc, err := s.receipts.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	pay, err := s.payments.GetPayment(r.Context(), rc.PaymentID)
	if err != nil || pay.CustomerID != p.CustomerID {
		writeDomainError(w, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptDTO(rc))
}

func (s *Server) handleActiveSubscription(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	sub, err := s.subs.ActiveForCustomer(r.Context(), p.CustomerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionDTO(sub))
}

func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	sub, err := s.subs.Cancel(r.Context(), p.CustomerID, chi.URLParam(r, "subscriptionID"), p.SessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionDTO(sub))
}

func (s *Server) handleCreditBalance(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	c, err := s.customers.Get(r.Context(), p.CustomerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	n, err := s.credits.Balance(r.Context(), c.ExternalCustomerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"remaining": n})
}

func (s *Server) handleListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	list, err := s.customers.ListPaymentMethods(r.Context(), p.CustomerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]*paymentMethodDTO, 0, len(list))
	for _, pm := range list {
		out = append(out, toPaymentMethodDTO(pm))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	var in addPaymentMethodDTO
	if !decodeAndValidate(w, r, &in) {
		return
	}
	pm, err := s.customers.AddPaymentMethod(r.Context(), &model.PaymentMethod{
		CustomerID:        p.CustomerID,
		Type:              "card",
		Brand:             in.Brand,
		Last4:             in.Last4,
		ExpMonth:          in.ExpMonth,
		ExpYear:           in.ExpYear,
		ProcessorMethodID: in.ProcessorMethodID,
		IsDefault:         in.IsDefault,
		Fingerprint:       in.Fingerprint,
	}, p.SessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentMethodDTO(pm))
}

func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := s.activity.ListByCustomer(r.Context(), p.CustomerID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]*activityDTO, 0, len(list))
	for _, e := range list {
		out = append(out, &activityDTO{ID: e.ID, Type: string(e.Type), Status: string(e.Status), Timestamp: e.Timestamp, Metadata: e.Metadata})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.catalog.ListPlans(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.stats.Subscriptions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	week, month, year, err := s.stats.Revenue(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	byStatus := make(map[string]int, len(counts))
	for st, n := range counts {
		byStatus[string(st)] = n
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subscriptions": byStatus,
		"revenue":       map[string]int64{"week": week, "month": month, "year": year},
	})
}
