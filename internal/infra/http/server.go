package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/config"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/metrics"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/usecase"
)

// CreditBalances is the read side of the credit ledger.
type CreditBalances interface {
	Balance(ctx context.Context, externalCustomerID string) (int64, error)
}

type Catalog interface {
	ListPlans(ctx context.Context) ([]*model.Plan, error)
	ListProducts(ctx context.Context) ([]*model.Product, error)
}

type ActivityReader interface {
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]*model.ActivityLog, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Deps are the use cases the transport exposes. Limiter may be nil.
type Deps struct {
	Payments  usecase.PaymentUseCase
	Receipts  usecase.ReceiptUseCase
	Subs      usecase.SubscriptionUseCase
	Customers usecase.CustomerUseCase
	Stats     usecase.StatsUseCase
	Credits   CreditBalances
	Catalog   Catalog
	Activity  ActivityReader
	Limiter   RateLimiter
	Auth      *Authenticator
}

type Server struct {
	cfg       config.HTTPConfig
	payments  usecase.PaymentUseCase
	receipts  usecase.ReceiptUseCase
	subs      usecase.SubscriptionUseCase
	customers usecase.CustomerUseCase
	stats     usecase.StatsUseCase
	credits   CreditBalances
	catalog   Catalog
	activity  ActivityReader
	limiter   RateLimiter
	rateLimit int
	auth      *Authenticator
	log       *zerolog.Logger
	server    *http.Server
}

func NewServer(cfg config.HTTPConfig, d Deps, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "HTTPServer").Logger()
	return &Server{
		cfg:       cfg,
		payments:  d.Payments,
		receipts:  d.Receipts,
		subs:      d.Subs,
		customers: d.Customers,
		stats:     d.Stats,
		credits:   d.Credits,
		catalog:   d.Catalog,
		activity:  d.Activity,
		limiter:   d.Limiter,
		rateLimit: cfg.PaymentRateLimit,
		auth:      d.Auth,
		log:       &l,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), Recover(s.log), RequestLog(s.log))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Timeout(30 * time.Second))
		r.Get("/plans", s.handleListPlans)
		r.Get("/products", s.handleListProducts)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)

			r.Post("/payments", s.handleCreatePayment)
			r.Get("/payments", s.handleListPayments)
			r.Get("/payments/{paymentID}", s.handleGetPayment)
			r.Get("/payments/{paymentID}/receipt", s.handleGetPaymentReceipt)

			r.Get("/receipts", s.handleListReceipts)
			r.Get("/receipts/{number}", s.handleGetReceiptByNumber)

			r.Get("/subscriptions/active", s.handleActiveSubscription)
			r.Post("/subscriptions/{subscriptionID}/cancel", s.handleCancelSubscription)

			r.Get("/credits", s.handleCreditBalance)
			r.Get("/payment-methods", s.handleListPaymentMethods)
			r.Post("/payment-methods", s.handleAddPaymentMethod)
			r.Get("/activity", s.handleListActivity)

			r.With(RequireAdmin).Get("/stats", s.handleStats)
		})
	})
	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	s.log.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
