// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/config"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/adapter"
	payAdapters "github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/adapters/payment"
	pg "github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/db/postgres"
	httpapi "github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/http"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/logging"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/metrics"
	red "github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/redis"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/sched"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/usecase"
)

var (
	version = "dev"
	commit  = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Config ----
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Repositories ----
	customerRepo := pg.NewCustomerRepo(pool)
	methodRepo := pg.NewPaymentMethodRepo(pool)
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPostgresPlanRepo(pool), redisClient, cfg.Redis.TTL, logger)
	productRepo := pg.NewProductRepoCacheDecorator(pg.NewPostgresProductRepo(pool), redisClient, cfg.Redis.TTL, logger)
	subRepo := pg.NewSubscriptionRepo(pool)
	payRepo := pg.NewPaymentRepo(pool)
	receiptRepo := pg.NewReceiptRepo(pool)
	creditRepo := pg.NewCreditBalanceRepo(pool)
	activityRepo := pg.NewActivityLogRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	switch cfg.Payment.Provider {
	case "stripe":
		gateway, err = payAdapters.NewStripeGateway(cfg.Payment.Stripe.SecretKey, logger, payAdapters.StripeOptions{
			HTTPClient: &http.Client{Timeout: cfg.Payment.GatewayTimeout},
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("stripe gateway")
		}
	default:
		gateway = payAdapters.NewNoopPaymentGateway()
	}
	logger.Info().Str("provider", gateway.Name()).Msg("payment gateway ready")

	// ---- Use cases ----
	ledger := usecase.NewCreditLedger(creditRepo, logger)
	recorder := usecase.NewActivityRecorder(activityRepo, logger)
	receipts := usecase.NewReceiptGenerator(gateway, logger)

	paymentUC := usecase.NewPaymentUseCase(usecase.PaymentDeps{
		Customers:      customerRepo,
		Methods:        methodRepo,
		Subscriptions:  subRepo,
		Plans:          planRepo,
		Products:       productRepo,
		Payments:       payRepo,
		Receipts:       receiptRepo,
		Ledger:         ledger,
		Activity:       recorder,
		Receipt:        receipts,
		Gateway:        gateway,
		Locker:         red.NewLocker(redisClient),
		LockTTL:        cfg.Billing.LockTTL,
		PersistTimeout: cfg.Billing.PersistTimeout,
		TM:             tm,
	}, logger)
	receiptUC := usecase.NewReceiptUseCase(receiptRepo, logger)
	subUC := usecase.NewSubscriptionUseCase(subRepo, recorder, tm, logger)
	customerUC := usecase.NewCustomerUseCase(customerRepo, methodRepo, recorder, tm, logger)
	catalogUC := usecase.NewCatalogUseCase(planRepo, productRepo)
	statsUC := usecase.NewStatsUseCase(subRepo, payRepo, logger)

	// ---- Stats worker ----
	worker := sched.NewStatsWorker(cfg.Billing.StatsInterval, subUC, pool, logger)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("stats worker stopped")
		}
	}()

	// ---- HTTP ----
	srv := httpapi.NewServer(cfg.HTTP, httpapi.Deps{
		Payments:  paymentUC,
		Receipts:  receiptUC,
		Subs:      subUC,
		Customers: customerUC,
		Stats:     statsUC,
		Credits:   ledger,
		Catalog:   catalogUC,
		Activity:  recorder,
		Limiter:   red.NewRateLimiter(redisClient),
		Auth:      httpapi.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
	}, logger)
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	// ---- Graceful shutdown ----
	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-errc:
		if err != nil {
			logger.Error().Err(err).Msg("http server failed")
			exitCode = 1
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	logger.Info().Msg("bye")
	if exitCode != 0 {
		// deferred closes are skipped; the pool and redis are released by process exit
		os.Exit(exitCode)
	}
}
