package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/config"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
	pg "github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/db/postgres"
	httpapi "github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/http"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/logging"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/usecase"
)

// Seeds a catalog and one demo customer with a saved card and an active
// subscription, then prints a bearer token for that customer.
func main() {
	// ---- Config ----
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg.Database.MaxConns = 4
	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	tm := pg.NewTxManager(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	productRepo := pg.NewPostgresProductRepo(pool)
	catalog := usecase.NewCatalogUseCase(pg.NewPostgresPlanRepo(pool), productRepo)
	recorder := usecase.NewActivityRecorder(pg.NewActivityLogRepo(pool), logger)
	customers := usecase.NewCustomerUseCase(pg.NewCustomerRepo(pool), pg.NewPaymentMethodRepo(pool), recorder, tm, logger)

	// If plans already exist, leave the catalog alone
	plans, err := catalog.ListPlans(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) == 0 {
		for _, s := range []struct {
			ID     string
			Name   string
			Period model.Period
			Price  int64
		}{
			{"plan-basic-monthly", "Basic", model.PeriodMonthly, 9_900},
			{"plan-basic-yearly", "Basic (yearly)", model.PeriodYearly, 99_000},
			{"plan-pro-monthly", "Pro", model.PeriodMonthly, 19_900},
		} {
			p, err := model.NewPlan(s.ID, s.Name, s.Period, s.Price, cfg.Payment.DefaultCurrency)
			if err != nil {
				log.Fatalf("plan %q: %v", s.Name, err)
			}
			if err := catalog.CreatePlan(ctx, p); err != nil {
				log.Fatalf("create plan %q: %v", s.Name, err)
			}
			fmt.Printf("seeded plan: %s (id=%s, %s, %d minor units)\n", p.Name, p.ID, p.Period, p.PriceCents)
		}
		for _, n := range []int{100, 500} {
			count := n
			pr := &model.Product{
				ID:         fmt.Sprintf("sms-%d", n),
				Type:       model.ProductTypeSMS,
				Name:       fmt.Sprintf("%d SMS credits", n),
				PriceCents: int64(n) * 50,
				Currency:   cfg.Payment.DefaultCurrency,
				SMSCount:   &count,
			}
			if err := productRepo.Save(ctx, repository.NoTX, pr); err != nil {
				log.Fatalf("create product %q: %v", pr.Name, err)
			}
			fmt.Printf("seeded product: %s (id=%s)\n", pr.Name, pr.ID)
		}
	} else {
		fmt.Printf("%d plans already present. Catalog unchanged.\n", len(plans))
	}

	// ---- Demo customer ----
	c, err := customers.Register(ctx, "demo@example.test", "Demo ApS", "demo-org")
	if err != nil {
		log.Fatalf("register customer: %v", err)
	}
	methods, err := customers.ListPaymentMethods(ctx, c.ID)
	if err != nil {
		log.Fatalf("list payment methods: %v", err)
	}
	if len(methods) == 0 {
		pm, err := customers.AddPaymentMethod(ctx, &model.PaymentMethod{
			CustomerID:        c.ID,
			Type:              "card",
			Brand:             "Visa",
			Last4:             "4242",
			ExpMonth:          12,
			ExpYear:           time.Now().Year() + 3,
			ProcessorMethodID: "pm_card_visa",
			IsDefault:         true,
		}, nil)
		if err != nil {
			log.Fatalf("add payment method: %v", err)
		}
		fmt.Printf("seeded card: %s **** %s (id=%s)\n", pm.Brand, pm.Last4, pm.ID)
	}

	sub, err := subRepo.FindActiveByCustomer(ctx, repository.NoTX, c.ID)
	if err != nil {
		now := time.Now().UTC()
		next := now.AddDate(0, 1, 0)
		sub = &model.Subscription{
			ID:              uuid.NewString(),
			CustomerID:      c.ID,
			PlanID:          "plan-basic-monthly",
			Status:          model.SubscriptionStatusActive,
			StartDate:       now,
			NextBillingDate: &next,
			AnchorPolicy:    model.AnchorAnniversary,
		}
		if err := subRepo.Save(ctx, repository.NoTX, sub); err != nil {
			log.Fatalf("create subscription: %v", err)
		}
	}
	fmt.Printf("customer %s (external=%s) subscription=%s\n", c.ID, c.ExternalCustomerID, sub.ID)

	token, err := httpapi.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer).Mint(c.ID, uuid.NewString(), "", 24*time.Hour)
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}
	fmt.Printf("Authorization: Bearer %s\n", token)
	fmt.Println("✅ Seeding complete.")
}
