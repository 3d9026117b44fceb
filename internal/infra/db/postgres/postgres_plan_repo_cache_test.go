//go:build !integration

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
	red "github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/redis"
)

func TestPlanRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()
	plan := &model.Plan{ID: "plan-123", Name: "Pro", Period: model.PeriodMonthly, PriceCents: 9900, Currency: "DKK", Active: true}
	planJSON, _ := json.Marshal(plan)

	t.Run("FindByID should return from cache on hit", func(t *testing.T) {
		// Arrange
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return string(planJSON), nil // Simulate cache hit
			},
		}
		innerRepoCalled := false
		mockInnerRepo := &mockInnerPlanRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
				innerRepoCalled = true // This should not be called
				return nil, nil
			},
		}

		decorator := NewPlanRepoCacheDecorator(mockInnerRepo, mockRedis, time.Minute, newTestLogger())

		// Act
		result, err := decorator.FindByID(ctx, nil, "plan-123")

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if innerRepoCalled {
			t.Error("inner repository should not be called on a cache hit")
		}
		if result == nil || result.ID != "plan-123" || result.Period != model.PeriodMonthly {
			t.Error("did not return the correct plan from cache")
		}
	})

	t.Run("FindByID should fall through to the database when redis fails", func(t *testing.T) {
		// Arrange
		var stored string
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return "", errors.New("connection refused")
			},
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				stored = key
				return nil
			},
		}
		mockInnerRepo := &mockInnerPlanRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
				return plan, nil
			},
		}
		decorator := NewPlanRepoCacheDecorator(mockInnerRepo, mockRedis, time.Minute, newTestLogger())

		// Act
		result, err := decorator.FindByID(ctx, nil, "plan-123")

		// Assert
		if err != nil || result.ID != plan.ID {
			t.Fatalf("expected plan from database, got %v (%v)", result, err)
		}
		if stored != "plan:plan-123" {
			t.Errorf("expected the plan to be written back, got key %q", stored)
		}
	})

	t.Run("FindByID should not cache a miss", func(t *testing.T) {
		setCalled := false
		mockRedis := &mockRedisClient{
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				setCalled = true
				return nil
			},
		}
		mockInnerRepo := &mockInnerPlanRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
				return nil, domain.ErrNotFound
			},
		}
		decorator := NewPlanRepoCacheDecorator(mockInnerRepo, mockRedis, time.Minute, newTestLogger())

		if _, err := decorator.FindByID(ctx, nil, "nope"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if setCalled {
			t.Error("a miss must not be cached")
		}
	})

	t.Run("Save should invalidate the cache", func(t *testing.T) {
		// Arrange
		var deletedKeys []string
		mockRedis := &mockRedisClient{
			DelFunc: func(ctx context.Context, keys ...string) error {
				deletedKeys = append(deletedKeys, keys...)
				return nil
			},
		}
		mockInnerRepo := &mockInnerPlanRepo{
			SaveFunc: func(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
				return nil
			},
		}

		decorator := NewPlanRepoCacheDecorator(mockInnerRepo, mockRedis, time.Minute, newTestLogger())

		// Act
		err := decorator.Save(ctx, nil, plan)

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(deletedKeys) != 2 {
			t.Fatalf("expected 2 keys to be deleted, but got %d", len(deletedKeys))
		}
	})
}

func TestProductRepoCacheDecorator_Miniredis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cli := red.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cli.Close() })

	credits := 500
	inner := &mockInnerProductRepo{products: map[string]*model.Product{
		"sms-500": {ID: "sms-500", Type: model.ProductTypeSMS, Name: "500 SMS", PriceCents: 5000, Currency: "DKK", SMSCount: &credits},
	}}
	decorator := NewProductRepoCacheDecorator(inner, cli, time.Minute, newTestLogger())

	t.Run("should read through once and then serve from redis", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			p, err := decorator.FindByID(ctx, nil, "sms-500")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !p.GrantsCredits() || *p.SMSCount != 500 {
				t.Fatalf("expected the credit bundle, got %+v", p)
			}
		}
		if inner.reads != 1 {
			t.Errorf("expected 1 database read, got %d", inner.reads)
		}
		if !mr.Exists("product:sms-500") {
			t.Error("expected product to be cached")
		}
	})

	t.Run("should expire with the ttl", func(t *testing.T) {
		mr.FastForward(2 * time.Minute)
		if mr.Exists("product:sms-500") {
			t.Error("expected cached product to expire")
		}
	})

	t.Run("should invalidate on save", func(t *testing.T) {
		if _, err := decorator.ListAll(ctx, nil); err != nil {
			t.Fatal(err)
		}
		if !mr.Exists("products:all") {
			t.Fatal("expected product list to be cached")
		}
		if err := decorator.Save(ctx, nil, &model.Product{ID: "addon-1", Type: model.ProductTypeSubscription, Name: "Add-on", PriceCents: 100, Currency: "DKK"}); err != nil {
			t.Fatal(err)
		}
		if mr.Exists("products:all") {
			t.Error("expected product list to be invalidated")
		}
		list, _ := decorator.ListAll(ctx, nil)
		if len(list) != 2 {
			t.Errorf("expected 2 products after save, got %d", len(list))
		}
	})
}
