//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/usecase"
)

func newSubscriptionUC(f *fixture) usecase.SubscriptionUseCase {
	logger := newTestLogger()
	return usecase.NewSubscriptionUseCase(f.subs, usecase.NewActivityRecorder(f.logs, logger), f.tm, logger)
}

func TestSubscriptionUseCase_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("should cancel and record the activity", func(t *testing.T) {
		// --- Arrange ---
		f := newFixture()
		uc := newSubscriptionUC(f)

		// --- Act ---
		sub, err := uc.Cancel(ctx, custID, subID, ptr("sess-9"))

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if sub.Status != model.SubscriptionStatusCanceled || sub.EndDate == nil {
			t.Errorf("expected canceled subscription with end date, got %+v", sub)
		}
		if f.store.subs[subID].Status != model.SubscriptionStatusCanceled {
			t.Error("expected the canceled status to be stored")
		}
		logs := f.store.logs
		if len(logs) != 1 || logs[0].Type != model.ActivitySubscriptionCancelled || *logs[0].SessionID != "sess-9" {
			t.Errorf("unexpected activity %+v", logs)
		}
	})

	t.Run("should refuse to cancel twice", func(t *testing.T) {
		f := newFixture()
		uc := newSubscriptionUC(f)
		if _, err := uc.Cancel(ctx, custID, subID, nil); err != nil {
			t.Fatal(err)
		}

		_, err := uc.Cancel(ctx, custID, subID, nil)
		if !errors.Is(err, domain.ErrSubscriptionNotRenewable) {
			t.Errorf("expected ErrSubscriptionNotRenewable, got %v", err)
		}
		if len(f.store.logs) != 1 {
			t.Errorf("expected one activity entry, got %d", len(f.store.logs))
		}
	})

	t.Run("should hide subscriptions of other customers", func(t *testing.T) {
		f := newFixture()
		uc := newSubscriptionUC(f)

		if _, err := uc.Cancel(ctx, "cust-2", subID, nil); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if f.store.subs[subID].Status != model.SubscriptionStatusActive {
			t.Error("subscription must stay active")
		}
	})
}

func TestSubscriptionUseCase_Reads(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := newSubscriptionUC(f)

	due, err := uc.DueForBilling(ctx, billingDay(2025, time.January, 15))
	if err != nil || len(due) != 1 || due[0].ID != subID {
		t.Errorf("expected sub-1 to be due, got %v (%v)", due, err)
	}
	due, _ = uc.DueForBilling(ctx, billingDay(2025, time.January, 14))
	if len(due) != 0 {
		t.Errorf("expected nothing due the day before, got %d", len(due))
	}

	active, err := uc.ActiveForCustomer(ctx, custID)
	if err != nil || active.ID != subID {
		t.Errorf("expected active sub-1, got %v (%v)", active, err)
	}
	counts, _ := uc.CountByStatus(ctx)
	if counts[model.SubscriptionStatusActive] != 1 {
		t.Errorf("expected 1 active, got %v", counts)
	}
	if _, err := uc.Get(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
