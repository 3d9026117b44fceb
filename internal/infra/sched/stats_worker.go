package sched

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/metrics"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/usecase"
)

// PoolStatter is satisfied by *pgxpool.Pool.
type PoolStatter interface {
	Stat() *pgxpool.Stat
}

// StatsWorker periodically publishes subscription and pool gauges.
type StatsWorker struct {
	interval time.Duration
	subUC    usecase.SubscriptionUseCase
	pool     PoolStatter
	now      func() time.Time
	log      *zerolog.Logger
}

// NewStatsWorker builds the worker; pool may be nil.
func NewStatsWorker(interval time.Duration, subUC usecase.SubscriptionUseCase, pool PoolStatter, logger *zerolog.Logger) *StatsWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	l := logger.With().Str("component", "StatsWorker").Logger()
	return &StatsWorker{interval: interval, subUC: subUC, pool: pool, now: time.Now, log: &l}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stats worker")
			return ctx.Err()
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one collection pass. Errors are logged, never returned.
func (w *StatsWorker) Sweep(ctx context.Context) {
	counts, err := w.subUC.CountByStatus(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("count subscriptions failed")
	} else {
		metrics.SetSubscriptionsTotal(counts)
	}

	due, err := w.subUC.DueForBilling(ctx, w.now())
	if err != nil {
		w.log.Error().Err(err).Msg("list due subscriptions failed")
	} else {
		metrics.SetSubscriptionsDue(len(due))
		if len(due) > 0 {
			w.log.Info().Int("count", len(due)).Msg("subscriptions due for billing")
		}
	}

	if w.pool != nil {
		metrics.ObservePool(w.pool.Stat())
	}
}
