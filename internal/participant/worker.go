package participant

import (
	"context"
	"fmt"
	"time"

	"github.com/cassiomorais/order-saga/internal/infrastructure/kafka"
	"github.com/cassiomorais/order-saga/internal/infrastructure/observability"
	infraRedis "github.com/cassiomorais/order-saga/internal/infrastructure/redis"
	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Worker runs one participant: a consumer on its forward topic and one on its
// compensation topic, both feeding the same Handler. Each message is
// processed under a per-transaction Redis lock so a consumer-group rebalance
// cannot hand the same uncommitted message to two instances at once.
type Worker struct {
	Handler      *Handler
	Forward      *kafka.Consumer
	Compensation *kafka.Consumer
	Redis        *redis.Client
	LockTTL      time.Duration
	Logger       zerolog.Logger
	Metrics      *observability.Metrics
}

// Run blocks until ctx is cancelled or a consumer fails.
func (w *Worker) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.Forward.Run(gctx, w.locked(w.Forward.Topic(), w.Handler.HandleForward))
	})
	g.Go(func() error {
		return w.Compensation.Run(gctx, w.locked(w.Compensation.Topic(), w.Handler.HandleCompensation))
	})

	return g.Wait()
}

func (w *Worker) locked(topic string, fn kafka.EventHandler) kafka.EventHandler {
	return func(ctx context.Context, ev *saga.Event) error {
		start := time.Now()

		lock := infraRedis.NewTransactionLock(w.Redis, ev.TransactionID, w.LockTTL)
		acquired, err := lock.Acquire(ctx)
		if err != nil {
			return fmt.Errorf("acquire lock for %s: %w", ev.TransactionID, err)
		}
		if !acquired {
			// Another instance holds the transaction; leave the offset
			// uncommitted so the message comes back.
			return fmt.Errorf("transaction %s is locked by another instance", ev.TransactionID)
		}
		defer lock.Release(ctx)

		err = fn(ctx, ev)

		status := "success"
		if err != nil {
			status = "error"
		}
		w.Metrics.WorkerMessagesProcessed.WithLabelValues(topic, status).Inc()
		w.Metrics.WorkerProcessingDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())
		return err
	}
}
