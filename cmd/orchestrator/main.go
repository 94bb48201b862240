package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cassiomorais/order-saga/internal/bootstrap"
	"github.com/cassiomorais/order-saga/internal/infrastructure/kafka"
	"github.com/cassiomorais/order-saga/internal/orchestrator"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "orchestrator", "order_saga_orchestrator")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	cfg := app.Config

	definition, err := cfg.Saga.Definition()
	if err != nil {
		app.Logger.Fatal().Err(err).Msg("Invalid saga definition")
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.WriteTimeout, app.Logger)
	defer producer.Close()

	svc := orchestrator.NewService(definition, producer, orchestrator.Topics{
		NotifyEnding: cfg.Saga.Topics.NotifyEnding,
		DeadLetter:   cfg.Saga.Topics.DeadLetter,
	}, app.Logger, app.Metrics)

	groupID := cfg.Kafka.GroupID + "-orchestrator"

	// New sagas arrive on the start topic, participant results on the
	// orchestrator topic. Both feed the same routing service.
	startConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, groupID, cfg.Saga.Topics.Start, app.Logger)
	resultConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, groupID, cfg.Saga.Topics.Orchestrator, app.Logger)

	app.Logger.Info().
		Str("start_topic", cfg.Saga.Topics.Start).
		Str("result_topic", cfg.Saga.Topics.Orchestrator).
		Msg("Orchestrator started, listening for events...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return startConsumer.Run(gctx, svc.Handle)
	})
	g.Go(func() error {
		return resultConsumer.Run(gctx, svc.Handle)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return gctx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down orchestrator...")
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Orchestrator error")
	}
	app.Logger.Info().Msg("Orchestrator exited")
}
