package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cassiomorais/order-saga/internal/bootstrap"
	"github.com/cassiomorais/order-saga/internal/infrastructure/kafka"
	"github.com/cassiomorais/order-saga/internal/inventory"
	"github.com/cassiomorais/order-saga/internal/participant"
	"github.com/cassiomorais/order-saga/internal/repository/postgres"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "inventory-worker", "order_saga_inventory")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	cfg := app.Config

	inventoryRepo := postgres.NewInventoryRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.WriteTimeout, app.Logger)
	defer producer.Close()

	svc := inventory.NewService(inventoryRepo, txManager, cfg.Saga.Sources.Inventory, app.Logger)

	handler := participant.NewHandler(svc, producer, participant.Config{
		ReplyTopic:                cfg.Saga.Topics.Orchestrator,
		ForwardFailurePrefix:      "Fail to update inventory",
		CompensationFailurePrefix: "Rollback not executed for inventory",
	}, app.Logger, app.Metrics)

	groupID := cfg.Kafka.GroupID + "-inventory-worker"
	worker := &participant.Worker{
		Handler:      handler,
		Forward:      kafka.NewConsumer(cfg.Kafka.Brokers, groupID, cfg.Saga.Topics.InventorySuccess, app.Logger),
		Compensation: kafka.NewConsumer(cfg.Kafka.Brokers, groupID, cfg.Saga.Topics.InventoryFail, app.Logger),
		Redis:        app.Redis,
		LockTTL:      cfg.Worker.LockTTL,
		Logger:       app.Logger,
		Metrics:      app.Metrics,
	}

	app.Logger.Info().
		Str("forward_topic", cfg.Saga.Topics.InventorySuccess).
		Str("compensation_topic", cfg.Saga.Topics.InventoryFail).
		Msg("Worker started, listening for events...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		app.Logger.Info().Msg("Shutting down worker...")
		cancel()
	}()

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Worker error")
	}
	app.Logger.Info().Msg("Worker exited")
}
