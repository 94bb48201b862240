package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cassiomorais/order-saga/internal/bootstrap"
	"github.com/cassiomorais/order-saga/internal/infrastructure/kafka"
	"github.com/cassiomorais/order-saga/internal/participant"
	"github.com/cassiomorais/order-saga/internal/productvalidation"
	"github.com/cassiomorais/order-saga/internal/repository/postgres"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "product-validation-worker", "order_saga_product_validation")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	cfg := app.Config

	validationRepo := postgres.NewValidationRepository(app.Pool)
	productRepo := postgres.NewProductRepository(app.Pool)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.WriteTimeout, app.Logger)
	defer producer.Close()

	svc := productvalidation.NewService(validationRepo, productRepo, cfg.Saga.Sources.ProductValidation, app.Logger)

	handler := participant.NewHandler(svc, producer, participant.Config{
		ReplyTopic:                cfg.Saga.Topics.Orchestrator,
		ForwardFailurePrefix:      "Fail to validate products",
		CompensationFailurePrefix: "Rollback not executed for product validation",
	}, app.Logger, app.Metrics)

	groupID := cfg.Kafka.GroupID + "-product-validation-worker"
	worker := &participant.Worker{
		Handler:      handler,
		Forward:      kafka.NewConsumer(cfg.Kafka.Brokers, groupID, cfg.Saga.Topics.ProductValidationSuccess, app.Logger),
		Compensation: kafka.NewConsumer(cfg.Kafka.Brokers, groupID, cfg.Saga.Topics.ProductValidationFail, app.Logger),
		Redis:        app.Redis,
		LockTTL:      cfg.Worker.LockTTL,
		Logger:       app.Logger,
		Metrics:      app.Metrics,
	}

	app.Logger.Info().
		Str("forward_topic", cfg.Saga.Topics.ProductValidationSuccess).
		Str("compensation_topic", cfg.Saga.Topics.ProductValidationFail).
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
