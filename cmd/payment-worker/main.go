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
	"github.com/cassiomorais/order-saga/internal/payment"
	"github.com/cassiomorais/order-saga/internal/repository/postgres"
	"github.com/cassiomorais/order-saga/internal/saga"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "payment-worker", "order_saga_payment")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	cfg := app.Config

	minAmount, err := saga.ParseAmount(cfg.Saga.MinPaymentAmount)
	if err != nil {
		app.Logger.Fatal().Err(err).Msg("Invalid minimum payment amount")
	}

	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.WriteTimeout, app.Logger)
	defer producer.Close()

	svc := payment.NewService(paymentRepo, txManager, cfg.Saga.Sources.Payment, minAmount, app.Logger)

	handler := participant.NewHandler(svc, producer, participant.Config{
		ReplyTopic:                cfg.Saga.Topics.Orchestrator,
		ForwardFailurePrefix:      "Fail to realize payment",
		CompensationFailurePrefix: "Rollback not executed for payment",
	}, app.Logger, app.Metrics)

	groupID := cfg.Kafka.GroupID + "-payment-worker"
	worker := &participant.Worker{
		Handler:      handler,
		Forward:      kafka.NewConsumer(cfg.Kafka.Brokers, groupID, cfg.Saga.Topics.PaymentSuccess, app.Logger),
		Compensation: kafka.NewConsumer(cfg.Kafka.Brokers, groupID, cfg.Saga.Topics.PaymentFail, app.Logger),
		Redis:        app.Redis,
		LockTTL:      cfg.Worker.LockTTL,
		Logger:       app.Logger,
		Metrics:      app.Metrics,
	}

	app.Logger.Info().
		Str("forward_topic", cfg.Saga.Topics.PaymentSuccess).
		Str("compensation_topic", cfg.Saga.Topics.PaymentFail).
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
