package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cassiomorais/order-saga/internal/bootstrap"
	"github.com/cassiomorais/order-saga/internal/controller"
	"github.com/cassiomorais/order-saga/internal/infrastructure/kafka"
	"github.com/cassiomorais/order-saga/internal/order"
	"github.com/cassiomorais/order-saga/internal/repository/postgres"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "order-api", "order_saga")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	cfg := app.Config

	// --- Repositories ---
	orderRepo := postgres.NewOrderRepository(app.Pool)
	eventRepo := postgres.NewEventRepository(app.Pool)

	// --- Bus ---
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.WriteTimeout, app.Logger)
	defer producer.Close()

	// --- Services ---
	orderService := order.NewService(
		orderRepo, eventRepo, producer,
		cfg.Saga.Topics.Start, cfg.Saga.Sources.Order,
		app.Logger,
	)

	// --- Router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:         app.Pool,
		RedisClient:  app.Redis,
		OrderService: orderService,
		Metrics:      app.Metrics,
		CORSConfig:   cfg.Server.CORS,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// The terminal envelopes flow back over the bus; this consumer persists
	// them so the audit endpoints see finished sagas.
	endingConsumer := kafka.NewConsumer(
		cfg.Kafka.Brokers, cfg.Kafka.GroupID+"-order-api",
		cfg.Saga.Topics.NotifyEnding, app.Logger,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return endingConsumer.Run(gctx, orderService.NotifyEnding)
	})

	g.Go(func() error {
		select {
		case <-gctx.Done():
			return gctx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down server...")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.Logger.Error().Err(err).Msg("Server forced to shutdown")
			}
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Server error")
	}
	app.Logger.Info().Msg("Server exited")
}
