package controller

import (
	"time"

	"github.com/cassiomorais/order-saga/internal/infrastructure/config"
	"github.com/cassiomorais/order-saga/internal/infrastructure/observability"
	customMW "github.com/cassiomorais/order-saga/internal/middleware"
	"github.com/cassiomorais/order-saga/internal/order"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Pool         *pgxpool.Pool
	RedisClient  *redis.Client
	OrderService *order.Service
	Metrics      *observability.Metrics
	CORSConfig   config.CORSConfig
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	orderH := NewOrderController(deps.OrderService)
	eventH := NewEventController(deps.OrderService)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/orders", orderH.CreateOrder)

		r.Get("/events", eventH.ListEvents)
		r.Get("/events/filter", eventH.FindByFilters)
	})

	return r
}
