package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ostkru/trading/db"
	"github.com/ostkru/trading/db/migrations"
	"github.com/ostkru/trading/internal/config"
	"github.com/ostkru/trading/internal/handlers"
	"github.com/ostkru/trading/internal/ratelimit"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	dbConn, err := sqlx.Connect("postgres", cfg.PostgresConn)
	if err != nil {
		logger.Fatal("cannot connect to DB", zap.Error(err))
	}
	defer dbConn.Close()

	if err := migrations.Run(cfg.PostgresConn, cfg.MigrationsDir); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	counter := ratelimit.NewRedisCounter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = counter.Ping(ctx)
	cancel()
	if err != nil {
		logger.Fatal("cannot connect to Redis", zap.Error(err))
	}
	defer counter.Close()

	limiter := ratelimit.NewLimiter(counter, ratelimit.Budget{
		MinuteLimit: cfg.RateMinuteLimit,
		DayLimit:    cfg.RateDayLimit,
	})

	store := db.NewStorage(dbConn)
	h := handlers.NewHandler(store, logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(handlers.RequestLogger(logger))
	r.Use(h.RateLimitMiddleware(limiter))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		// регистрация открыта: без нее API ключ получить неоткуда
		r.Post("/user/registration", h.RegisterUserHandler)

		// публичные маршруты: токен не требуется, видны только public офферы
		r.Get("/offers/public", h.ListPublicOffersHandler)
		r.Post("/offers/public/filter", h.FilterPublicOffersHandler)

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			// продукты
			r.Post("/products", h.CreateProductHandler)
			r.Post("/products/batch", h.BatchCreateProductsHandler)
			r.Get("/products", h.ListProductsHandler)
			r.Get("/products/{id}", h.GetProductHandler)
			r.Put("/products/{id}", h.UpdateProductHandler)
			r.Delete("/products/{id}", h.DeleteProductHandler)

			// склады
			r.Post("/warehouses", h.CreateWarehouseHandler)
			r.Get("/warehouses", h.ListWarehousesHandler)
			r.Get("/warehouses/{id}", h.GetWarehouseHandler)
			r.Put("/warehouses/{id}", h.UpdateWarehouseHandler)
			r.Delete("/warehouses/{id}", h.DeleteWarehouseHandler)

			// офферы
			r.Post("/offers", h.CreateOfferHandler)
			r.Get("/offers", h.ListOffersHandler)
			r.Post("/offers/filter", h.FilterOffersHandler)
			r.Get("/offers/{id}", h.GetOfferHandler)
			r.Put("/offers/{id}", h.UpdateOfferHandler)
			r.Delete("/offers/{id}", h.DeleteOfferHandler)

			// заказы
			r.Post("/orders", h.CreateOrderHandler)
			r.Get("/orders", h.ListOrdersHandler)
			r.Get("/orders/{id}", h.GetOrderHandler)
			r.Put("/orders/{id}/status", h.UpdateOrderStatusHandler)
		})
	})

	logger.Info("starting server", zap.String("address", cfg.ServerAddress))
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
