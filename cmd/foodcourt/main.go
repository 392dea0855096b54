package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ppum-cafe/foodcourt/internal/auth"
	"github.com/ppum-cafe/foodcourt/internal/cart"
	"github.com/ppum-cafe/foodcourt/internal/config"
	"github.com/ppum-cafe/foodcourt/internal/db"
	"github.com/ppum-cafe/foodcourt/internal/handler"
	"github.com/ppum-cafe/foodcourt/internal/kitchen"
	"github.com/ppum-cafe/foodcourt/internal/notification"
	"github.com/ppum-cafe/foodcourt/internal/order"
	"github.com/ppum-cafe/foodcourt/internal/stall"
	"github.com/ppum-cafe/foodcourt/internal/transport"
	"github.com/ppum-cafe/foodcourt/internal/user"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "foodcourt").Logger()

	log.Info().Msg("Food court service starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	postgres, err := db.New(cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer postgres.Close()

	if err := postgres.ApplyMigrations(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// The broker mirrors notifications; without it the service still
	// stores notification rows and serves them over HTTP.
	var publisher notification.EventPublisher
	amqpPublisher, err := notification.NewPublisher(cfg.RabbitMQ)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable, notification events disabled")
	} else {
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	userRepo := user.NewRepository(postgres.Pool)
	stallRepo := stall.NewRepository(postgres.Pool)
	orderRepo := order.NewRepository(postgres.Pool)
	notificationRepo := notification.NewRepository(postgres.Pool)

	userService := user.NewService(userRepo)
	stallService := stall.NewService(stallRepo)
	cartService := cart.NewService(cart.NewRedisStore(redisClient), stallRepo)
	notificationService := notification.NewService(notificationRepo, publisher)
	orderService := order.NewService(orderRepo, cartService, stallRepo, notificationService)

	ticker := kitchen.NewTicker(orderRepo, orderService, cfg.App.KitchenInterval)
	ticker.Start(context.Background())
	defer ticker.Stop()

	router := transport.NewRouter(transport.Handlers{
		Auth:         handler.NewAuthHandler(userService, tokenManager),
		User:         handler.NewUserHandler(userService),
		Stall:        handler.NewStallHandler(stallService),
		Cart:         handler.NewCartHandler(cartService),
		Order:        handler.NewOrderHandler(orderService),
		StallOwner:   handler.NewStallOwnerHandler(userService, stallService, orderService),
		Admin:        handler.NewAdminHandler(userService, stallService),
		Notification: handler.NewNotificationHandler(notificationService),
		TokenManager: tokenManager,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
