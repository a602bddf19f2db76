package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/hotelstock/hotel-stock-api/internal/auth"
	"github.com/hotelstock/hotel-stock-api/internal/config"
	"github.com/hotelstock/hotel-stock-api/internal/database"
	"github.com/hotelstock/hotel-stock-api/internal/email"
	"github.com/hotelstock/hotel-stock-api/internal/hotel"
	httpServer "github.com/hotelstock/hotel-stock-api/internal/http"
	"github.com/hotelstock/hotel-stock-api/internal/logging"
	"github.com/hotelstock/hotel-stock-api/internal/storage"
	"github.com/hotelstock/hotel-stock-api/internal/user"
)

// @title           Hotel Stock API
// @version         1.0
// @description     Multi-tenant hotel inventory backend with bearer-token authentication.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	photoStore, err := storage.NewS3PhotoStore(context.Background(), cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize photo store: %w", err)
	}

	// Repositories
	userRepo := user.NewRepository(db)
	tokenRepo := auth.NewTokenRepository(db)
	hotelRepo := hotel.NewRepository(db)

	// Auth core
	tokenIssuer := auth.NewIssuer(tokenRepo, userRepo, logger, cfg.Auth)
	resetBroker := auth.NewRedisResetBroker(redisClient, cfg.Auth.ResetTokenTTL, cfg.Auth.ResetResendInterval)
	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FrontendURL,
	)
	authService := auth.NewService(userRepo, tokenIssuer, resetBroker, emailService, logger)

	// Hotel service
	hotelService := hotel.NewService(hotelRepo, photoStore, logger)

	// HTTP layer
	authHandler := auth.NewHandler(authService, logger)
	hotelHandler := hotel.NewHandler(hotelService, logger)
	authMiddleware := auth.NewMiddleware(tokenIssuer)

	router := httpServer.NewRouter(cfg, authHandler, hotelHandler, authMiddleware, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
