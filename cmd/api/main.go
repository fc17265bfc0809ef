package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	_ "github.com/samueldev/signature-api/docs" // Swagger docs (generated)
	"github.com/samueldev/signature-api/internal/auth"
	"github.com/samueldev/signature-api/internal/config"
	"github.com/samueldev/signature-api/internal/database"
	"github.com/samueldev/signature-api/internal/email"
	httpServer "github.com/samueldev/signature-api/internal/http"
	"github.com/samueldev/signature-api/internal/logging"
	"github.com/samueldev/signature-api/internal/ratelimit"
	"github.com/samueldev/signature-api/internal/user"
)

// @title           Signature API
// @version         1.0
// @description     Account and credential service for the signature generator: registration with email verification, bearer-token login, and user profile management.

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

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Repositories
	userRepo := user.NewRepository(db)

	// Rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// Token codec; the signing key is loaded once here and never read from
	// ambient state afterwards
	tokenService, err := auth.NewPasetoService(cfg.Auth.TokenKey)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Notifier
	notifier := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Server.BaseURL,
	)

	// Auth service and HTTP surface
	authService := auth.NewService(
		userRepo,
		tokenService,
		notifier,
		logger,
		cfg.Auth.TokenDuration,
	)
	authHandler := auth.NewHandler(authService, rateLimiter, logger)
	authMiddleware := auth.NewMiddleware(tokenService, userRepo)
	userHandler := user.NewHandler(userRepo, logger)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, userHandler, logger)

	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
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
		log.Printf("Received signal: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB opens the Postgres connection, applies pending migrations and
// returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := database.ApplyMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return database.NewBunDB(sqlDB), nil
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
