package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lalith-99/threadstream/internal/api"
	"github.com/lalith-99/threadstream/internal/auth"
	"github.com/lalith-99/threadstream/internal/chat"
	"github.com/lalith-99/threadstream/internal/config"
	"github.com/lalith-99/threadstream/internal/db"
	"github.com/lalith-99/threadstream/internal/generator"
	"github.com/lalith-99/threadstream/internal/limiter"
	"github.com/lalith-99/threadstream/internal/migrate"
	"github.com/lalith-99/threadstream/internal/observ"
	"github.com/lalith-99/threadstream/internal/repository/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Startup has no request deadline; take as long as the backends need.
	ctx := context.Background()

	if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	database, err := db.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	pool := database.Pool()
	userRepo := postgres.NewUserStore(pool)
	threadRepo := postgres.NewThreadStore(pool)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	loginLimiter := limiter.NewRedisLimiter(redisClient, cfg.LoginMaxAttempts, cfg.LoginWindow)

	gen, err := generator.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return fmt.Errorf("create generator: %w", err)
	}
	defer gen.Close()

	chatSvc := chat.NewService(threadRepo, gen, cfg.GenerateTimeout, logger)

	verifier := auth.NewGoogleVerifier(cfg.GoogleClientID)
	authHandler := api.NewAuthHandler(userRepo, verifier, loginLimiter, cfg.JWTSecret, cfg.TokenTTL, logger)
	chatHandler := api.NewChatHandler(chatSvc, threadRepo, logger)

	router := api.NewRouter(authHandler, chatHandler, cfg.JWTSecret, database.Health)

	logger.Info("starting threadstream",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("model", cfg.GeminiModel),
	)

	return router.Run(":" + cfg.Port)
}
