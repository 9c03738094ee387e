package main

import (
	"context"
	"fmt"
	"log"

	"github.com/casanovathunder99-dot/my-app-backend/core"
)

func main() {
	cfg, err := core.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx := context.Background()

	logCloser, err := core.SetupLogging(cfg, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	db, err := core.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	redisClient, err := core.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer redisClient.Close()

	accountRepo := core.NewPgAccountRepository(db)
	videoRepo := core.NewPgVideoRepository(db)
	commentRepo := core.NewPgCommentRepository(db)

	hasher := core.NewBcryptHasher(cfg.BcryptCost)
	tokens := core.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	authService := core.NewAuthService(accountRepo, hasher, tokens)
	limiter := core.NewRedisRateLimiter(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow)

	router := core.NewRouter(cfg, authService, tokens, accountRepo, videoRepo, commentRepo, limiter)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("starting api server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
