package middleware

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/redis/go-redis/v9"

	"github.com/lexforge/lexforge/internal/pkg/env"
)

// RateLimiter limits API requests per client IP. Counters live in Redis
// database 1 when client answers, so several instances share them; otherwise
// each instance counts in memory.
func RateLimiter(client *redis.Client) fiber.Handler {
	cfg := limiter.Config{
		Max:        env.GetEnvInt("RATE_LIMIT_MAX", 60),
		Expiration: time.Duration(env.GetEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "too many requests, try again later",
			})
		},
	}

	if storage := limiterStorage(client); storage != nil {
		cfg.Storage = storage
	}
	return limiter.New(cfg)
}

func limiterStorage(client *redis.Client) fiber.Storage {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnf("[Middleware] rate limiter falls back to memory: %v", err)
		return nil
	}

	opts := client.Options()
	host := "localhost"
	port := 6379
	if h, p, err := net.SplitHostPort(opts.Addr); err == nil {
		host = h
		if parsed, e := strconv.Atoi(p); e == nil {
			port = parsed
		}
	} else if opts.Addr != "" {
		host = opts.Addr
	}

	return redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Username: opts.Username,
		Password: opts.Password,
		Database: 1,
		Reset:    false,
	})
}
