package cart

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/stockroom/internal/cart/domain"
	"github.com/smallbiznis/stockroom/internal/cart/service"
	"github.com/smallbiznis/stockroom/internal/cart/store"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultTTL = 4 * time.Hour

var Module = fx.Module("cart.service",
	fx.Provide(provideStore),
	fx.Provide(service.New),
)

// provideStore uses Redis when REDIS_ADDR is set so carts survive restarts
// and are shared across replicas; otherwise carts live in memory.
func provideStore(lc fx.Lifecycle, cfg config.Config, c clock.Clock, log *zap.Logger) (domain.Store, error) {
	ttl := time.Duration(cfg.CartTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = defaultTTL
	}
	log = log.Named("cart.store")

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				if err := client.Ping(pingCtx).Err(); err != nil {
					return err
				}
				log.Info("cart store ready", zap.String("backend", "redis"), zap.String("addr", cfg.RedisAddr))
				return nil
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return store.NewRedisStore(client, ttl), nil
	}

	mem := store.NewMemoryStore(c, ttl)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			mem.Start()
			log.Info("cart store ready", zap.String("backend", "memory"), zap.Duration("ttl", ttl))
			return nil
		},
		OnStop: func(context.Context) error {
			mem.Stop()
			return nil
		},
	})
	return mem, nil
}
