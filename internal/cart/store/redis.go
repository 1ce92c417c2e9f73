package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/stockroom/internal/cart/domain"
)

const (
	keyPrefix = "stockroom:cart:"
	lockTTL   = 30 * time.Second
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisStore keeps carts as JSON values whose TTL is refreshed on every write.
type RedisStore struct {
	client  *redis.Client
	release *redis.Script
	ttl     time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:  client,
		release: redis.NewScript(lockReleaseScript),
		ttl:     ttl,
	}
}

func (s *RedisStore) Load(ctx context.Context, id string) (domain.Cart, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{ID: id}, nil
	}
	if err != nil {
		return domain.Cart{}, err
	}

	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return domain.Cart{}, err
	}
	cart.ID = id
	return cart, nil
}

func (s *RedisStore) Save(ctx context.Context, cart domain.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+cart.ID, raw, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyPrefix+id).Err()
}

func (s *RedisStore) Lock(ctx context.Context, id string) (func(), error) {
	key := keyPrefix + id + ":lock"
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, key, token, lockTTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrCartBusy
	}
	return func() {
		_ = s.release.Run(context.WithoutCancel(ctx), s.client, []string{key}, token).Err()
	}, nil
}
