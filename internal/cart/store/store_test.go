package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/stockroom/internal/cart/domain"
	"github.com/smallbiznis/stockroom/internal/clock"
	requestdomain "github.com/smallbiznis/stockroom/internal/request/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const cartID = "6f1c1d9e-3a52-4a63-9d0f-6a0d7f8e2b11"

func sampleCart() domain.Cart {
	return domain.Cart{
		ID:         cartID,
		Department: "IV Room",
		Items: []domain.Item{
			{ItemType: requestdomain.ItemTypeFreeText, FreeTextDescription: "syringe caps", Quantity: 2, IsSPR: true},
		},
	}
}

func TestMemoryStoreRoundTripAndExpiry(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC))
	s := NewMemoryStore(fake, time.Hour)
	ctx := context.Background()

	empty, err := s.Load(ctx, cartID)
	require.NoError(t, err)
	assert.Equal(t, cartID, empty.ID)
	assert.Empty(t, empty.Items)

	require.NoError(t, s.Save(ctx, sampleCart()))
	got, err := s.Load(ctx, cartID)
	require.NoError(t, err)
	assert.Equal(t, sampleCart(), got)

	// callers get a copy
	got.Items[0].Quantity = 99
	again, err := s.Load(ctx, cartID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Items[0].Quantity)

	fake.Advance(time.Hour)
	expired, err := s.Load(ctx, cartID)
	require.NoError(t, err)
	assert.Empty(t, expired.Items)
	assert.Zero(t, s.Len())
}

func TestMemoryStoreSweep(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC))
	s := NewMemoryStore(fake, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleCart()))
	fake.Advance(5 * time.Minute)
	other := sampleCart()
	other.ID = "0b6f5f62-0d53-4a7a-9a7e-2f8b0c1d2e3f"
	require.NoError(t, s.Save(ctx, other))

	fake.Advance(6 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, other.ID))
	assert.Zero(t, s.Len())
}

func TestMemoryStoreLock(t *testing.T) {
	s := NewMemoryStore(clock.SystemClock{}, time.Hour)
	ctx := context.Background()

	release, err := s.Lock(ctx, cartID)
	require.NoError(t, err)

	_, err = s.Lock(ctx, cartID)
	assert.ErrorIs(t, err, domain.ErrCartBusy)

	release()
	release()
	again, err := s.Lock(ctx, cartID)
	require.NoError(t, err)
	again()
}

func TestMemoryStoreStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewMemoryStore(clock.SystemClock{}, time.Hour)
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStoreRoundTripAndTTL(t *testing.T) {
	s, mr := newRedisStore(t, 30*time.Minute)
	ctx := context.Background()

	empty, err := s.Load(ctx, cartID)
	require.NoError(t, err)
	assert.Equal(t, domain.Cart{ID: cartID}, empty)

	require.NoError(t, s.Save(ctx, sampleCart()))
	assert.Equal(t, 30*time.Minute, mr.TTL(keyPrefix+cartID))

	got, err := s.Load(ctx, cartID)
	require.NoError(t, err)
	assert.Equal(t, sampleCart(), got)

	mr.FastForward(31 * time.Minute)
	expired, err := s.Load(ctx, cartID)
	require.NoError(t, err)
	assert.Empty(t, expired.Items)
}

func TestRedisStoreDelete(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleCart()))
	require.NoError(t, s.Delete(ctx, cartID))
	assert.False(t, mr.Exists(keyPrefix+cartID))
}

func TestRedisStoreLock(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	release, err := s.Lock(ctx, cartID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(keyPrefix+cartID+":lock"))

	_, err = s.Lock(ctx, cartID)
	assert.ErrorIs(t, err, domain.ErrCartBusy)

	release()
	assert.False(t, mr.Exists(keyPrefix+cartID+":lock"))
}
