package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/stockroom/internal/migration"
	"github.com/smallbiznis/stockroom/internal/setting/domain"
	"github.com/smallbiznis/stockroom/internal/setting/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.Run(conn))

	return New(Params{DB: conn, Log: zap.NewNop(), Repo: repository.Provide()})
}

func TestGetFallsBackToDefault(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	value, err := svc.Get(ctx, "theme", "light")
	require.NoError(t, err)
	assert.Equal(t, "light", value)

	_, ok, err := svc.Lookup(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetUpserts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, nil, "theme", "dark"))
	require.NoError(t, svc.Set(ctx, nil, "theme", "contrast"))

	value, err := svc.Get(ctx, "theme", "light")
	require.NoError(t, err)
	assert.Equal(t, "contrast", value)

	// an explicitly empty value is still a stored value
	require.NoError(t, svc.Set(ctx, nil, "theme", ""))
	value, ok, err := svc.Lookup(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, value)
}

func TestBlankKeyRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Set(ctx, nil, "  ", "x"), domain.ErrInvalidKey)
	_, err := svc.Get(ctx, "", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}
