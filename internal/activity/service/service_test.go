package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/stockroom/internal/activity/domain"
	"github.com/smallbiznis/stockroom/internal/activity/repository"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/migration"
	obscontext "github.com/smallbiznis/stockroom/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.Run(conn))
	return conn
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func newTestService(t *testing.T) (*Service, *clock.FakeClock) {
	fake := clock.NewFakeClock(time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    setupTestDB(t),
		Log:   zap.NewNop(),
		GenID: mustNode(t),
		Clock: fake,
		Repo:  repository.Provide(),
	}).(*Service)
	return svc, fake
}

func TestRecordCapturesActorAndMasksSecrets(t *testing.T) {
	svc, _ := newTestService(t)

	ctx := obscontext.WithActor(context.Background(), "manager", "Dana")
	ctx = obscontext.WithRequestID(ctx, "req-1")
	require.NoError(t, svc.Record(ctx, nil, domain.RecordRequest{
		Action:     domain.ActionPINChanged,
		TargetType: "setting",
		TargetID:   "manager_pin",
		Metadata:   map[string]any{"new_pin": "4321", "source": "api"},
	}))

	resp, err := svc.List(context.Background(), domain.ListActivityRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)

	entry := resp.Entries[0]
	assert.Equal(t, "manager", entry.ActorRole)
	assert.Equal(t, "Dana", entry.ActorName)
	assert.Equal(t, "req-1", entry.RequestID)
	assert.Equal(t, "****", entry.Metadata["new_pin"])
	assert.Equal(t, "api", entry.Metadata["source"])
	assert.Equal(t, time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC), entry.CreatedAt)
}

func TestRecordRequiresAction(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Record(context.Background(), nil, domain.RecordRequest{Action: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestListPagesNewestFirst(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Record(ctx, nil, domain.RecordRequest{
			Action:     domain.ActionMaterialAdded,
			TargetType: "material",
		}))
		fake.Advance(time.Minute)
	}

	first, err := svc.List(ctx, domain.ListActivityRequest{})
	require.NoError(t, err)
	require.Len(t, first.Entries, 5)
	assert.False(t, first.HasMore)
	assert.Equal(t, "system", first.Entries[0].ActorRole)

	req := domain.ListActivityRequest{}
	req.PageSize = 2
	p1, err := svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, p1.Entries, 2)
	require.True(t, p1.HasMore)
	assert.True(t, p1.Entries[0].ID > p1.Entries[1].ID)

	req.PageToken = p1.NextPageToken
	p2, err := svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, p2.Entries, 2)
	assert.True(t, p2.Entries[0].ID < p1.Entries[1].ID)

	req.PageToken = "not-a-token"
	_, err = svc.List(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}
