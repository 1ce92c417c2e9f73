package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	activitydomain "github.com/smallbiznis/stockroom/internal/activity/domain"
	activityrepo "github.com/smallbiznis/stockroom/internal/activity/repository"
	activityservice "github.com/smallbiznis/stockroom/internal/activity/service"
	"github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/auth/password"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/migration"
	settingdomain "github.com/smallbiznis/stockroom/internal/setting/domain"
	settingrepo "github.com/smallbiznis/stockroom/internal/setting/repository"
	settingservice "github.com/smallbiznis/stockroom/internal/setting/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc      domain.Service
	settings settingdomain.Service
	activity activitydomain.Service
	clock    *clock.FakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.Run(conn))

	fake := clock.NewFakeClock(time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	settings := settingservice.New(settingservice.Params{DB: conn, Log: zap.NewNop(), Repo: settingrepo.Provide()})
	activity := activityservice.New(activityservice.Params{
		DB: conn, Log: zap.NewNop(), GenID: node, Clock: fake, Repo: activityrepo.Provide(),
	})
	svc, err := New(Params{
		DB:  conn,
		Log: zap.NewNop(),
		Cfg: config.Config{
			AppName:           "stockroom",
			ManagerDefaultPIN: "1234",
			SessionSecret:     "test-secret",
			SessionTTLHours:   2,
		},
		Clock:    fake,
		Settings: settings,
		Activity: activity,
	})
	require.NoError(t, err)

	return fixture{svc: svc, settings: settings, activity: activity, clock: fake}
}

func TestUnlockWithDefaultPINWhenUnset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.Unlock(ctx, domain.UnlockRequest{PIN: "1234", Name: "  Dana "})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, sess.Role)
	assert.Equal(t, "Dana", sess.Name)
	assert.Equal(t, f.clock.Now().Add(2*time.Hour), sess.ExpiresAt)

	principal, err := f.svc.ParseSession(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.Principal{Role: domain.RoleManager, Name: "Dana"}, principal)
}

func TestDefaultPINRejectedOnceSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ChangePIN(ctx, domain.ChangePINRequest{PIN: "9876", Confirm: "9876"}))

	_, err := f.svc.Unlock(ctx, domain.UnlockRequest{PIN: "1234"})
	assert.ErrorIs(t, err, domain.ErrInvalidPIN)

	_, err = f.svc.Unlock(ctx, domain.UnlockRequest{PIN: "9876"})
	require.NoError(t, err)

	stored, err := f.settings.Get(ctx, settingdomain.KeyManagerPIN, "")
	require.NoError(t, err)
	assert.True(t, password.IsEncoded(stored))
	assert.NotContains(t, stored, "9876")
}

func TestEmptyStoredPINDisablesDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.settings.Set(ctx, nil, settingdomain.KeyManagerPIN, ""))

	_, err := f.svc.Unlock(ctx, domain.UnlockRequest{PIN: "1234"})
	assert.ErrorIs(t, err, domain.ErrInvalidPIN)

	require.NoError(t, f.svc.ChangePIN(ctx, domain.ChangePINRequest{PIN: "4321", Confirm: "4321"}))
	_, err = f.svc.Unlock(ctx, domain.UnlockRequest{PIN: "4321"})
	assert.NoError(t, err)
}

func TestLegacyPlaintextPINIsRehashed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.settings.Set(ctx, nil, settingdomain.KeyManagerPIN, "5555"))

	_, err := f.svc.Unlock(ctx, domain.UnlockRequest{PIN: "1234"})
	assert.ErrorIs(t, err, domain.ErrInvalidPIN)

	_, err = f.svc.Unlock(ctx, domain.UnlockRequest{PIN: "5555"})
	require.NoError(t, err)

	stored, err := f.settings.Get(ctx, settingdomain.KeyManagerPIN, "")
	require.NoError(t, err)
	assert.True(t, password.IsEncoded(stored))
	assert.True(t, password.Verify("5555", stored))

	_, err = f.svc.Unlock(ctx, domain.UnlockRequest{PIN: "5555"})
	assert.NoError(t, err)
}

func TestFailedUnlockIsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Unlock(ctx, domain.UnlockRequest{PIN: "0000"})
	assert.ErrorIs(t, err, domain.ErrInvalidPIN)
	_, err = f.svc.Unlock(ctx, domain.UnlockRequest{PIN: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidPIN)

	res, err := f.activity.List(ctx, activitydomain.ListActivityRequest{Action: activitydomain.ActionUnlockFailed})
	require.NoError(t, err)
	assert.Len(t, res.Entries, 2)
}

func TestChangePINValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.ChangePIN(ctx, domain.ChangePINRequest{PIN: " ", Confirm: " "}), domain.ErrPINRequired)
	assert.ErrorIs(t, f.svc.ChangePIN(ctx, domain.ChangePINRequest{PIN: "1111", Confirm: "2222"}), domain.ErrPINMismatch)

	_, found, err := f.settings.Lookup(ctx, settingdomain.KeyManagerPIN)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, f.svc.ChangePIN(ctx, domain.ChangePINRequest{PIN: "1111", Confirm: "1111"}))
	res, err := f.activity.List(ctx, activitydomain.ListActivityRequest{Action: activitydomain.ActionPINChanged})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, settingdomain.KeyManagerPIN, res.Entries[0].TargetID)
}

func TestParseSessionRejectsExpiredAndForeignTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.Unlock(ctx, domain.UnlockRequest{PIN: "1234"})
	require.NoError(t, err)

	_, err = f.svc.ParseSession(ctx, sess.Token+"x")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
	_, err = f.svc.ParseSession(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	f.clock.Advance(3 * time.Hour)
	_, err = f.svc.ParseSession(ctx, sess.Token)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestUnlockRejectsLongName(t *testing.T) {
	f := newFixture(t)

	long := make([]rune, maxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := f.svc.Unlock(context.Background(), domain.UnlockRequest{PIN: "1234", Name: string(long)})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}
