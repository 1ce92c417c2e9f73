package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/comment/domain"
	"github.com/smallbiznis/stockroom/internal/comment/repository"
	"github.com/smallbiznis/stockroom/internal/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type flags struct {
	NewCommentForManager   bool
	NewCommentForRequestor bool
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.Run(conn))
	return conn
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	conn := setupTestDB(t)
	require.NoError(t, conn.Exec(
		`INSERT INTO requests (id, batch_id, department, item_type, free_text_item) VALUES (1, 'b1', 'IV Room', 'freetext', 'gloves')`,
	).Error)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	}).(*Service)
	return svc, conn
}

func readFlags(t *testing.T, conn *gorm.DB) flags {
	t.Helper()
	var f flags
	require.NoError(t, conn.Raw(`SELECT new_comment_for_manager, new_comment_for_requestor FROM requests WHERE id = 1`).Scan(&f).Error)
	return f
}

func TestPostFlagsOppositeSide(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	c, err := svc.Post(ctx, domain.PostCommentRequest{RequestID: 1, Role: domain.RoleRequestor, Text: "  any update? ", AuthorName: "Sam"})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Equal(t, "any update?", c.Text)
	assert.Equal(t, flags{NewCommentForManager: true}, readFlags(t, conn))

	_, err = svc.Post(ctx, domain.PostCommentRequest{RequestID: 1, Role: domain.RoleManager, Text: "ordered"})
	require.NoError(t, err)
	assert.Equal(t, flags{NewCommentForManager: true, NewCommentForRequestor: true}, readFlags(t, conn))
}

func TestManagerReplyMarksOwnSideRead(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	_, err := svc.Post(ctx, domain.PostCommentRequest{RequestID: 1, Role: domain.RoleRequestor, Text: "urgent"})
	require.NoError(t, err)
	_, err = svc.Post(ctx, domain.PostCommentRequest{RequestID: 1, Role: domain.RoleManager, Text: "on it", MarkOwnRead: true})
	require.NoError(t, err)
	assert.Equal(t, flags{NewCommentForRequestor: true}, readFlags(t, conn))
}

func TestMarkReadClearsOnlyThatRole(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	require.NoError(t, conn.Exec(`UPDATE requests SET new_comment_for_manager = 1, new_comment_for_requestor = 1 WHERE id = 1`).Error)

	require.NoError(t, svc.MarkRead(ctx, 1, domain.RoleRequestor))
	assert.Equal(t, flags{NewCommentForManager: true}, readFlags(t, conn))

	require.NoError(t, svc.MarkRead(ctx, 1, domain.RoleManager))
	assert.Equal(t, flags{}, readFlags(t, conn))

	assert.ErrorIs(t, svc.MarkRead(ctx, 99, domain.RoleManager), domain.ErrNotFound)
	assert.ErrorIs(t, svc.MarkRead(ctx, 1, domain.Role("auditor")), domain.ErrInvalidRole)
}

func TestPostValidation(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	_, err := svc.Post(ctx, domain.PostCommentRequest{RequestID: 1, Role: domain.RoleRequestor, Text: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidText)

	_, err = svc.Post(ctx, domain.PostCommentRequest{RequestID: 42, Role: domain.RoleRequestor, Text: "hello"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Post(ctx, domain.PostCommentRequest{RequestID: 1, Role: "", Text: "hello"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	assert.Equal(t, flags{}, readFlags(t, conn))
}

func TestListReturnsThreadInOrder(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	for _, text := range []string{"first", "second"} {
		_, err := svc.Post(ctx, domain.PostCommentRequest{RequestID: 1, Role: domain.RoleRequestor, Text: text, AuthorName: "Sam"})
		require.NoError(t, err)
	}

	comments, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "Sam", comments[0].AuthorName)
	assert.Equal(t, domain.RoleRequestor, comments[0].AuthorRole)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), comments[0].CreatedAt)

	// comments go with their request
	require.NoError(t, conn.Exec(`DELETE FROM requests WHERE id = 1`).Error)
	var n int64
	require.NoError(t, conn.Table("comments").Count(&n).Error)
	assert.Zero(t, n)
}
