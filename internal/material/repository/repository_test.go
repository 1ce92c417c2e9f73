package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/stockroom/internal/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestInsertReportsDuplicateCode(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()
	repo := Provide()

	inserted, err := repo.Insert(ctx, conn, "Saline 10ml", "200001")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Insert(ctx, conn, "Saline flush", "200001")
	require.NoError(t, err)
	assert.False(t, inserted)

	items, err := repo.ListActive(ctx, conn)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Saline 10ml", items[0].Description)
}

func TestInsertDuplicateKeepsTransactionUsable(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()
	repo := Provide()

	err := conn.Transaction(func(tx *gorm.DB) error {
		for _, code := range []string{"1", "1", "2"} {
			if _, err := repo.Insert(ctx, tx, "item "+code, code); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	items, err := repo.ListActive(ctx, conn)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestInsertSurfacesOtherErrors(t *testing.T) {
	conn := setupTestDB(t)
	require.NoError(t, conn.Exec(`DROP TABLE materials`).Error)

	_, err := Provide().Insert(context.Background(), conn, "Gauze", "1")
	require.Error(t, err)
}
