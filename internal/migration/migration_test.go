package migration

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	requestdomain "github.com/smallbiznis/stockroom/internal/request/domain"
	requestrepo "github.com/smallbiznis/stockroom/internal/request/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func TestRunCreatesSchemaAndIsIdempotent(t *testing.T) {
	conn := setupTestDB(t)

	require.NoError(t, Run(conn))
	require.NoError(t, Run(conn))

	for _, table := range []string{"materials", "requests", "comments", "settings", "activity_logs"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}

	cols, err := columns(conn, "requests")
	require.NoError(t, err)
	for _, name := range []string{"batch_id", "status_changed_at", "new_comment_for_manager", "new_comment_for_requestor"} {
		assert.Contains(t, cols, name)
	}
}

// createLegacyRequests builds the requests table as early releases wrote it,
// with one submitted row.
func createLegacyRequests(t *testing.T, conn *gorm.DB) {
	t.Helper()
	require.NoError(t, conn.Exec(`CREATE TABLE requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		department TEXT,
		item_type TEXT,
		material_description TEXT,
		oracle_number TEXT,
		free_text_item TEXT,
		quantity INTEGER NOT NULL DEFAULT 1,
		is_spr INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'new',
		timestamp TEXT NOT NULL DEFAULT (datetime('now'))
	)`).Error)
	require.NoError(t, conn.Exec(`INSERT INTO requests (department, item_type, free_text_item, timestamp)
		VALUES ('IV Room', 'freetext', 'gloves', '2024-01-02 03:04:05')`).Error)
}

func TestRunUpgradesLegacyRequestsTable(t *testing.T) {
	conn := setupTestDB(t)

	createLegacyRequests(t, conn)

	require.NoError(t, Run(conn))

	var row struct {
		BatchID                *string
		StatusChangedAt        string
		NewCommentForManager   int
		NewCommentForRequestor int
	}
	require.NoError(t, conn.Raw(`SELECT batch_id, status_changed_at, new_comment_for_manager, new_comment_for_requestor
		FROM requests WHERE id = 1`).Scan(&row).Error)
	assert.Nil(t, row.BatchID)
	assert.Equal(t, "2024-01-02 03:04:05", row.StatusChangedAt)
	assert.Equal(t, 0, row.NewCommentForManager)
	assert.Equal(t, 0, row.NewCommentForRequestor)

	require.NoError(t, Run(conn))
}

func TestCommentsCascadeWithRequest(t *testing.T) {
	conn := setupTestDB(t)
	require.NoError(t, Run(conn))

	require.NoError(t, conn.Exec(`INSERT INTO requests (id, department, item_type, free_text_item) VALUES (7, 'IV Room', 'freetext', 'gloves')`).Error)
	require.NoError(t, conn.Exec(`INSERT INTO comments (request_id, by_role, text) VALUES (7, 'requestor', 'urgent')`).Error)
	require.NoError(t, conn.Exec(`DELETE FROM requests WHERE id = 7`).Error)

	var count int64
	require.NoError(t, conn.Raw(`SELECT COUNT(*) FROM comments`).Scan(&count).Error)
	assert.Zero(t, count)
}

func TestUpgradedLegacyDatabaseAcceptsWrites(t *testing.T) {
	conn := setupTestDB(t)
	createLegacyRequests(t, conn)
	require.NoError(t, Run(conn))

	ctx := context.Background()
	repo := requestrepo.Provide()
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	row := requestdomain.Request{
		BatchID:             "b-upgraded",
		Department:          "IV Room",
		ItemType:            requestdomain.ItemTypeCatalog,
		MaterialDescription: "Saline 10ml",
		ExternalCode:        "200001",
		Quantity:            3,
		Status:              requestdomain.StatusNew,
		SubmittedAt:         now,
		StatusChangedAt:     now,
	}
	require.NoError(t, repo.Insert(ctx, conn, &row))
	assert.Equal(t, int64(2), row.ID)

	n, err := repo.UpdateStatus(ctx, conn, 1, requestdomain.StatusInProcess, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	legacy, err := repo.FindByID(ctx, conn, 1)
	require.NoError(t, err)
	require.NotNil(t, legacy)
	assert.Equal(t, requestdomain.StatusInProcess, legacy.Status)
	assert.Empty(t, legacy.BatchID)
	assert.True(t, legacy.StatusChangedAt.Equal(now))

	inserted, err := repo.ListByBatch(ctx, conn, "b-upgraded")
	require.NoError(t, err)
	require.Len(t, inserted, 1)
	assert.Equal(t, "200001", inserted[0].ExternalCode)
	assert.Equal(t, 3, inserted[0].Quantity)
}
