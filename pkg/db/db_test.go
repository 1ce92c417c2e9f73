package db

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpenAppliesPragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "materials_manager.db")
	conn, err := Open(Config{Path: path, BusyTimeoutMS: 1234, MaxOpenConn: 1}, nil)
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	var journal string
	require.NoError(t, conn.Raw("PRAGMA journal_mode").Scan(&journal).Error)
	assert.Equal(t, "wal", journal)

	var fk int
	require.NoError(t, conn.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)

	var busy int
	require.NoError(t, conn.Raw("PRAGMA busy_timeout").Scan(&busy).Error)
	assert.Equal(t, 1234, busy)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{}, nil)
	assert.Error(t, err)
}

func TestDSNBeginsImmediate(t *testing.T) {
	assert.Contains(t, DSN(Config{Path: "/tmp/x.db"}), "_txlock=immediate")
}

// Read-then-write transactions on separate pooled connections must queue on
// the busy timeout rather than fail.
func TestConcurrentReadModifyWriteTransactions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.db")
	conn, err := Open(Config{Path: path, BusyTimeoutMS: 5000, MaxOpenConn: 4}, nil)
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.Exec(`CREATE TABLE counters (id INTEGER PRIMARY KEY, n INTEGER NOT NULL)`).Error)
	require.NoError(t, conn.Exec(`INSERT INTO counters (id, n) VALUES (1, 0)`).Error)

	const workers, rounds = 8, 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				err := conn.Transaction(func(tx *gorm.DB) error {
					var n int
					if err := tx.Raw(`SELECT n FROM counters WHERE id = 1`).Scan(&n).Error; err != nil {
						return err
					}
					return tx.Exec(`UPDATE counters SET n = ? WHERE id = 1`, n+1).Error
				})
				if err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	var n int
	require.NoError(t, conn.Raw(`SELECT n FROM counters WHERE id = 1`).Scan(&n).Error)
	assert.Equal(t, workers*rounds, n)
}

func TestErrorClassifiers(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.True(t, IsDuplicateKeyErr(errors.New("constraint failed: UNIQUE constraint failed: materials.oracle (2067)")))
	assert.False(t, IsDuplicateKeyErr(errors.New("no such table: materials")))

	assert.False(t, IsBusyErr(nil))
	assert.True(t, IsBusyErr(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, IsBusyErr(errors.New("no such table: materials")))
}
