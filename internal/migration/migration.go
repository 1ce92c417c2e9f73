package migration

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Run brings the database to the current schema. It is idempotent and
// forward-only: tables are created when absent and missing request columns
// are added in place, so files written by earlier releases keep working.
func Run(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range tableStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("create table: %w", err)
			}
		}

		existing, err := columns(tx, "requests")
		if err != nil {
			return err
		}
		for _, col := range legacyColumns {
			if _, ok := existing[col.name]; ok {
				continue
			}
			if err := tx.Exec(col.ddl).Error; err != nil {
				return fmt.Errorf("add requests.%s: %w", col.name, err)
			}
			if col.backfill != "" {
				if err := tx.Exec(col.backfill).Error; err != nil {
					return fmt.Errorf("backfill requests.%s: %w", col.name, err)
				}
			}
		}

		for _, stmt := range indexStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("create index: %w", err)
			}
		}
		return nil
	})
}

type columnInfo struct {
	CID     int
	Name    string
	Type    string
	NotNull int
	Dflt    *string
	PK      int
}

func columns(tx *gorm.DB, table string) (map[string]struct{}, error) {
	rows, err := tx.Raw("PRAGMA table_info(" + table + ")").Rows()
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	out := map[string]struct{}{}
	for rows.Next() {
		var c columnInfo
		if err := rows.Scan(&c.CID, &c.Name, &c.Type, &c.NotNull, &c.Dflt, &c.PK); err != nil {
			return nil, fmt.Errorf("inspect %s: %w", table, err)
		}
		out[c.Name] = struct{}{}
	}
	return out, rows.Err()
}
