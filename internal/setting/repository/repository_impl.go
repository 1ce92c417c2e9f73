package repository

import (
	"context"
	"database/sql"

	"github.com/smallbiznis/stockroom/internal/setting/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, key string) (string, bool, error) {
	var rows []struct {
		Value sql.NullString `gorm:"column:value"`
	}
	err := db.WithContext(ctx).Raw(`SELECT value FROM settings WHERE key = ? LIMIT 1`, key).Scan(&rows).Error
	if err != nil {
		return "", false, err
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].Value.String, true, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, key, value string) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key,
		value,
	).Error
}
