package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// Find reports ok=false when the key has never been written.
	Find(ctx context.Context, db *gorm.DB, key string) (value string, ok bool, err error)
	Upsert(ctx context.Context, db *gorm.DB, key, value string) error
}
