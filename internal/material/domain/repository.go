package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// Insert reports false when the code already exists.
	Insert(ctx context.Context, db *gorm.DB, description, code string) (bool, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]Material, error)
	FindActiveByID(ctx context.Context, db *gorm.DB, id int64) (*Material, error)
}
