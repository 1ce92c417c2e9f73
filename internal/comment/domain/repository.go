package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, comment *Comment) error
	ListByRequest(ctx context.Context, db *gorm.DB, requestID int64) ([]Comment, error)
	RequestExists(ctx context.Context, db *gorm.DB, requestID int64) (bool, error)
	// SetUnread sets the unread flag that role sees on the request.
	SetUnread(ctx context.Context, db *gorm.DB, requestID int64, role Role, unread bool) error
}
