package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	Department       string
	Status           Status
	UnreadForManager bool
	// NewFirst puts status "new" ahead of everything else before id desc.
	NewFirst bool
}

type RawStatusCount struct {
	Status  string
	Total   int
	Overdue int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, req *Request) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Request, error)
	ListByBatch(ctx context.Context, db *gorm.DB, batchID string) ([]Request, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Request, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status Status, changedAt time.Time) (int64, error)
	UpdateBatchStatus(ctx context.Context, db *gorm.DB, batchID string, status Status, changedAt time.Time) (int64, error)
	CountByStatus(ctx context.Context, db *gorm.DB, department string, now time.Time, overdueDays int) ([]RawStatusCount, error)
	CountByStatusAll(ctx context.Context, db *gorm.DB, status Status) (int, error)
	CountUnreadForManager(ctx context.Context, db *gorm.DB) (int, error)
}
