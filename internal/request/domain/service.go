package domain

import (
	"context"
	"errors"
)

type SubmitBatchRequest struct {
	Department string
	Items      []ItemSpec
}

type SubmitBatchResult struct {
	BatchID    string  `json:"batch_id"`
	RequestIDs []int64 `json:"request_ids"`
}

type UpdateStatusRequest struct {
	ID     int64
	Status string
}

type UpdateBatchStatusRequest struct {
	BatchID string
	Status  string
}

type ManagerFilter struct {
	Department string
	Status     string
	OnlyUnread bool
	Query      string
}

type Service interface {
	SubmitBatch(ctx context.Context, req SubmitBatchRequest) (SubmitBatchResult, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (Request, error)
	UpdateStatusForBatch(ctx context.Context, req UpdateBatchStatusRequest) ([]Request, error)
	CountsByStatusForDept(ctx context.Context, department string) ([]StatusCount, error)
	ListForDepartment(ctx context.Context, department, status string) ([]Request, error)
	ListForManager(ctx context.Context, filter ManagerFilter) ([]Request, error)
	Dashboard(ctx context.Context) (Dashboard, error)
	Get(ctx context.Context, id int64) (Request, error)
}

var (
	ErrInvalidDepartment = errors.New("invalid_department")
	ErrEmptyBatch        = errors.New("empty_batch")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidItemType   = errors.New("invalid_item_type")
	ErrMaterialRequired  = errors.New("material_required")
	ErrFreeTextRequired  = errors.New("free_text_required")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidBatchID    = errors.New("invalid_batch_id")
	ErrNotFound          = errors.New("not_found")
)
