package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

type RecordRequest struct {
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
}

type ListActivityRequest struct {
	pagination.Pagination
	Action     string
	TargetType string
	TargetID   string
}

type ListActivityResponse struct {
	pagination.PageInfo
	Entries []ActivityLog `json:"entries"`
}

// Service records who did what. The actor comes from the request context;
// Record writes through db so entries commit with the change they describe.
type Service interface {
	Record(ctx context.Context, db *gorm.DB, req RecordRequest) error
	List(ctx context.Context, req ListActivityRequest) (ListActivityResponse, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
