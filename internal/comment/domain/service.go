package domain

import (
	"context"
	"errors"
)

type PostCommentRequest struct {
	RequestID  int64
	Role       Role
	Text       string
	AuthorName string
	// MarkOwnRead also clears the author's own unread flag, as a manager
	// reply implies the thread has been read.
	MarkOwnRead bool
}

type Service interface {
	Post(ctx context.Context, req PostCommentRequest) (Comment, error)
	MarkRead(ctx context.Context, requestID int64, role Role) error
	List(ctx context.Context, requestID int64) ([]Comment, error)
}

var (
	ErrInvalidRole      = errors.New("invalid_role")
	ErrInvalidText      = errors.New("invalid_text")
	ErrInvalidRequestID = errors.New("invalid_request_id")
	ErrNotFound         = errors.New("not_found")
)
