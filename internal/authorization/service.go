package authorization

import (
	"context"
	"errors"
)

// Service checks whether a role may perform action on object.
type Service interface {
	Authorize(ctx context.Context, role string, object string, action string) error
}

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidRole   = errors.New("invalid_role")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)
