package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Service interface {
	Get(ctx context.Context, key, def string) (string, error)
	// Lookup distinguishes a missing key from an empty value.
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, db *gorm.DB, key, value string) error
}

var ErrInvalidKey = errors.New("invalid_key")
