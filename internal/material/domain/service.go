package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

type AddMaterialRequest struct {
	Description string `json:"description"`
	Code        string `json:"code"`
}

type AddMaterialResult struct {
	Inserted bool `json:"inserted"`
}

type ListMaterialsRequest struct {
	Query string
}

type ImportRequest struct {
	Filename string
	Content  io.Reader
}

type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

type Service interface {
	Add(ctx context.Context, req AddMaterialRequest) (AddMaterialResult, error)
	List(ctx context.Context, req ListMaterialsRequest) ([]Material, error)
	GetActive(ctx context.Context, id int64) (Material, error)
	Import(ctx context.Context, req ImportRequest) (ImportResult, error)
	Template() []byte
	TemplateXLSX() ([]byte, error)
}

var (
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidCode        = errors.New("invalid_code")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidImport      = errors.New("invalid_import")
)

// ImportError rejects a whole import file. Nothing is written when it is returned.
type ImportError struct {
	Missing []string
	Err     error
}

func (e *ImportError) Error() string {
	if len(e.Missing) > 0 {
		return "missing required column(s): " + strings.Join(e.Missing, ", ")
	}
	if e.Err != nil {
		return fmt.Sprintf("unreadable import file: %v", e.Err)
	}
	return "unreadable import file"
}

func (e *ImportError) Unwrap() error { return ErrInvalidImport }
