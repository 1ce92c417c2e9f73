package domain

import (
	"context"
	"errors"

	requestdomain "github.com/smallbiznis/stockroom/internal/request/domain"
)

type AddItemRequest struct {
	ItemType   string `json:"item_type"`
	MaterialID int64  `json:"material_id"`
	FreeText   string `json:"free_text"`
	Quantity   int    `json:"quantity"`
	IsSPR      bool   `json:"is_spr"`
}

type SetDepartmentResult struct {
	Cart    Cart `json:"cart"`
	Cleared bool `json:"cleared"`
}

type Service interface {
	Get(ctx context.Context, cartID string) (Cart, error)
	// SetDepartment clears any pending lines when the department changes.
	SetDepartment(ctx context.Context, cartID, department string) (SetDepartmentResult, error)
	AddItem(ctx context.Context, cartID string, req AddItemRequest) (Cart, error)
	RemoveItem(ctx context.Context, cartID string, index int) (Cart, error)
	// Clear drops the cart, department included.
	Clear(ctx context.Context, cartID string) error
	// Submit turns the cart into one batch and empties it. The department
	// is kept for the next batch.
	Submit(ctx context.Context, cartID string) (requestdomain.SubmitBatchResult, error)
}

var (
	ErrInvalidCartID      = errors.New("invalid_cart_id")
	ErrInvalidDepartment  = errors.New("invalid_department")
	ErrDepartmentRequired = errors.New("department_required")
	ErrEmptyCart          = errors.New("empty_cart")
	ErrInvalidItemType    = errors.New("invalid_item_type")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrMaterialRequired   = errors.New("material_required")
	ErrMaterialNotFound   = errors.New("material_not_found")
	ErrFreeTextRequired   = errors.New("free_text_required")
	ErrInvalidIndex       = errors.New("invalid_index")
)
