package domain

import (
	"context"
	"errors"
)

// Store holds carts between requests. Load of an unknown id returns an
// empty cart rather than an error.
type Store interface {
	Load(ctx context.Context, id string) (Cart, error)
	Save(ctx context.Context, cart Cart) error
	Delete(ctx context.Context, id string) error
	// Lock serializes changes to one cart. It fails with ErrCartBusy
	// when another holder has it.
	Lock(ctx context.Context, id string) (release func(), err error)
}

var ErrCartBusy = errors.New("cart_busy")
