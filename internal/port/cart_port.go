package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/dishhub/internal/domain"
)

type CartRepository interface {
	// GetOrCreateCart returns the owner's live cart, creating it on first
	// access. Safe under concurrent callers for the same owner.
	GetOrCreateCart(ctx context.Context, ownerID string) (domain.Cart, error)

	// GetCart returns the cart with its items, without catalog annotations.
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)

	// AddItem inserts a new line or, when the product is already in the
	// cart, merges by adding the quantity to the existing line. The note is
	// overwritten by the latest call, the price snapshot of the first add
	// is kept.
	AddItem(ctx context.Context, ownerID string, item domain.CartItem) (domain.CartItem, error)

	// UpdateItemQuantity sets the quantity of one line. A quantity of zero
	// or less deletes the line.
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error

	DeleteItem(ctx context.Context, itemID uuid.UUID) error

	// Clear deletes every line of the owner's cart. An empty cart is a
	// success no-op.
	Clear(ctx context.Context, ownerID string) error
}
