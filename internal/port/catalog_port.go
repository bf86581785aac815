package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/dishhub/internal/domain"
)

// CatalogRepository resolves products to their current price and display
// metadata. The order subsystem only reads from it, except for catalog
// maintenance done by the back office.
type CatalogRepository interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)

	InsertProduct(ctx context.Context, product domain.Product) (uuid.UUID, error)

	UpdatePrice(ctx context.Context, productID uuid.UUID, price domain.Money) error
}

// Identity resolves the calling user. An empty result surfaces as
// domain.ErrUnauthenticated, never as a silent no-op.
type Identity interface {
	CurrentUserID(ctx context.Context) (string, error)
}
