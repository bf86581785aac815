package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nikolayk812/dishhub/internal/domain"
	"github.com/nikolayk812/dishhub/internal/port"
	"golang.org/x/sync/errgroup"
)

// catalogLookupLimit bounds the parallel product lookups of one LoadCart.
const catalogLookupLimit = 8

// CartStore owns the per-user basket: add with merge-on-duplicate,
// quantity updates, removal, clearing and the derived total.
type CartStore struct {
	carts    port.CartRepository
	catalog  port.CatalogRepository
	identity port.Identity
	logger   *slog.Logger
}

func NewCartStore(carts port.CartRepository, catalog port.CatalogRepository, identity port.Identity, logger *slog.Logger) (*CartStore, error) {
	if carts == nil {
		return nil, errors.New("carts is nil")
	}
	if catalog == nil {
		return nil, errors.New("catalog is nil")
	}
	if identity == nil {
		return nil, errors.New("identity is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CartStore{
		carts:    carts,
		catalog:  catalog,
		identity: identity,
		logger:   logger,
	}, nil
}

// LoadCart returns the caller's cart, lazily created, with every line
// annotated with current catalog data. A failed lookup leaves the line's
// Product nil instead of failing or dropping the line.
func (s *CartStore) LoadCart(ctx context.Context) (domain.Cart, error) {
	var zero domain.Cart

	ownerID, err := s.currentUser(ctx)
	if err != nil {
		return zero, err
	}

	if _, err := s.carts.GetOrCreateCart(ctx, ownerID); err != nil {
		return zero, fmt.Errorf("carts.GetOrCreateCart: %w", err)
	}

	cart, err := s.carts.GetCart(ctx, ownerID)
	if err != nil {
		return zero, fmt.Errorf("carts.GetCart: %w", err)
	}

	s.annotate(ctx, cart.Items)

	return cart, nil
}

// annotate fans the catalog lookups out and joins on all of them.
func (s *CartStore) annotate(ctx context.Context, items []domain.CartItem) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(catalogLookupLimit)

	for i := range items {
		g.Go(func() error {
			product, err := s.catalog.GetProduct(gCtx, items[i].ProductID)
			if err != nil {
				s.logger.Warn("catalog lookup failed",
					"product_id", items[i].ProductID, "error", err)
				return nil
			}

			items[i].Product = &product
			return nil
		})
	}

	// Lookups never report errors, so this only waits for the join.
	_ = g.Wait()
}

// AddToCart snapshots the product's current catalog price into a new
// line, or merges quantity into an existing line for the same product.
func (s *CartStore) AddToCart(ctx context.Context, productID uuid.UUID, quantity int, note string) (domain.CartItem, error) {
	var zero domain.CartItem

	ownerID, err := s.currentUser(ctx)
	if err != nil {
		return zero, err
	}

	if quantity <= 0 {
		return zero, errors.New("quantity must be positive")
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return zero, fmt.Errorf("catalog.GetProduct: %w", err)
	}

	item, err := s.carts.AddItem(ctx, ownerID, domain.CartItem{
		ProductID: productID,
		Quantity:  quantity,
		Price:     product.Price,
		Note:      note,
	})
	if err != nil {
		return zero, fmt.Errorf("carts.AddItem: %w", err)
	}

	return item, nil
}

func (s *CartStore) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if _, err := s.currentUser(ctx); err != nil {
		return err
	}

	if err := s.carts.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
		return fmt.Errorf("carts.UpdateItemQuantity: %w", err)
	}

	return nil
}

func (s *CartStore) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	if _, err := s.currentUser(ctx); err != nil {
		return err
	}

	if err := s.carts.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("carts.DeleteItem: %w", err)
	}

	return nil
}

func (s *CartStore) Clear(ctx context.Context) error {
	ownerID, err := s.currentUser(ctx)
	if err != nil {
		return err
	}

	if err := s.carts.Clear(ctx, ownerID); err != nil {
		return fmt.Errorf("carts.Clear: %w", err)
	}

	return nil
}

// Total recomputes the sum over the live items on every call. It is read
// right before checkout, so a cached value would be a staleness hazard.
func (s *CartStore) Total(ctx context.Context) (domain.Money, error) {
	var zero domain.Money

	ownerID, err := s.currentUser(ctx)
	if err != nil {
		return zero, err
	}

	cart, err := s.carts.GetCart(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return zero, nil
		}
		return zero, fmt.Errorf("carts.GetCart: %w", err)
	}

	return cart.Total(), nil
}

func (s *CartStore) currentUser(ctx context.Context) (string, error) {
	userID, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return "", fmt.Errorf("identity.CurrentUserID: %w", err)
	}

	if userID == "" {
		return "", domain.ErrUnauthenticated
	}

	return userID, nil
}
