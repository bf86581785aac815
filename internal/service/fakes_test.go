package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/dishhub/internal/domain"
)

// In-memory fakes of the persistence ports, mirroring the store-level
// semantics (merge-on-add, conditional status update) so the services
// can be exercised without a database.

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart // ownerID -> cart without items
	items map[uuid.UUID]*domain.CartItem

	clearErr error
	clears   int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{
		carts: make(map[string]*domain.Cart),
		items: make(map[uuid.UUID]*domain.CartItem),
	}
}

func (f *fakeCartRepo) GetOrCreateCart(_ context.Context, ownerID string) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return *f.getOrCreateLocked(ownerID), nil
}

func (f *fakeCartRepo) getOrCreateLocked(ownerID string) *domain.Cart {
	if cart, ok := f.carts[ownerID]; ok {
		return cart
	}

	cart := &domain.Cart{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.carts[ownerID] = cart
	return cart
}

func (f *fakeCartRepo) GetCart(_ context.Context, ownerID string) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cart, ok := f.carts[ownerID]
	if !ok {
		return domain.Cart{}, domain.ErrNotFound
	}

	result := *cart
	result.Items = nil
	for _, item := range f.items {
		if item.CartID == cart.ID {
			result.Items = append(result.Items, *item)
		}
	}

	return result, nil
}

func (f *fakeCartRepo) AddItem(_ context.Context, ownerID string, item domain.CartItem) (domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cart := f.getOrCreateLocked(ownerID)

	for _, existing := range f.items {
		if existing.CartID == cart.ID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			existing.Note = item.Note
			return *existing, nil
		}
	}

	item.ID = uuid.New()
	item.CartID = cart.ID
	f.items[item.ID] = &item

	return item, nil
}

func (f *fakeCartRepo) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return f.DeleteItem(ctx, itemID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.items[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	item.Quantity = quantity

	return nil
}

func (f *fakeCartRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[itemID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.items, itemID)

	return nil
}

func (f *fakeCartRepo) Clear(_ context.Context, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}

	cart, ok := f.carts[ownerID]
	if !ok {
		return nil
	}

	for id, item := range f.items {
		if item.CartID == cart.ID {
			delete(f.items, id)
		}
	}

	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]domain.Order

	insertErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]domain.Order)}
}

func (f *fakeOrderRepo) GetOrder(_ context.Context, orderID uuid.UUID) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}

	return order, nil
}

func (f *fakeOrderRepo) SearchOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var result []domain.Order
	for _, order := range f.orders {
		if len(filter.IDs) > 0 && !contains(filter.IDs, order.ID) {
			continue
		}
		if len(filter.CustomerIDs) > 0 && !contains(filter.CustomerIDs, order.CustomerID) {
			continue
		}
		if len(filter.Statuses) > 0 && !contains(filter.Statuses, order.Status) {
			continue
		}
		result = append(result, order)
	}

	return result, nil
}

func (f *fakeOrderRepo) InsertOrder(_ context.Context, order domain.Order) (uuid.UUID, error) {
	if f.insertErr != nil {
		return uuid.Nil, f.insertErr
	}

	if len(order.Items) == 0 {
		return uuid.Nil, domain.ErrEmptyCart
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	f.orders[order.ID] = order

	return order.ID, nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(_ context.Context, orderID uuid.UUID, from, to domain.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}

	if order.Status != from {
		return domain.ErrInvalidTransition
	}

	order.Status = to
	f.orders[orderID] = order

	return nil
}

func (f *fakeOrderRepo) UpdatePaymentStatus(_ context.Context, orderID uuid.UUID, status domain.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}

	order.PaymentStatus = status
	f.orders[orderID] = order

	return nil
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[uuid.UUID]domain.Product
	failing  map[uuid.UUID]error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: make(map[uuid.UUID]domain.Product),
		failing:  make(map[uuid.UUID]error),
	}
}

func (f *fakeCatalog) GetProduct(_ context.Context, productID uuid.UUID) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failing[productID]; ok {
		return domain.Product{}, err
	}

	product, ok := f.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}

	return product, nil
}

func (f *fakeCatalog) InsertProduct(_ context.Context, product domain.Product) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	f.products[product.ID] = product

	return product.ID, nil
}

func (f *fakeCatalog) UpdatePrice(_ context.Context, productID uuid.UUID, price domain.Money) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[productID]
	if !ok {
		return domain.ErrNotFound
	}

	product.Price = price
	f.products[productID] = product

	return nil
}

func contains[T comparable](s []T, v T) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
