package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/dishhub/internal/domain"
	"github.com/nikolayk812/dishhub/internal/fanout"
	"github.com/nikolayk812/dishhub/internal/port"
	"github.com/samber/lo"
)

// displayCodePrefix starts every human-readable order code.
const displayCodePrefix = "DH"

type PlaceOrderRequest struct {
	PhoneNumber     string
	DeliveryAddress string
	PaymentMethod   domain.PaymentMethod
	Note            string

	// Items is the just-loaded cart snapshot. Totals and price snapshots
	// come from here, never from a fresh catalog read.
	Items []domain.CartItem
}

// OrderProcessor turns a cart snapshot into a durable order: one atomic
// write for the order and all its lines, then a best-effort cart clear.
type OrderProcessor struct {
	orders   port.OrderRepository
	carts    port.CartRepository
	identity port.Identity
	hub      *fanout.Hub
	logger   *slog.Logger

	now func() time.Time
}

func NewOrderProcessor(orders port.OrderRepository, carts port.CartRepository, identity port.Identity, hub *fanout.Hub, logger *slog.Logger) (*OrderProcessor, error) {
	if orders == nil {
		return nil, errors.New("orders is nil")
	}
	if carts == nil {
		return nil, errors.New("carts is nil")
	}
	if identity == nil {
		return nil, errors.New("identity is nil")
	}
	if hub == nil {
		return nil, errors.New("hub is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &OrderProcessor{
		orders:   orders,
		carts:    carts,
		identity: identity,
		hub:      hub,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (p *OrderProcessor) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (domain.Order, error) {
	var zero domain.Order

	customerID, err := p.currentUser(ctx)
	if err != nil {
		return zero, err
	}

	if len(req.Items) == 0 {
		return zero, domain.ErrEmptyCart
	}

	var total domain.Money
	for i, item := range req.Items {
		line := item.Price.Mul(item.Quantity)
		if i == 0 {
			total = line
			continue
		}
		total = total.Add(line)
	}

	order := domain.Order{
		DisplayCode:     displayCode(p.now()),
		CustomerID:      customerID,
		PhoneNumber:     req.PhoneNumber,
		DeliveryAddress: req.DeliveryAddress,
		Note:            req.Note,
		Total:           total,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   domain.PaymentStatusPendingConfirmation,
		Status:          domain.OrderStatusPending,
		Items: lo.Map(req.Items, func(item domain.CartItem, _ int) domain.OrderItem {
			return domain.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			}
		}),
	}

	orderID, err := p.orders.InsertOrder(ctx, order)
	if err != nil {
		if errors.Is(err, domain.ErrPartialWrite) {
			p.logger.Error("order write left partial state", "error", err)
		}
		return zero, fmt.Errorf("orders.InsertOrder: %w", errors.Join(domain.ErrWriteFailed, err))
	}

	// The order is durable. A failed clear is cleanup debt for the next
	// LoadCart, never an order failure.
	if err := p.carts.Clear(ctx, customerID); err != nil {
		p.logger.Warn("cart clear failed after order",
			"order_id", orderID, "customer_id", customerID, "error", err)
	}

	p.hub.Broadcast()

	placed, err := p.orders.GetOrder(ctx, orderID)
	if err != nil {
		return zero, fmt.Errorf("orders.GetOrder: %w", err)
	}

	return placed, nil
}

// OrderHistory lists the caller's own orders, newest first.
func (p *OrderProcessor) OrderHistory(ctx context.Context) ([]domain.Order, error) {
	customerID, err := p.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := p.orders.SearchOrders(ctx, domain.OrderFilter{
		CustomerIDs: []string{customerID},
	})
	if err != nil {
		return nil, fmt.Errorf("orders.SearchOrders: %w", err)
	}

	return orders, nil
}

func (p *OrderProcessor) OrderDetails(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var zero domain.Order

	order, err := p.orders.GetOrder(ctx, orderID)
	if err != nil {
		return zero, fmt.Errorf("orders.GetOrder: %w", err)
	}

	return order, nil
}

func (p *OrderProcessor) currentUser(ctx context.Context) (string, error) {
	userID, err := p.identity.CurrentUserID(ctx)
	if err != nil {
		return "", fmt.Errorf("identity.CurrentUserID: %w", err)
	}

	if userID == "" {
		return "", domain.ErrUnauthenticated
	}

	return userID, nil
}

// displayCode builds the customer-facing order code: prefix, year, then
// the last four digits of the timestamp in milliseconds. Collisions are
// possible and tolerated, the UUID key is what identifies the order.
func displayCode(now time.Time) string {
	return fmt.Sprintf("%s%d%04d", displayCodePrefix, now.Year(), now.UnixMilli()%10000)
}
