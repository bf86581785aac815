package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/dishhub/internal/domain"
)

type OrderRepository interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)

	SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	// InsertOrder persists the order and all its items in one transaction:
	// either everything is visible afterwards or nothing is.
	InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error)

	// UpdateOrderStatus writes the status only if the stored status still
	// equals from, as a single conditional update. It fails with
	// domain.ErrInvalidTransition when another writer got there first and
	// with domain.ErrNotFound for an unknown order.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) error

	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus) error
}
