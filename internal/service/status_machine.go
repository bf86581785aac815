package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nikolayk812/dishhub/internal/domain"
	"github.com/nikolayk812/dishhub/internal/fanout"
	"github.com/nikolayk812/dishhub/internal/port"
)

// StatusMachine is the only writer of an order's status. It validates
// every transition against the lifecycle graph and pushes fresh snapshots
// to all live watchers after each mutation.
type StatusMachine struct {
	orders port.OrderRepository
	hub    *fanout.Hub
	logger *slog.Logger
}

func NewStatusMachine(orders port.OrderRepository, hub *fanout.Hub, logger *slog.Logger) (*StatusMachine, error) {
	if orders == nil {
		return nil, errors.New("orders is nil")
	}
	if hub == nil {
		return nil, errors.New("hub is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &StatusMachine{
		orders: orders,
		hub:    hub,
		logger: logger,
	}, nil
}

// Transition moves the order to newStatus if the lifecycle graph allows
// it from the order's current status. The write is conditional on the
// status read here, so a concurrent transition makes the stale caller
// fail with domain.ErrInvalidTransition instead of overwriting.
func (s *StatusMachine) Transition(ctx context.Context, orderID uuid.UUID, newStatus domain.OrderStatus) error {
	if !newStatus.Valid() {
		return fmt.Errorf("status[%s] is not valid", newStatus)
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("orders.GetOrder: %w", err)
	}

	if !order.Status.CanTransitionTo(newStatus) {
		return fmt.Errorf("%s -> %s: %w", order.Status, newStatus, domain.ErrInvalidTransition)
	}

	if err := s.orders.UpdateOrderStatus(ctx, orderID, order.Status, newStatus); err != nil {
		return fmt.Errorf("orders.UpdateOrderStatus: %w", err)
	}

	s.logger.Info("order status changed",
		"order_id", orderID, "from", order.Status, "to", newStatus)

	s.hub.Broadcast()

	return nil
}

// AcceptOrder is Transition to accepted with a stricter precondition: the
// order must still be exactly pending, so a second accept under a race
// fails instead of silently passing.
func (s *StatusMachine) AcceptOrder(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("orders.GetOrder: %w", err)
	}

	if order.Status != domain.OrderStatusPending {
		return fmt.Errorf("order is %s, not %s: %w",
			order.Status, domain.OrderStatusPending, domain.ErrInvalidTransition)
	}

	if err := s.orders.UpdateOrderStatus(ctx, orderID, domain.OrderStatusPending, domain.OrderStatusAccepted); err != nil {
		return fmt.Errorf("orders.UpdateOrderStatus: %w", err)
	}

	s.logger.Info("order accepted", "order_id", orderID)

	s.hub.Broadcast()

	return nil
}

// SetPaymentStatus updates the payment leg, conventionally called in
// lockstep with the matching order transition.
func (s *StatusMachine) SetPaymentStatus(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus) error {
	if _, err := domain.ToPaymentStatus(string(status)); err != nil {
		return fmt.Errorf("domain.ToPaymentStatus[%s]: %w", status, err)
	}

	if err := s.orders.UpdatePaymentStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("orders.UpdatePaymentStatus: %w", err)
	}

	s.hub.Broadcast()

	return nil
}

// Watch registers a live view over the orders matching filter. The full
// current snapshot is delivered on subscribe and again after every
// mutation anywhere in the subsystem. Delivery is latest-wins: a slow
// consumer only ever misses intermediate snapshots, never the newest one.
// Cancelling ctx tears the subscription down and closes the channel;
// a screen re-subscribing must cancel its previous watch first.
func (s *StatusMachine) Watch(ctx context.Context, filter domain.OrderFilter) (<-chan []domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	// Subscribe before the first read: a mutation broadcast in between
	// then leaves a pending tick instead of going unseen, at worst costing
	// one redundant refresh.
	ticks, cancel := s.hub.Subscribe()

	initial, err := s.orders.SearchOrders(ctx, filter)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("orders.SearchOrders: %w", err)
	}

	out := make(chan []domain.Order, 1)

	go func() {
		defer close(out)
		defer cancel()

		pushSnapshot(out, initial)

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}

				snapshot, err := s.orders.SearchOrders(ctx, filter)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					s.logger.Warn("live view refresh failed", "error", err)
					continue
				}

				pushSnapshot(out, snapshot)
			}
		}
	}()

	return out, nil
}

// pushSnapshot delivers latest-wins into a buffer-of-one channel with a
// single producer: if the previous snapshot was never consumed it is
// replaced by the new one.
func pushSnapshot(out chan []domain.Order, snapshot []domain.Order) {
	select {
	case out <- snapshot:
	default:
		select {
		case <-out:
		default:
		}
		out <- snapshot
	}
}
