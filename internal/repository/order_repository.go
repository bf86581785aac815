package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/dishhub/internal/domain"
	"github.com/nikolayk812/dishhub/internal/port"
	"github.com/samber/lo"
	"golang.org/x/text/currency"
)

type orderRepository struct {
	db DB
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{db: pool}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	if orderID == uuid.Nil {
		return o, errors.New("orderID is empty")
	}

	order, err := withTx(ctx, r.db, func(tx pgx.Tx) (domain.Order, error) {
		row := tx.QueryRow(ctx, `
			SELECT id, display_code, customer_id, phone_number, delivery_address, note,
			       total_amount, total_currency, payment_method, payment_status, order_status,
			       created_at, updated_at
			FROM orders WHERE id = $1`,
			orderID)

		dbOrder, err := scanOrderRow(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return o, fmt.Errorf("order[%s]: %w", orderID, domain.ErrNotFound)
			}
			return o, fmt.Errorf("scanOrderRow: %w", classifyError(err))
		}

		items, err := getOrderItems(ctx, tx, orderID)
		if err != nil {
			return o, fmt.Errorf("getOrderItems: %w", err)
		}
		dbOrder.Items = items

		return dbOrder, nil
	})
	if err != nil {
		return o, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

// InsertOrder is the one atomic boundary of the subsystem: the order row
// and every item row commit together or not at all.
func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	if len(order.Items) == 0 {
		return uuid.Nil, fmt.Errorf("no items in order: %w", domain.ErrEmptyCart)
	}

	orderID, err := withTx(ctx, r.db, func(tx pgx.Tx) (uuid.UUID, error) {
		var orderID uuid.UUID

		row := tx.QueryRow(ctx, `
			INSERT INTO orders (display_code, customer_id, phone_number, delivery_address, note,
			                    total_amount, total_currency, payment_method, payment_status, order_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`,
			order.DisplayCode, order.CustomerID, order.PhoneNumber, order.DeliveryAddress, order.Note,
			order.Total.Amount, order.Total.Currency.String(),
			string(order.PaymentMethod), string(order.PaymentStatus), string(order.Status))

		if err := row.Scan(&orderID); err != nil {
			return uuid.Nil, fmt.Errorf("insert order: %w", classifyError(err))
		}

		for _, item := range order.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, price_amount, price_currency)
				VALUES ($1, $2, $3, $4, $5)`,
				orderID, item.ProductID, item.Quantity, item.Price.Amount, item.Price.Currency.String())
			if err != nil {
				// The enclosing transaction rolls the order row back,
				// no orphan survives. Tagged for logs either way.
				return uuid.Nil, fmt.Errorf("insert order item: %w", errors.Join(classifyError(err), domain.ErrPartialWrite))
			}
		}

		return orderID, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("withTx: %w", err)
	}

	return orderID, nil
}

func (r *orderRepository) SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	ids := nilSliceIfEmpty(lo.Map(filter.IDs, func(id uuid.UUID, _ int) string { return id.String() }))
	customerIDs := nilSliceIfEmpty(filter.CustomerIDs)
	statuses := nilSliceIfEmpty(lo.Map(filter.Statuses, func(s domain.OrderStatus, _ int) string { return string(s) }))

	var createdAfter, createdBefore any
	if filter.CreatedAt != nil {
		if filter.CreatedAt.After != nil {
			createdAfter = *filter.CreatedAt.After
		}
		if filter.CreatedAt.Before != nil {
			createdBefore = *filter.CreatedAt.Before
		}
	}

	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.display_code, o.customer_id, o.phone_number, o.delivery_address, o.note,
		       o.total_amount, o.total_currency, o.payment_method, o.payment_status, o.order_status,
		       o.created_at, o.updated_at,
		       i.id, i.product_id, i.quantity, i.price_amount, i.price_currency, i.created_at
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		WHERE ($1::text[] IS NULL OR o.id::text = ANY($1))
		  AND ($2::text[] IS NULL OR o.customer_id = ANY($2))
		  AND ($3::text[] IS NULL OR o.order_status = ANY($3))
		  AND ($4::timestamptz IS NULL OR o.created_at >= $4)
		  AND ($5::timestamptz IS NULL OR o.created_at <= $5)`,
		ids, customerIDs, statuses, createdAfter, createdBefore)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", classifyError(err))
	}
	defer rows.Close()

	// Group joined rows into orders and their items.
	orderMap := make(map[uuid.UUID]domain.Order)
	for rows.Next() {
		order, item, err := scanOrderJoinRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrderJoinRow: %w", err)
		}

		if existing, ok := orderMap[order.ID]; ok {
			order = existing
		}
		order.Items = append(order.Items, item)
		orderMap[order.ID] = order
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", classifyError(err))
	}

	orders := lo.Values(orderMap)
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

// UpdateOrderStatus is a conditional single-field write: it succeeds only
// when the stored status still equals from, so a stale reader loses the
// race instead of clobbering a fresher transition.
func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) error {
	if orderID == uuid.Nil {
		return errors.New("orderID is empty")
	}
	if from == "" || to == "" {
		return errors.New("status is empty")
	}

	cmdTag, err := r.db.Exec(ctx, `
		UPDATE orders SET order_status = $3, updated_at = now()
		WHERE id = $1 AND order_status = $2`,
		orderID, string(from), string(to))
	if err != nil {
		return fmt.Errorf("db.Exec: %w", classifyError(err))
	}

	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	// Zero rows: either the order is gone or its status moved under us.
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return fmt.Errorf("row.Scan: %w", classifyError(err))
	}

	if !exists {
		return fmt.Errorf("order[%s]: %w", orderID, domain.ErrNotFound)
	}

	return fmt.Errorf("order[%s] is no longer %s: %w", orderID, from, domain.ErrInvalidTransition)
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus) error {
	if orderID == uuid.Nil {
		return errors.New("orderID is empty")
	}
	if status == "" {
		return errors.New("status is empty")
	}

	cmdTag, err := r.db.Exec(ctx, `
		UPDATE orders SET payment_status = $2, updated_at = now()
		WHERE id = $1`,
		orderID, string(status))
	if err != nil {
		return fmt.Errorf("db.Exec: %w", classifyError(err))
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("order[%s]: %w", orderID, domain.ErrNotFound)
	}

	return nil
}

func getOrderItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price_amount, price_currency, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("tx.Query: %w", classifyError(err))
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item         domain.OrderItem
			currencyCode string
		)

		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.Price.Amount, &currencyCode, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", classifyError(err))
		}

		parsedCurrency, err := currency.ParseISO(currencyCode)
		if err != nil {
			return nil, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
		}
		item.Price.Currency = parsedCurrency

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", classifyError(err))
	}

	return items, nil
}

func scanOrderRow(row pgx.Row) (domain.Order, error) {
	var (
		o                             domain.Order
		totalCurrency                 string
		method, payStatus, orderState string
	)

	err := row.Scan(&o.ID, &o.DisplayCode, &o.CustomerID, &o.PhoneNumber, &o.DeliveryAddress, &o.Note,
		&o.Total.Amount, &totalCurrency, &method, &payStatus, &orderState,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, err
	}

	return mapOrderFields(o, totalCurrency, method, payStatus, orderState)
}

func scanOrderJoinRow(rows pgx.Rows) (domain.Order, domain.OrderItem, error) {
	var (
		o                             domain.Order
		item                          domain.OrderItem
		totalCurrency                 string
		method, payStatus, orderState string
		itemCurrency                  string
	)

	err := rows.Scan(&o.ID, &o.DisplayCode, &o.CustomerID, &o.PhoneNumber, &o.DeliveryAddress, &o.Note,
		&o.Total.Amount, &totalCurrency, &method, &payStatus, &orderState,
		&o.CreatedAt, &o.UpdatedAt,
		&item.ID, &item.ProductID, &item.Quantity, &item.Price.Amount, &itemCurrency, &item.CreatedAt)
	if err != nil {
		return o, item, err
	}

	o, err = mapOrderFields(o, totalCurrency, method, payStatus, orderState)
	if err != nil {
		return o, item, err
	}

	parsedCurrency, err := currency.ParseISO(itemCurrency)
	if err != nil {
		return o, item, fmt.Errorf("currency[%s] is not valid: %w", itemCurrency, err)
	}
	item.Price.Currency = parsedCurrency
	item.OrderID = o.ID

	return o, item, nil
}

func mapOrderFields(o domain.Order, totalCurrency, method, payStatus, orderState string) (domain.Order, error) {
	parsedCurrency, err := currency.ParseISO(totalCurrency)
	if err != nil {
		return o, fmt.Errorf("currency[%s] is not valid: %w", totalCurrency, err)
	}
	o.Total.Currency = parsedCurrency

	status, err := domain.ToOrderStatus(orderState)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", orderState, err)
	}
	o.Status = status

	paymentStatus, err := domain.ToPaymentStatus(payStatus)
	if err != nil {
		return o, fmt.Errorf("domain.ToPaymentStatus[%s]: %w", payStatus, err)
	}
	o.PaymentStatus = paymentStatus

	o.PaymentMethod = domain.PaymentMethod(method)

	return o, nil
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
