package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/dishhub/internal/domain"
	"github.com/nikolayk812/dishhub/internal/port"
	"golang.org/x/text/currency"
)

type cartRepository struct {
	db DB
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{db: pool}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{db: tx}
}

// GetOrCreateCart upserts the one live cart per owner. The no-op update
// makes RETURNING yield the existing row on conflict, so two concurrent
// first accesses still converge on a single cart.
func (r *cartRepository) GetOrCreateCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	var c domain.Cart

	if ownerID == "" {
		return c, errors.New("ownerID is empty")
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO carts (owner_id) VALUES ($1)
		ON CONFLICT (owner_id) DO UPDATE SET owner_id = EXCLUDED.owner_id
		RETURNING id, owner_id, created_at, updated_at`,
		ownerID)

	if err := row.Scan(&c.ID, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return c, fmt.Errorf("row.Scan: %w", classifyError(err))
	}

	return c, nil
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	var c domain.Cart

	row := r.db.QueryRow(ctx, `
		SELECT id, owner_id, created_at, updated_at
		FROM carts WHERE owner_id = $1`,
		ownerID)

	if err := row.Scan(&c.ID, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c, fmt.Errorf("cart[%s]: %w", ownerID, domain.ErrNotFound)
		}
		return c, fmt.Errorf("row.Scan: %w", classifyError(err))
	}

	items, err := r.getItems(ctx, c.ID)
	if err != nil {
		return c, fmt.Errorf("r.getItems: %w", err)
	}
	c.Items = items

	return c, nil
}

func (r *cartRepository) AddItem(ctx context.Context, ownerID string, item domain.CartItem) (domain.CartItem, error) {
	var zero domain.CartItem

	if item.Quantity <= 0 {
		return zero, errors.New("quantity must be positive")
	}

	added, err := withTx(ctx, r.db, func(tx pgx.Tx) (domain.CartItem, error) {
		cart, err := NewCartWithTx(tx).GetOrCreateCart(ctx, ownerID)
		if err != nil {
			return zero, fmt.Errorf("GetOrCreateCart: %w", err)
		}

		// Merge-on-duplicate: quantity accumulates, the note is
		// overwritten, the first price snapshot wins.
		row := tx.QueryRow(ctx, `
			INSERT INTO cart_items (cart_id, product_id, quantity, price_amount, price_currency, note)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (cart_id, product_id) DO UPDATE
			SET quantity = cart_items.quantity + EXCLUDED.quantity,
			    note = EXCLUDED.note,
			    updated_at = now()
			RETURNING id, cart_id, product_id, quantity, price_amount, price_currency, note, created_at, updated_at`,
			cart.ID, item.ProductID, item.Quantity, item.Price.Amount, item.Price.Currency.String(), item.Note)

		merged, err := scanCartItemRow(row)
		if err != nil {
			return zero, fmt.Errorf("scanCartItemRow: %w", classifyError(err))
		}

		if err := touchCart(ctx, tx, cart.ID); err != nil {
			return zero, fmt.Errorf("touchCart: %w", classifyError(err))
		}

		return merged, nil
	})
	if err != nil {
		return zero, fmt.Errorf("withTx: %w", err)
	}

	return added, nil
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	// A quantity of zero or less means removal, not a zero-quantity row.
	if quantity <= 0 {
		return r.DeleteItem(ctx, itemID)
	}

	if _, err := withTx(ctx, r.db, func(tx pgx.Tx) (struct{}, error) {
		var cartID uuid.UUID

		row := tx.QueryRow(ctx, `
			UPDATE cart_items SET quantity = $2, updated_at = now()
			WHERE id = $1
			RETURNING cart_id`,
			itemID, quantity)

		if err := row.Scan(&cartID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return struct{}{}, fmt.Errorf("cart item[%s]: %w", itemID, domain.ErrNotFound)
			}
			return struct{}{}, fmt.Errorf("row.Scan: %w", classifyError(err))
		}

		if err := touchCart(ctx, tx, cartID); err != nil {
			return struct{}{}, fmt.Errorf("touchCart: %w", classifyError(err))
		}

		return struct{}{}, nil
	}); err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	if _, err := withTx(ctx, r.db, func(tx pgx.Tx) (struct{}, error) {
		var cartID uuid.UUID

		row := tx.QueryRow(ctx, `
			DELETE FROM cart_items WHERE id = $1
			RETURNING cart_id`,
			itemID)

		if err := row.Scan(&cartID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return struct{}{}, fmt.Errorf("cart item[%s]: %w", itemID, domain.ErrNotFound)
			}
			return struct{}{}, fmt.Errorf("row.Scan: %w", classifyError(err))
		}

		if err := touchCart(ctx, tx, cartID); err != nil {
			return struct{}{}, fmt.Errorf("touchCart: %w", classifyError(err))
		}

		return struct{}{}, nil
	}); err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

func (r *cartRepository) Clear(ctx context.Context, ownerID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM cart_items
		USING carts
		WHERE cart_items.cart_id = carts.id AND carts.owner_id = $1`,
		ownerID)
	if err != nil {
		return fmt.Errorf("db.Exec: %w", classifyError(err))
	}

	// No rows affected is fine: clearing an empty or absent cart succeeds.
	return nil
}

func (r *cartRepository) getItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, cart_id, product_id, quantity, price_amount, price_currency, note, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at`,
		cartID)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", classifyError(err))
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		item, err := scanCartItemRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanCartItemRow: %w", classifyError(err))
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", classifyError(err))
	}

	return items, nil
}

func touchCart(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}

func scanCartItemRow(row pgx.Row) (domain.CartItem, error) {
	var (
		item         domain.CartItem
		currencyCode string
	)

	err := row.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
		&item.Price.Amount, &currencyCode, &item.Note, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return domain.CartItem{}, err
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}
	item.Price.Currency = parsedCurrency

	return item, nil
}
