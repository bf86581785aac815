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

type productRepository struct {
	db DB
}

func NewProduct(pool *pgxpool.Pool) port.CatalogRepository {
	return &productRepository{db: pool}
}

func (r *productRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	var (
		p            domain.Product
		currencyCode string
	)

	row := r.db.QueryRow(ctx, `
		SELECT id, name, image_url, available, price_amount, price_currency, created_at, updated_at
		FROM products WHERE id = $1`,
		productID)

	err := row.Scan(&p.ID, &p.Name, &p.ImageURL, &p.Available,
		&p.Price.Amount, &currencyCode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
		}
		return p, fmt.Errorf("row.Scan: %w", classifyError(err))
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return p, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}
	p.Price.Currency = parsedCurrency

	return p, nil
}

func (r *productRepository) InsertProduct(ctx context.Context, product domain.Product) (uuid.UUID, error) {
	var productID uuid.UUID

	row := r.db.QueryRow(ctx, `
		INSERT INTO products (name, image_url, available, price_amount, price_currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		product.Name, product.ImageURL, product.Available,
		product.Price.Amount, product.Price.Currency.String())

	if err := row.Scan(&productID); err != nil {
		return uuid.Nil, fmt.Errorf("row.Scan: %w", classifyError(err))
	}

	return productID, nil
}

func (r *productRepository) UpdatePrice(ctx context.Context, productID uuid.UUID, price domain.Money) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE products SET price_amount = $2, price_currency = $3, updated_at = now()
		WHERE id = $1`,
		productID, price.Amount, price.Currency.String())
	if err != nil {
		return fmt.Errorf("db.Exec: %w", classifyError(err))
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
	}

	return nil
}
