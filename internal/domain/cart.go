package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the single live basket of one owner, created lazily on first access.
type Cart struct {
	ID      uuid.UUID
	OwnerID string
	Items   []CartItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Total is the sum of price times quantity over the current items,
// recomputed on every call.
func (c Cart) Total() Money {
	var total Money
	for i, item := range c.Items {
		line := item.Price.Mul(item.Quantity)
		if i == 0 {
			total = line
			continue
		}
		total = total.Add(line)
	}
	return total
}

type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Price     Money
	Note      string

	// Product is a catalog annotation, nil when the lookup failed
	// or the product no longer exists.
	Product *Product

	CreatedAt time.Time
	UpdatedAt time.Time
}
