package domain

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID uuid.UUID
	// DisplayCode is the human-readable order code shown to customers
	// and staff. It is not guaranteed unique, the UUID is the key.
	DisplayCode string

	CustomerID      string
	PhoneNumber     string
	DeliveryAddress string
	Note            string

	Total         Money
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	Status        OrderStatus

	Items []OrderItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem carries the unit price as it was in the cart at checkout,
// never re-read from the catalog.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Price     Money

	CreatedAt time.Time
}
