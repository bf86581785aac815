package domain

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID        uuid.UUID
	Name      string
	ImageURL  string
	Available bool
	Price     Money

	CreatedAt time.Time
	UpdatedAt time.Time
}
