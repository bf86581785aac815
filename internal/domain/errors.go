package domain

import "errors"

var (
	ErrUnauthenticated   = errors.New("no authenticated user")
	ErrNotFound          = errors.New("not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrWriteFailed       = errors.New("write failed")
	// ErrPartialWrite marks an order row left behind without its items.
	// Callers see ErrWriteFailed; this one is for logs and metrics.
	ErrPartialWrite     = errors.New("partial write")
	ErrStoreUnavailable = errors.New("store unavailable")
)
