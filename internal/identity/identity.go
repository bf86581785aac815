// Package identity resolves the calling user from the request context.
// The surrounding application authenticates however it likes and stamps
// the user id onto the context it passes in.
package identity

import (
	"context"

	"github.com/nikolayk812/dishhub/internal/port"
)

type contextKey struct{}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

type contextIdentity struct{}

// FromContext is a port.Identity reading the user id stamped by
// WithUserID. A missing id resolves to the empty string, which callers
// surface as domain.ErrUnauthenticated.
func FromContext() port.Identity {
	return contextIdentity{}
}

func (contextIdentity) CurrentUserID(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(contextKey{}).(string)
	return userID, nil
}
