// Package identity defines the verified-identity contract: an opaque bearer
// token goes in, a verified (email, name) pair comes out. The concrete
// verifier wraps tokens minted by the external identity provider; everything
// else in the app only sees the Identity value attached to the request
// context by the auth middleware.
package identity

import (
	"context"
	"errors"
)

// Identity is the verified subject of a request.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ErrInvalidToken is returned by a Verifier for any malformed, forged, or
// expired token. Verifier implementations must not leak their underlying
// error detail past this sentinel.
var ErrInvalidToken = errors.New("identity: invalid or expired token")

// Verifier validates a bearer token and returns the identity it asserts.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type ctxKey struct{}

// WithCtx stores id in ctx.
func WithCtx(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromCtx extracts the verified identity from ctx.
// ok is false when the auth middleware has not run.
func FromCtx(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
