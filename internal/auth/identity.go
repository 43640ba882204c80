package auth

import "context"

// Identity is the authenticated caller
type Identity struct {
	ID    string
	Email string
}

// Key returns the identifier used for ownership and interest: the email when present, else the id
func (i Identity) Key() string {
	if i.Email != "" {
		return i.Email
	}
	return i.ID
}

type identityKey struct{}

// WithIdentity returns a context carrying the caller's identity
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// CurrentUser returns the identity stored in ctx, if any
func CurrentUser(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.Key() == "" {
		return Identity{}, false
	}
	return id, true
}
