package tools

import "context"

// Identity is what submit_answer fills into a payload when the reasoning
// service leaves a field out.
type Identity struct {
	Email  string
	Secret string
	URL    string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityOf(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
