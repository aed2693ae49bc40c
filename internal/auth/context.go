package auth

import (
	"context"

	"cms-server/internal/domain"
)

type identityContextKey struct{}

// WithIdentity stores the resolved caller in ctx.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the caller stored in ctx, or the anonymous identity.
func IdentityFromContext(ctx context.Context) domain.Identity {
	if ctx == nil {
		return domain.Anonymous
	}
	identity, _ := ctx.Value(identityContextKey{}).(domain.Identity)
	return identity
}
