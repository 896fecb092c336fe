package middleware

import (
	"context"

	pkgAuth "github.com/angelmondragon/sweetshop-backend/pkg/auth"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (pkgAuth.Identity, bool) {
	if ctx == nil {
		return pkgAuth.Identity{}, false
	}
	identity, ok := ctx.Value(ctxIdentity).(pkgAuth.Identity)
	return identity, ok
}

func UserIDFromContext(ctx context.Context) int64 {
	identity, _ := IdentityFromContext(ctx)
	return identity.UserID
}

// WithIdentity injects the caller identity into the context.
func WithIdentity(ctx context.Context, identity pkgAuth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}
