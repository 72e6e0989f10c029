package middleware

import (
	"context"

	"github.com/wostup/pitchit-api/shared/auth"
)

type contextKey struct{}

var claimsKey = contextKey{}

// WithClaims stores validated access claims in ctx.
func WithClaims(ctx context.Context, claims *auth.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the access claims set by Authenticate, or nil.
func ClaimsFromContext(ctx context.Context) *auth.AccessClaims {
	claims, _ := ctx.Value(claimsKey).(*auth.AccessClaims)
	return claims
}
