package auth

import "context"

// Principal identifies the authenticated caller for the duration of a request.
type Principal struct {
	UserID string
}

type principalKey struct{}

// WithPrincipal stores the authenticated principal on the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if ctx == nil || p.UserID == "" {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext retrieves the authenticated principal, if any. Requests
// without a valid bearer token carry no principal; protected handlers must
// check the second return value and reject unauthenticated callers themselves.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.UserID != ""
}
