// Package security carries the authenticated user's identity through
// the request context for attribution.
package security

import "context"

type userIDKey struct{}

// WithUserID stores the authenticated user's ID in context. Set once
// per request by the user-context middleware after the JWT check.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID returns the authenticated user's ID, or "" for unauthenticated
// flows such as checkout and the CLIs. Repositories use it to fill
// created_by and updated_by columns.
func GetUserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey{}).(string); ok {
		return uid
	}
	return ""
}
