// Package session carries the signed-in user through calls and keeps API tokens on disk.
package session

import "context"

type ctxKey string

const userIDKey ctxKey = "tm.userID"

// WithUserID stores the signed-in user ID in context.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx fetches the user ID from context; empty IDs count as absent.
func UserIDFromCtx(ctx context.Context) (string, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
