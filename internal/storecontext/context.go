package storecontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// StoreContextKey is the request context key for the active store ID.
type StoreContextKey struct{}

// UserContextKey is the request context key for the acting user ID.
type UserContextKey struct{}

// WithStoreID stores the store ID in the context.
func WithStoreID(ctx context.Context, storeID snowflake.ID) context.Context {
	return context.WithValue(ctx, StoreContextKey{}, storeID)
}

// WithUserID stores the acting user ID in the context. The ID is opaque
// here; authentication happens upstream.
func WithUserID(ctx context.Context, userID snowflake.ID) context.Context {
	return context.WithValue(ctx, UserContextKey{}, userID)
}

// StoreIDFromContext returns the store ID from context, if set.
func StoreIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	return idFromValue(ctx.Value(StoreContextKey{}))
}

// UserIDFromContext returns the acting user ID from context, if set.
func UserIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	return idFromValue(ctx.Value(UserContextKey{}))
}

func idFromValue(value any) (snowflake.ID, bool) {
	switch typed := value.(type) {
	case int64:
		return snowflake.ID(typed), true
	case snowflake.ID:
		return typed, true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
