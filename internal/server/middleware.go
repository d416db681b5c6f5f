package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/glamora/internal/storecontext"
)

const (
	HeaderStore = "X-Store-ID"
	HeaderUser  = "X-User-ID"
)

// StoreContext resolves the store and acting-user headers into the request
// context. Every /v1 route is store-scoped; a missing or malformed store
// header fails the request before any handler runs. The user id is opaque
// attribution only and stays optional.
func StoreContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID, err := snowflake.ParseString(strings.TrimSpace(c.GetHeader(HeaderStore)))
		if err != nil || storeID == 0 {
			AbortWithError(c, newValidationError("store_id", "invalid_store", "missing or invalid X-Store-ID header"))
			return
		}

		ctx := storecontext.WithStoreID(c.Request.Context(), storeID)
		if raw := strings.TrimSpace(c.GetHeader(HeaderUser)); raw != "" {
			if userID, err := snowflake.ParseString(raw); err == nil && userID != 0 {
				ctx = storecontext.WithUserID(ctx, userID)
			}
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
