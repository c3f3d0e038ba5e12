// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"crosstab/internal/core/apperror"
	"crosstab/pkg/logger"
)

// Recovery turns a panic in a handler into a 500. The stack is logged with
// the session; the client only sees the session id to quote.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				_ = c.Error(
					apperror.NewInternal(fmt.Errorf("panic: %v", err)).
						WithDetail("request_id", c.GetString("request_id")).
						WithDetail("session_id", c.GetString("session_id")),
				)
				c.Abort()
			}
		}()
		c.Next()
	}
}
