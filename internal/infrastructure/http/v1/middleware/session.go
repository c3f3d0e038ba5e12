package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appctx "crosstab/internal/core/context"
	"crosstab/internal/core/id"
)

const (
	HeaderRequestID  = "X-Request-ID"
	HeaderSessionID  = "X-Session-ID"
	HeaderPyrusRetry = "X-Pyrus-Retry"
)

// Session middleware starts a run session for the request. Every log line
// written with the request context carries its short session id.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		sess := &appctx.Session{
			SessionID: id.NewSession(),
			RequestID: requestID,
			Retry:     c.GetHeader(HeaderPyrusRetry),
		}

		ctx := appctx.WithSession(c.Request.Context(), sess)
		c.Request = c.Request.WithContext(ctx)

		c.Set("request_id", requestID)
		c.Set("session_id", sess.SessionID)

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderSessionID, sess.SessionID)

		c.Next()
	}
}
