package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"crosstab/pkg/logger"
)

// quietPrefixes are probe endpoints logged at debug level.
var quietPrefixes = []string{"/health/", "/diagnostics/"}

// Logger middleware logs each request with timing, status and webhook
// delivery details. Session fields come from the request context.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		l := log.WithContext(c.Request.Context())
		write := l.Infow
		for _, p := range quietPrefixes {
			if strings.HasPrefix(path, p) {
				write = l.Debugw
				break
			}
		}

		kv := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"bytes_in", c.Request.ContentLength,
			"bytes_out", c.Writer.Size(),
		}
		if c.Request.Method == http.MethodPost {
			kv = append(kv, "signed", c.GetHeader(HeaderSignature) != "")
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			kv = append(kv, "error", errs)
		}
		write("http request", kv...)
	}
}
