package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // the platform signs webhooks with HMAC-SHA1
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"crosstab/internal/core/apperror"
	"crosstab/pkg/logger"
)

// HeaderSignature carries the hex HMAC-SHA1 of the raw webhook body.
const HeaderSignature = "X-Pyrus-Sig"

// MaxWebhookBody bounds the webhook body read for signing.
const MaxWebhookBody = 10 << 20

var errSignatureMismatch = errors.New("signature mismatch")

// VerifySignature checks sig against the HMAC-SHA1 of body keyed by secret.
func VerifySignature(secret, body []byte, sig string) error {
	got, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(sig)))
	if err != nil {
		return errSignatureMismatch
	}
	mac := hmac.New(sha1.New, secret)
	_, _ = mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), got) {
		return errSignatureMismatch
	}
	return nil
}

// Signature middleware authenticates platform webhooks. Unsigned requests
// are acknowledged with an empty 200 and not processed. With skip set, a
// bad signature is logged and let through.
func Signature(secret string, skip bool) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		sig := c.GetHeader(HeaderSignature)
		if sig == "" {
			logger.Debug(c.Request.Context(), "unsigned webhook ignored")
			c.String(http.StatusOK, "")
			c.Abort()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxWebhookBody))
		if err != nil {
			_ = c.Error(apperror.NewValidation("cannot read request body").WithCause(err))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if err := VerifySignature(key, body, sig); err != nil {
			if !skip {
				abortUnauthorized(c, "invalid webhook signature")
				return
			}
			logger.Warn(c.Request.Context(), "webhook signature mismatch, accepted by configuration")
		}

		c.Next()
	}
}
