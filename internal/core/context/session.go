// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"crosstab/internal/core/id"
)

// Session describes one webhook delivery (or one CLI invocation) being processed.
type Session struct {
	SessionID string
	RequestID string
	TaskID    int
	Retry     string
}

type sessionKey struct{}

// WithSession adds Session to context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// GetSession returns Session from context.
func GetSession(ctx context.Context) *Session {
	if v, ok := ctx.Value(sessionKey{}).(*Session); ok {
		return v
	}
	return nil
}

// GetSessionID returns the session ID from context or a fresh one.
func GetSessionID(ctx context.Context) string {
	if s := GetSession(ctx); s != nil && s.SessionID != "" {
		return s.SessionID
	}
	return id.NewSession()
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if s := GetSession(ctx); s != nil {
		return s.RequestID
	}
	return ""
}
