package logger

import "context"

// contextKey is unexported so no other package can collide with our
// context values.
type contextKey struct{}

var requestIDKey = contextKey{}

// WithRequestID stores the request ID so the HTTP request logger can
// correlate log lines with the X-Request-ID header.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request ID carried by the context, or "" when the
// request never passed through the RequestID middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
