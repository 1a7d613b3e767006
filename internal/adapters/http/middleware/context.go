package middleware

import "context"

type contextKey string

const (
	ctxKeyRequestID     contextKey = "request_id"
	ctxKeyCorrelationID contextKey = "correlation_id"
	ctxKeyAccountID     contextKey = "account_id"
)

// RequestIDFromContext returns the request ID the downstream clients forward.
func RequestIDFromContext(ctx context.Context) string {
	return valueFromContext(ctx, ctxKeyRequestID)
}

// CorrelationIDFromContext returns the correlation ID the downstream clients forward.
func CorrelationIDFromContext(ctx context.Context) string {
	return valueFromContext(ctx, ctxKeyCorrelationID)
}

// AccountIDFromContext returns the account stored by RequireAccount.
func AccountIDFromContext(ctx context.Context) string {
	return valueFromContext(ctx, ctxKeyAccountID)
}

// ContextWithRequestID stores a request ID in the context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// ContextWithCorrelationID stores a correlation ID in the context.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationID, id)
}

// ContextWithAccountID stores the account in the context.
func ContextWithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, ctxKeyAccountID, accountID)
}

func valueFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(key).(string)

	return id
}
