package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextUserKey    ctxKey = "currentUser"
	ContextVariantKey ctxKey = "clientVariant"
)

// Variant tells handlers which mount served the request.
type Variant string

const (
	VariantBrowser Variant = "browser"
	VariantMobile  Variant = "mobile"
)

func VariantFromContext(ctx context.Context) Variant {
	if ctx == nil {
		return VariantBrowser
	}
	if v, ok := ctx.Value(ContextVariantKey).(Variant); ok {
		return v
	}
	return VariantBrowser
}

func ContextWithVariant(ctx context.Context, v Variant) context.Context {
	return context.WithValue(ctx, ContextVariantKey, v)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
