package logger

import "context"

type ctxKey struct{}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContextOr returns the logger stored by WithContext, or l without one.
func FromContextOr(ctx context.Context, l Logger) Logger {
	if scoped, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return scoped
	}
	return l
}
