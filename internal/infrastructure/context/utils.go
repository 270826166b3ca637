// Package context provides context helpers shared by the service layers.
package context

import (
	"context"
	"time"
)

// WithOptionalTimeout derives a context that expires after d. A
// non-positive d returns parent unchanged with a no-op cancel.
func WithOptionalTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, d)
}
