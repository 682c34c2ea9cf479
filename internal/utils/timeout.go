package utils

import (
	"context"
	"sync/atomic"
	"time"
)

const DefaultDBTimeout = 5 * time.Second

var dbTimeout atomic.Int64

// ConfigureDBTimeout sets the per-statement database timeout. It is called
// once at startup from the configured pool setup; a non-positive value
// keeps the default.
func ConfigureDBTimeout(d time.Duration) {
	if d > 0 {
		dbTimeout.Store(int64(d))
	}
}

// WithDBTimeout bounds a single database call with the configured timeout.
func WithDBTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	d := time.Duration(dbTimeout.Load())
	if d <= 0 {
		d = DefaultDBTimeout
	}

	return context.WithTimeout(ctx, d)
}
