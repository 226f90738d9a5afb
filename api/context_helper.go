package api

import (
	"context"
	"time"
)

// DefaultQueryTimeout bounds a request's store calls unless SetQueryTimeout changed it
const DefaultQueryTimeout = 10 * time.Second

var queryTimeout = DefaultQueryTimeout

// SetQueryTimeout changes the timeout WithQueryTimeout applies. Call it once at start up.
func SetQueryTimeout(d time.Duration) {
	if d > 0 {
		queryTimeout = d
	}
}

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, queryTimeout)
}
