package mongo

import (
	"context"
	"time"
)

// OpTimeout bounds every note and user store call.
const OpTimeout = 5 * time.Second

// WithRepoTimeout bounds ctx by d unless the caller's own deadline is already
// sooner or ctx is done, in which case ctx is returned with a no-op cancel.
func WithRepoTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx.Err() != nil {
		return ctx, func() {}
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= d {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func repoCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return WithRepoTimeout(parent, OpTimeout)
}
