// Package errorgroup wraps errgroup.Group with panic recovery and keeps
// every worker error, not just the first one.
package errorgroup

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pg-sharding/pguuidv7/errors"
	"github.com/pg-sharding/pguuidv7/safe"
)

// SafeGroup runs workers like errgroup.Group but recovers panics and
// aggregates all collected errors into one multi-error on Wait.
type SafeGroup struct {
	eg      *errgroup.Group
	ctx     context.Context
	mu      sync.Mutex
	errs    []error
	recover safe.RecoverFunc
}

// Option configures a SafeGroup.
type Option func(*SafeGroup)

// WithRecover sets a custom panic recovery handler.
func WithRecover(fn safe.RecoverFunc) Option {
	return func(g *SafeGroup) {
		g.recover = fn
	}
}

// WithLimit caps the number of concurrently active workers.
func WithLimit(n int) Option {
	return func(g *SafeGroup) {
		g.eg.SetLimit(n)
	}
}

// WithContext returns a SafeGroup and a context that is cancelled the
// first time a worker returns an error or panics.
func WithContext(ctx context.Context, opts ...Option) (*SafeGroup, context.Context) {
	eg, ctx := errgroup.WithContext(ctx)
	g := &SafeGroup{
		eg:  eg,
		ctx: ctx,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.recover == nil {
		g.recover = safe.DefaultRecover
	}
	return g, ctx
}

// Go runs fn in a goroutine. The group context is passed to fn, a panic
// is recovered and recorded as an error.
func (g *SafeGroup) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				g.recover(r)
				err = errors.Errorf("panic: %v", r)
				g.collect(err)
			}
		}()
		if err = fn(g.ctx); err != nil {
			g.collect(err)
		}
		return err
	})
}

// Wait blocks until all workers finish and returns their errors merged
// into a single flat multi-error, or nil when every worker succeeded.
func (g *SafeGroup) Wait() error {
	_ = g.eg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Flatten(errors.Append(nil, g.errs...))
}

// Errors returns a copy of all errors collected so far.
func (g *SafeGroup) Errors() []error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]error{}, g.errs...)
}

func (g *SafeGroup) collect(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}
