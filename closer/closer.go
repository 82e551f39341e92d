// Package closer provides utilities for managing resource cleanup
// with support for graceful shutdown via OS signals.
package closer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"github.com/pg-sharding/pguuidv7/errors"
)

// Closer represents resources that return an error on closure.
// Matches the standard io.Closer interface.
type Closer = io.Closer

// CloserFunc adapts a function to the Closer interface.
type CloserFunc func() error

// Close implements the Closer interface.
func (f CloserFunc) Close() error {
	return f()
}

// LIFOCloser manages resources in Last-In-First-Out order.
// Provides thread-safe registration and cleanup of resources.
type LIFOCloser struct {
	mu      sync.Mutex
	closers []Closer
}

// NewLIFOCloser creates a new LIFOCloser instance.
func NewLIFOCloser() *LIFOCloser {
	return &LIFOCloser{
		closers: make([]Closer, 0),
	}
}

// Add registers closers for deferred cleanup. Thread-safe method.
func (lc *LIFOCloser) Add(closers ...Closer) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.closers = append(lc.closers, closers...)
}

// Close cleans up all registered resources in reverse order (LIFO).
// Every resource is closed regardless of individual errors; failures are
// merged into a single flat multi-error.
func (lc *LIFOCloser) Close() error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	var result error
	for i := len(lc.closers) - 1; i >= 0; i-- {
		if err := lc.closers[i].Close(); err != nil {
			result = errors.Append(result, errors.Wrap(err, "closer: close resource"))
		}
	}
	return errors.Flatten(result)
}

// CloseOnSignalWithContext combines signal handling with context
// cancellation. Initiates cleanup on either a received signal or context
// cancellation, whichever comes first.
func CloseOnSignalWithContext(ctx context.Context, lc *LIFOCloser, signals ...os.Signal) error {
	closeCtx, stop := signal.NotifyContext(ctx, signals...)
	defer stop()

	<-closeCtx.Done()
	slog.Info("initiating shutdown", slog.Any("reason", closeCtx.Err()))

	return lc.Close()
}

// CloseOnSignalContext creates a context-aware shutdown handler for
// integration with context-based systems like HTTP servers.
func CloseOnSignalContext(lc *LIFOCloser, signals ...os.Signal) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return CloseOnSignalWithContext(ctx, lc, signals...)
	}
}
