// Package safe runs goroutines and callbacks with panic recovery, so a
// fault in one worker surfaces as an error instead of killing the process.
package safe

import (
	"context"
	"runtime/debug"

	"github.com/pg-sharding/pguuidv7/errors"
	"github.com/pg-sharding/pguuidv7/logging"
)

// RecoverFunc handles a recovered panic value.
type RecoverFunc func(r any)

// DefaultRecover logs the panic and its stack trace.
func DefaultRecover(r any) {
	logging.Default().Error("recovered from panic",
		logging.AnyAttr("panic", r),
		logging.StringAttr("stack", string(debug.Stack())),
	)
}

// SafeGo runs fn in a goroutine and recovers panics. The returned channel
// receives fn's error, or an error wrapping the panic value, and is closed
// when fn returns.
func SafeGo(ctx context.Context, fn func(context.Context) error, recoverFn RecoverFunc) <-chan error {
	errCh := make(chan error, 1)
	if recoverFn == nil {
		recoverFn = DefaultRecover
	}
	go func() {
		defer close(errCh)
		defer func() {
			if r := recover(); r != nil {
				recoverFn(r)
				errCh <- errors.Errorf("panic: %v", r)
			}
		}()
		if err := fn(ctx); err != nil {
			errCh <- err
		}
	}()
	return errCh
}

// SafeFunc wraps fn with panic recovery. A panic becomes the returned
// error, with the stack attached for the log.
func SafeFunc(fn func() error, recoverFn RecoverFunc) func() error {
	if recoverFn == nil {
		recoverFn = DefaultRecover
	}
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				recoverFn(r)
				err = errors.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}
}

// SafeCtxFunc wraps a context-aware function with panic recovery.
func SafeCtxFunc(fn func(context.Context) error, recoverFn RecoverFunc) func(context.Context) error {
	if recoverFn == nil {
		recoverFn = DefaultRecover
	}
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				recoverFn(r)
				err = errors.Errorf("panic: %v", r)
			}
		}()
		return fn(ctx)
	}
}
