// Package future provides single-assignment values that are settled exactly
// once and may be awaited from any number of goroutines.
//
// A Future is the Go counterpart of a promise: it is handed to a caller before
// the value is known and settled later by whoever owns the resolve/reject
// pair returned from New. Await never blocks past the caller's context.
package future

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// Awaitable is implemented by every Future regardless of its value type.
// It lets untyped code (e.g. the pause capability) accept a typed future.
type Awaitable interface {
	AwaitAny(ctx context.Context) (any, error)
	Done() <-chan struct{}
}

// Future is a value of type T that becomes available at some later point.
//
// Thread-safety: all methods are safe for concurrent use.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

// PanicError is the rejection reason of a Go future whose function panicked.
type PanicError struct {
	Value any
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// New creates an unsettled future together with its resolve and reject
// functions. Only the first call to either function has any effect.
func New[T any]() (*Future[T], func(T), func(error)) {
	f := &Future[T]{done: make(chan struct{})}
	resolve := func(v T) { f.settle(v, nil) }
	reject := func(err error) {
		var zero T
		f.settle(zero, err)
	}
	return f, resolve, reject
}

// Resolved returns a future already settled with v.
func Resolved[T any](v T) *Future[T] {
	f, resolve, _ := New[T]()
	resolve(v)
	return f
}

// Rejected returns a future already settled with err.
func Rejected[T any](err error) *Future[T] {
	f, _, reject := New[T]()
	reject(err)
	return f
}

// Go runs fn in a new goroutine and returns a future for its result.
// A panic inside fn rejects the future with a *PanicError.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f, resolve, reject := New[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				reject(&PanicError{Value: r, Stack: string(debug.Stack())})
			}
		}()
		v, err := fn(ctx)
		if err != nil {
			reject(err)
			return
		}
		resolve(v)
	}()
	return f
}

func (f *Future[T]) settle(v T, err error) {
	f.once.Do(func() {
		f.val = v
		f.err = err
		close(f.done)
	})
}

// Done returns a channel that is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	default:
	}

	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitAny implements Awaitable.
func (f *Future[T]) AwaitAny(ctx context.Context) (any, error) {
	v, err := f.Await(ctx)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Then returns a future settled with fn applied to f's value.
// A rejection of f skips fn and propagates unchanged.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out, resolve, reject := New[U]()
	go func() {
		<-f.done
		if f.err != nil {
			reject(f.err)
			return
		}
		u, err := fn(f.val)
		if err != nil {
			reject(err)
			return
		}
		resolve(u)
	}()
	return out
}

// From adapts an arbitrary value into a *Future[any].
// Futures of any type are awaited; every other value resolves immediately.
func From(v any) *Future[any] {
	switch val := v.(type) {
	case *Future[any]:
		return val
	case Awaitable:
		out, resolve, reject := New[any]()
		go func() {
			res, err := val.AwaitAny(context.Background())
			if err != nil {
				reject(err)
				return
			}
			resolve(res)
		}()
		return out
	default:
		return Resolved[any](v)
	}
}

// Settled returns a channel closed once every given future has settled,
// whether resolved or rejected.
func Settled(fs ...Awaitable) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		for _, f := range fs {
			<-f.Done()
		}
		close(out)
	}()
	return out
}
