package issuecache

import (
	"context"
	"sync"
)

// Result is a single-resolution asynchronous value. It resolves exactly once
// and replays the same value or error to every caller of Await, before or
// after resolution. Values delivered through a Result are shared by all
// observers and must be treated as read-only.
type Result[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newResult[T any]() *Result[T] {
	return &Result[T]{done: make(chan struct{})}
}

// Resolved returns a Result already resolved with v.
func Resolved[T any](v T) *Result[T] {
	r := newResult[T]()
	r.resolve(v, nil)
	return r
}

// Rejected returns a Result already failed with err.
func Rejected[T any](err error) *Result[T] {
	r := newResult[T]()
	var zero T
	r.resolve(zero, err)
	return r
}

// resolve settles the result. Calls after the first are ignored.
func (r *Result[T]) resolve(v T, err error) {
	r.once.Do(func() {
		r.val, r.err = v, err
		close(r.done)
	})
}

// Done is closed once the result has resolved.
func (r *Result[T]) Done() <-chan struct{} {
	return r.done
}

// Await blocks until the result resolves or ctx is done. Giving up on ctx
// does not cancel the underlying work; other observers still receive it.
func (r *Result[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		return r.val, r.err
	default:
	}
	select {
	case <-r.done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
