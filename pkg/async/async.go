package async

import (
	"context"
	"sync"
	"time"
)

// Future represents the result of an asynchronous computation.
// Many goroutines may wait on the same Future.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Resolved returns a Future that is already complete.
func Resolved[U any](result U, err error) *Future[U] {
	f := &Future[U]{result: result, err: err, done: make(chan struct{})}
	close(f.done)
	return f
}

// Await waits for the asynchronous function to complete and returns its result and error.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitContext waits until the Future completes or ctx is done, whichever
// comes first. Giving up does not cancel the computation; other waiters still
// receive its result.
func (f *Future[U]) AwaitContext(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero U
		return zero, ctx.Err()
	}
}

// AwaitWithTimeout waits for the asynchronous function to complete with a timeout.
// If the timeout occurs before completion, returns ErrTimeout.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.result, f.err
	case <-timer.C:
		var zero U
		return zero, ErrTimeout
	}
}

// Done is closed once the Future completes.
func (f *Future[U]) Done() <-chan struct{} {
	return f.done
}

// IsComplete checks if the asynchronous function is complete without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async executes fn in its own goroutine and returns a Future for its result.
// A context that is already done completes the Future with ctx.Err() without
// calling fn.
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.result, f.err = fn(ctx, param)
	}()

	return f
}

// WaitAll waits for every future, stopping early when ctx is done or a future
// fails. Results are positional.
func WaitAll[U any](ctx context.Context, futures ...*Future[U]) ([]U, error) {
	results := make([]U, len(futures))

	for i, future := range futures {
		result, err := future.AwaitContext(ctx)
		if err != nil {
			return results, err
		}
		results[i] = result
	}

	return results, nil
}

// NewPromise returns a pending Future and the function that completes it.
// Only the first call to resolve has an effect.
func NewPromise[U any]() (*Future[U], func(U, error)) {
	f := &Future[U]{done: make(chan struct{})}
	var once sync.Once
	resolve := func(result U, err error) {
		once.Do(func() {
			f.result, f.err = result, err
			close(f.done)
		})
	}
	return f, resolve
}
