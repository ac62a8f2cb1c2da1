package service

import (
	"context"
	"sync"

	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/result"
)

// detached runs a write on a context that ignores the caller's cancellation.
// Once started, fn runs to completion even if the caller goes away; the caller
// then gets a transport error carrying ctx.Err(). A context that is already done
// dispatches nothing.
func detached[T any](ctx context.Context, wg *sync.WaitGroup, fn func(context.Context) result.Result[T]) result.Result[T] {
	if err := ctx.Err(); err != nil {
		return result.Failure[T](errs.Transport(err))
	}

	done := make(chan result.Result[T], 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		done <- fn(context.WithoutCancel(ctx))
	}()

	select {
	case r := <-done:
		return r
	case <-ctx.Done():
		return result.Failure[T](errs.Transport(ctx.Err()))
	}
}
