package watch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/result"
)

func next[T any](t *testing.T, ch <-chan result.Result[T]) result.Result[T] {
	t.Helper()
	select {
	case r, ok := <-ch:
		require.True(t, ok, "channel closed")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for emission")
	}
	panic("unreachable")
}

func TestHub_CoalescesSignals(t *testing.T) {
	var h Hub
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Notify()
	h.Notify()
	h.Notify()

	<-ch
	select {
	case <-ch:
		t.Fatal("signals were not coalesced")
	default:
	}
}

func TestHub_CancelIsIdempotent(t *testing.T) {
	var h Hub
	_, c1 := h.Subscribe()
	_, c2 := h.Subscribe()
	require.Equal(t, 2, h.Len())

	c1()
	c1()
	require.Equal(t, 1, h.Len())
	c2()
	require.Equal(t, 0, h.Len())

	h.Notify()
}

func TestObserve_LoadingThenSnapshots(t *testing.T) {
	var h Hub
	var n atomic.Int32
	load := func(context.Context) (int, error) { return int(n.Load()), nil }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := Observe(ctx, h.Subscribe, load)

	require.True(t, next(t, ch).IsLoading())

	v, ok := next(t, ch).Value()
	require.True(t, ok)
	require.Equal(t, 0, v)

	n.Store(5)
	h.Notify()
	v, ok = next(t, ch).Value()
	require.True(t, ok)
	require.Equal(t, 5, v)
}

func TestObserve_NoEmissionWithoutChange(t *testing.T) {
	var h Hub
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := Observe(ctx, h.Subscribe, func(context.Context) (string, error) { return "x", nil })

	next(t, ch)
	next(t, ch)

	select {
	case r := <-ch:
		t.Fatalf("unexpected emission: %v", r.State())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestObserve_LoadErrorIsStorageKind(t *testing.T) {
	var h Hub
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := Observe(ctx, h.Subscribe, func(context.Context) (int, error) { return 0, errors.New("disk full") })

	next(t, ch)
	r := next(t, ch)
	require.True(t, r.IsError())
	require.Equal(t, errs.KindStorage, r.Kind())
	require.Equal(t, "disk full", r.Message())
}

func TestObserve_ClosesOnCancel(t *testing.T) {
	var h Hub
	ctx, cancel := context.WithCancel(context.Background())
	ch := Observe(ctx, h.Subscribe, func(context.Context) (int, error) { return 1, nil })

	next(t, ch)
	next(t, ch)
	cancel()

	select {
	case _, ok := <-ch:
		require.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
	require.Eventually(t, func() bool { return h.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSingle(t *testing.T) {
	ch := Single(result.Failure[int](errs.NoSession()))
	r := <-ch
	require.Equal(t, errs.KindNoSession, r.Kind())
	_, ok := <-ch
	require.False(t, ok)
}
