package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestPool_RunsAllTasks(t *testing.T) {
	const n = 50
	pool := New(4, n)

	var done int64
	for i := 0; i < n; i++ {
		pool.Submit(func(context.Context) error {
			atomic.AddInt64(&done, 1)
			return nil
		})
	}
	pool.Close()

	for res := range pool.Run(context.Background()) {
		if res.Err != nil {
			t.Fatalf("unexpected err: %v", res.Err)
		}
	}
	if done != n {
		t.Fatalf("expected %d tasks run, got %d", n, done)
	}
}

func TestPool_ReportsTaskErrors(t *testing.T) {
	pool := New(2, 3)
	boom := errors.New("boom")

	pool.Submit(func(context.Context) error { return nil })
	pool.Submit(func(context.Context) error { return boom })
	pool.Submit(func(context.Context) error { return nil })
	pool.Close()

	failures := 0
	for res := range pool.Run(context.Background()) {
		if res.Err != nil {
			failures++
			if !errors.Is(res.Err, boom) {
				t.Fatalf("unexpected err: %v", res.Err)
			}
		}
	}
	if failures != 1 {
		t.Fatalf("expected 1 failure, got %d", failures)
	}
}

func TestPool_DrainTerminatesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	pool := New(2, 4)
	for i := 0; i < 4; i++ {
		pool.Submit(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
	}
	pool.Close()

	results := pool.Run(ctx)
	cancel()

	// The drain must end even though every task blocked until cancellation.
	for range results {
	}
}
