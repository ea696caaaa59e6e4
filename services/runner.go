// services/runner.go
package services

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// Runner supervises background goroutines. Every spawned task gets
// panic recovery and a context cancelled on shutdown, and Shutdown
// waits for in-flight tasks to drain.
type Runner struct {
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewRunner(logger *zap.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{logger: logger, ctx: ctx, cancel: cancel}
}

// Go spawns fn on its own goroutine. onPanic, if non-nil, runs after a
// recovered panic so the caller can mark owned state as failed.
func (r *Runner) Go(name string, fn func(ctx context.Context), onPanic func(recovered any)) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return fmt.Errorf("runner is shut down, rejecting task %q", name)
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				r.logger.Error("background task panicked",
					zap.String("task", name),
					zap.Any("panic", recovered),
					zap.ByteString("stack", debug.Stack()))
				if onPanic != nil {
					onPanic(recovered)
				}
			}
		}()
		fn(r.ctx)
	}()
	return nil
}

// Shutdown cancels all task contexts and waits for them to finish or
// for ctx to expire.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("background tasks did not drain: %w", ctx.Err())
	}
}
