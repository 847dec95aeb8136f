package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Pool manages long-running goroutines and ensures graceful shutdown
type Pool struct {
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	errOnce sync.Once
	errs    chan error
}

// NewPool creates a new worker pool whose tasks stop when parent is done
func NewPool(parent context.Context, logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(parent)
	return &Pool{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		errs:   make(chan error, 1),
	}
}

// Go runs task in the pool. The first task to fail with anything but context
// cancellation is reported on Err.
func (p *Pool) Go(name string, task func(ctx context.Context) error) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		err := task(p.ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			p.logger.Debug("✅ [Worker] Task finished", "task", name)
			return
		}

		p.logger.Error("❌ [Worker] Task failed", "task", name, "error", err)
		p.errOnce.Do(func() {
			p.errs <- err
		})
	}()
}

// Every runs task immediately and then once per interval until shutdown.
// Failures are logged and do not stop the loop.
func (p *Pool) Every(name string, interval time.Duration, task func(ctx context.Context) error) {
	p.Go(name, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if err := task(ctx); err != nil && ctx.Err() == nil {
				p.logger.Warn("⚠️ [Worker] Periodic task failed", "task", name, "error", err)
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})
}

// Err delivers the first task failure
func (p *Pool) Err() <-chan error {
	return p.errs
}

// Shutdown signals all workers to stop and waits up to timeout for them.
// It reports whether every task finished in time.
func (p *Pool) Shutdown(timeout time.Duration) bool {
	p.logger.Info("🛑 [Worker] Initiating graceful shutdown...")

	// Signal all workers to stop
	p.cancel()

	// Wait for all goroutines with timeout
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("✅ [Worker] All background tasks completed")
		return true
	case <-time.After(timeout):
		p.logger.Warn("⚠️ [Worker] Shutdown timeout exceeded, some tasks may not have completed",
			"timeout", timeout,
		)
		return false
	}
}
