// Package lifecycle coordinates startup, background work, and shutdown for
// the docket service.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator manages startup hooks, long-running loops, and shutdown hooks.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup
	started    chan struct{}
	startOnce  sync.Once
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:     ctx,
		cancel:  cancel,
		started: make(chan struct{}),
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup registers a function to run concurrently during startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown registers a function to run concurrently during shutdown.
// Shutdown hooks should block on <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// Run starts fn once all startup hooks have completed. fn receives the
// coordinator context and must return when it is cancelled; Shutdown waits
// for it alongside the shutdown hooks.
func (c *Coordinator) Run(fn func(ctx context.Context)) {
	c.shutdownWg.Go(func() {
		select {
		case <-c.started:
		case <-c.ctx.Done():
			return
		}
		fn(c.ctx)
	})
}

// Ready returns true after all startup hooks have completed.
func (c *Coordinator) Ready() bool {
	select {
	case <-c.started:
		return true
	default:
		return false
	}
}

// WaitForStartup blocks until all startup hooks have completed, marks the
// coordinator ready, and releases loops registered with Run.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.startOnce.Do(func() {
		close(c.started)
	})
}

// Shutdown cancels the context and waits for shutdown hooks and running
// loops to complete within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
