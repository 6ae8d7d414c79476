// Package resource provides shared budgets for extraction and model IO.
//
// A Controller bounds the transient scratch memory used by intermediate
// feature matrices, the number of concurrent extraction workers, and the IO
// throughput consumed by model uploads/downloads. Every Acquire has a paired
// Release that must run on all exit paths.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// ScratchLimitBytes is the hard limit for transient matrix memory.
	// If 0, no hard limit is enforced (only tracking).
	ScratchLimitBytes int64

	// MaxWorkers is the maximum number of concurrent extraction workers.
	// If 0, defaults to 1.
	MaxWorkers int64

	// IOLimitBytesPerSec caps model store upload/download throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages the shared budgets. A nil *Controller is valid and
// enforces nothing.
type Controller struct {
	cfg Config

	scratchSem  *semaphore.Weighted // nil if unlimited
	scratchUsed atomic.Int64

	workerSem *semaphore.Weighted

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		cfg:       cfg,
		workerSem: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.ScratchLimitBytes > 0 {
		c.scratchSem = semaphore.NewWeighted(cfg.ScratchLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireScratch reserves scratch memory for a transient matrix.
// If a hard limit is configured and usage would exceed it, this blocks until
// memory is available or ctx is canceled.
func (c *Controller) AcquireScratch(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.scratchSem != nil {
		if err := c.scratchSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.scratchUsed.Add(bytes)
	return nil
}

// TryAcquireScratch reserves scratch memory without blocking.
// Returns true if acquired, false if the limit would be exceeded.
func (c *Controller) TryAcquireScratch(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.scratchSem != nil {
		if !c.scratchSem.TryAcquire(bytes) {
			return false
		}
	}

	c.scratchUsed.Add(bytes)
	return true
}

// ReleaseScratch releases reserved scratch memory.
func (c *Controller) ReleaseScratch(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.scratchSem != nil {
		c.scratchSem.Release(bytes)
	}
	c.scratchUsed.Add(-bytes)
}

// ScratchUsage returns the currently reserved scratch memory in bytes.
func (c *Controller) ScratchUsage() int64 {
	if c == nil {
		return 0
	}
	return c.scratchUsed.Load()
}

// AcquireWorker reserves an extraction worker slot, blocking while all slots
// are busy.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.workerSem.Acquire(ctx, 1)
}

// TryAcquireWorker reserves a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	return c.workerSem.TryAcquire(1)
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workerSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}
