package resource

import (
	"context"
	"testing"
	"time"
)

func TestScratchTracking(t *testing.T) {
	c := NewController(Config{})

	if err := c.AcquireScratch(context.Background(), 1024); err != nil {
		t.Fatalf("AcquireScratch: %v", err)
	}
	if got := c.ScratchUsage(); got != 1024 {
		t.Errorf("ScratchUsage = %d, want 1024", got)
	}

	c.ReleaseScratch(1024)
	if got := c.ScratchUsage(); got != 0 {
		t.Errorf("ScratchUsage after release = %d, want 0", got)
	}
}

func TestScratchHardLimit(t *testing.T) {
	c := NewController(Config{ScratchLimitBytes: 100})

	if !c.TryAcquireScratch(60) {
		t.Fatal("first acquire should succeed")
	}
	if c.TryAcquireScratch(60) {
		t.Fatal("second acquire should exceed the limit")
	}

	c.ReleaseScratch(60)
	if !c.TryAcquireScratch(100) {
		t.Fatal("acquire after release should succeed")
	}
	c.ReleaseScratch(100)
}

func TestScratchBlocksUntilCancel(t *testing.T) {
	c := NewController(Config{ScratchLimitBytes: 10})
	if err := c.AcquireScratch(context.Background(), 10); err != nil {
		t.Fatalf("AcquireScratch: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.AcquireScratch(ctx, 5); err == nil {
		t.Fatal("expected acquire beyond limit to fail on context timeout")
	}
	c.ReleaseScratch(10)
}

func TestWorkerSlots(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})

	if !c.TryAcquireWorker() || !c.TryAcquireWorker() {
		t.Fatal("two worker slots should be available")
	}
	if c.TryAcquireWorker() {
		t.Fatal("third worker slot should be unavailable")
	}

	c.ReleaseWorker()
	if !c.TryAcquireWorker() {
		t.Fatal("released slot should be reusable")
	}
	c.ReleaseWorker()
	c.ReleaseWorker()
}

func TestNilControllerEnforcesNothing(t *testing.T) {
	var c *Controller

	if err := c.AcquireScratch(context.Background(), 1<<40); err != nil {
		t.Errorf("nil AcquireScratch: %v", err)
	}
	c.ReleaseScratch(1 << 40)
	if !c.TryAcquireWorker() {
		t.Error("nil TryAcquireWorker should succeed")
	}
	c.ReleaseWorker()
	if err := c.AcquireIO(context.Background(), 1<<30); err != nil {
		t.Errorf("nil AcquireIO: %v", err)
	}
	if c.ScratchUsage() != 0 {
		t.Error("nil ScratchUsage should be 0")
	}
}

func TestIOLimiter(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	// Within burst, the first acquisition should not block noticeably.
	start := time.Now()
	if err := c.AcquireIO(context.Background(), 1024); err != nil {
		t.Fatalf("AcquireIO: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("AcquireIO blocked for %v", elapsed)
	}
}
