package featprep

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordExtract is called after each extraction pass.
	// objects is the number of objects processed, duration is the total time
	// taken, err is nil if successful.
	RecordExtract(objects int, duration time.Duration, err error)

	// RecordFit is called after fitting a normalizer or projector.
	RecordFit(objects int, duration time.Duration, err error)

	// RecordSave is called after each model save.
	RecordSave(duration time.Duration, err error)

	// RecordLoad is called after each model load.
	RecordLoad(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordExtract(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordFit(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordSave(time.Duration, error)         {}
func (NoopMetricsCollector) RecordLoad(time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ExtractCount      atomic.Int64
	ExtractErrors     atomic.Int64
	ExtractObjects    atomic.Int64
	ExtractTotalNanos atomic.Int64
	FitCount          atomic.Int64
	FitErrors         atomic.Int64
	SaveCount         atomic.Int64
	SaveErrors        atomic.Int64
	LoadCount         atomic.Int64
	LoadErrors        atomic.Int64
}

// RecordExtract implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExtract(objects int, duration time.Duration, err error) {
	b.ExtractCount.Add(1)
	b.ExtractObjects.Add(int64(objects))
	b.ExtractTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ExtractErrors.Add(1)
	}
}

// RecordFit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFit(objects int, duration time.Duration, err error) {
	b.FitCount.Add(1)
	if err != nil {
		b.FitErrors.Add(1)
	}
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(duration time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(duration time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ExtractCount:    b.ExtractCount.Load(),
		ExtractErrors:   b.ExtractErrors.Load(),
		ExtractObjects:  b.ExtractObjects.Load(),
		ExtractAvgNanos: b.getAvgExtractNanos(),
		FitCount:        b.FitCount.Load(),
		FitErrors:       b.FitErrors.Load(),
		SaveCount:       b.SaveCount.Load(),
		SaveErrors:      b.SaveErrors.Load(),
		LoadCount:       b.LoadCount.Load(),
		LoadErrors:      b.LoadErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgExtractNanos() int64 {
	count := b.ExtractCount.Load()
	if count == 0 {
		return 0
	}
	return b.ExtractTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ExtractCount    int64
	ExtractErrors   int64
	ExtractObjects  int64
	ExtractAvgNanos int64
	FitCount        int64
	FitErrors       int64
	SaveCount       int64
	SaveErrors      int64
	LoadCount       int64
	LoadErrors      int64
}
