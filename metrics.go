package matrixstore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems.
// observability.PrometheusCollector is a ready-made Prometheus implementation.
type MetricsCollector interface {
	// RecordOpen is called after each Open, successful or not.
	RecordOpen(duration time.Duration, err error)

	// RecordQuery is called when a row sequence finishes. rows is the
	// number of rows yielded, duration spans from Query to Close.
	RecordQuery(rows int, duration time.Duration, err error)

	// RecordDecode is called for each blob cell passed to the codec.
	RecordDecode(bytes int, err error)

	// RecordFetch is called after each remote fetch.
	RecordFetch(bytes int64, skipped bool, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(time.Duration, error)               {}
func (NoopMetricsCollector) RecordQuery(int, time.Duration, error)         {}
func (NoopMetricsCollector) RecordDecode(int, error)                       {}
func (NoopMetricsCollector) RecordFetch(int64, bool, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount       atomic.Int64
	OpenErrors      atomic.Int64
	QueryCount      atomic.Int64
	QueryErrors     atomic.Int64
	QueryRows       atomic.Int64
	QueryTotalNanos atomic.Int64
	DecodeCount     atomic.Int64
	DecodeErrors    atomic.Int64
	DecodeBytes     atomic.Int64
	FetchCount      atomic.Int64
	FetchErrors     atomic.Int64
	FetchSkipped    atomic.Int64
	FetchBytes      atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(_ time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(rows int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryRows.Add(int64(rows))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecode(bytes int, err error) {
	b.DecodeCount.Add(1)
	b.DecodeBytes.Add(int64(bytes))
	if err != nil {
		b.DecodeErrors.Add(1)
	}
}

// RecordFetch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFetch(bytes int64, skipped bool, _ time.Duration, err error) {
	b.FetchCount.Add(1)
	if err != nil {
		b.FetchErrors.Add(1)
		return
	}
	if skipped {
		b.FetchSkipped.Add(1)
		return
	}
	b.FetchBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OpenCount:     b.OpenCount.Load(),
		OpenErrors:    b.OpenErrors.Load(),
		QueryCount:    b.QueryCount.Load(),
		QueryErrors:   b.QueryErrors.Load(),
		QueryRows:     b.QueryRows.Load(),
		QueryAvgNanos: b.getAvgQueryNanos(),
		DecodeCount:   b.DecodeCount.Load(),
		DecodeErrors:  b.DecodeErrors.Load(),
		DecodeBytes:   b.DecodeBytes.Load(),
		FetchCount:    b.FetchCount.Load(),
		FetchErrors:   b.FetchErrors.Load(),
		FetchSkipped:  b.FetchSkipped.Load(),
		FetchBytes:    b.FetchBytes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgQueryNanos() int64 {
	count := b.QueryCount.Load()
	if count == 0 {
		return 0
	}
	return b.QueryTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	OpenCount     int64
	OpenErrors    int64
	QueryCount    int64
	QueryErrors   int64
	QueryRows     int64
	QueryAvgNanos int64
	DecodeCount   int64
	DecodeErrors  int64
	DecodeBytes   int64
	FetchCount    int64
	FetchErrors   int64
	FetchSkipped  int64
	FetchBytes    int64
}
