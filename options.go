package matrixstore

import (
	"log/slog"

	"github.com/hupe1980/matrixstore/codec"
)

const (
	defaultDateTable      = "date"
	defaultDateColumn     = "date"
	defaultPracticeTable  = "practice"
	defaultPracticeColumn = "code"
)

type tableRef struct {
	table  string
	column string
}

type options struct {
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
	maxQueries       int64
	mmapSize         int64
	prefetch         bool
	dates            tableRef
	practices        tableRef
	fetchRateLimit   int64
}

// Option configures Open and OpenRemote.
type Option func(*options)

// WithCodec configures the codec used to decode blob columns.
//
// If nil is passed, codec.Default (little-endian float64) is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &matrixstore.BasicMetricsCollector{}
//	db, _ := matrixstore.Open(ctx, path, matrixstore.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := matrixstore.NewJSONLogger(slog.LevelInfo)
//	db, _ := matrixstore.Open(ctx, path, matrixstore.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMaxConcurrentQueries bounds the number of row sequences open at once.
// Query blocks until a slot is free or its context is done. n <= 0 means
// unlimited.
func WithMaxConcurrentQueries(n int) Option {
	return func(o *options) {
		o.maxQueries = int64(n)
	}
}

// WithMmapSize enables SQLite memory-mapped I/O for up to n bytes of the file.
// Only the default pure-Go driver honours it.
func WithMmapSize(n int64) Option {
	return func(o *options) {
		o.mmapSize = n
	}
}

// WithPrefetch maps the data file for the lifetime of the store and asks
// the kernel to read it ahead into the page cache.
func WithPrefetch() Option {
	return func(o *options) {
		o.prefetch = true
	}
}

// WithDateTable overrides the table and key column of the date index.
// The table must also have an "offset" column.
func WithDateTable(table, keyColumn string) Option {
	return func(o *options) {
		o.dates = tableRef{table: table, column: keyColumn}
	}
}

// WithPracticeTable overrides the table and key column of the practice index.
// The table must also have an "offset" column.
func WithPracticeTable(table, keyColumn string) Option {
	return func(o *options) {
		o.practices = tableRef{table: table, column: keyColumn}
	}
}

// WithFetchRateLimit caps OpenRemote downloads at bytesPerSec.
// Zero means unlimited. Open ignores it.
func WithFetchRateLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.fetchRateLimit = bytesPerSec
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		dates:            tableRef{table: defaultDateTable, column: defaultDateColumn},
		practices:        tableRef{table: defaultPracticeTable, column: defaultPracticeColumn},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
