// Package observability exports matrix store metrics to Prometheus.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/matrixstore"
)

// PrometheusCollector implements matrixstore.MetricsCollector on
// Prometheus histograms and counters.
type PrometheusCollector struct {
	opLatency    *prometheus.HistogramVec
	queryRows    prometheus.Histogram
	decodes      *prometheus.CounterVec
	decodeBytes  prometheus.Counter
	fetches      *prometheus.CounterVec
	fetchedBytes prometheus.Counter

	namespace  string
	registerer prometheus.Registerer
}

// Options configures a PrometheusCollector.
type Options struct {
	// Namespace prefixes every metric name. Default: "matrixstore".
	Namespace string
	// Registerer receives the collectors. Default: prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Buckets are the latency buckets in seconds. Default: prometheus.DefBuckets.
	Buckets []float64
}

var _ matrixstore.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates and registers the collector's metrics.
// It returns an error if a metric with the same name is already registered.
func NewPrometheusCollector(optFns ...func(*Options)) (*PrometheusCollector, error) {
	opts := Options{
		Namespace:  "matrixstore",
		Registerer: prometheus.DefaultRegisterer,
		Buckets:    prometheus.DefBuckets,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &PrometheusCollector{
		namespace:  opts.Namespace,
		registerer: opts.Registerer,
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of store operations",
			Buckets:   opts.Buckets,
		}, []string{"op", "status"}),
		queryRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "query_rows",
			Help:      "Rows yielded per query",
			Buckets:   []float64{0, 1, 10, 100, 1000, 10000, 100000},
		}),
		decodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "decodes_total",
			Help:      "Blob cells passed to the codec",
		}, []string{"status"}),
		decodeBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "decode_bytes_total",
			Help:      "Blob bytes passed to the codec",
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "fetches_total",
			Help:      "Remote file fetches",
		}, []string{"status"}),
		fetchedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "fetch_bytes_total",
			Help:      "Bytes downloaded by remote fetches",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.opLatency, c.queryRows, c.decodes, c.decodeBytes, c.fetches, c.fetchedBytes,
	} {
		if err := opts.Registerer.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// TrackInFlight registers a gauge that reports fn on every scrape.
// Pass Store.InFlight to export the number of open row sequences.
func (c *PrometheusCollector) TrackInFlight(fn func() int64) error {
	return c.registerer.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: c.namespace,
		Name:      "queries_in_flight",
		Help:      "Open row sequences holding a query slot",
	}, func() float64 { return float64(fn()) }))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordOpen implements matrixstore.MetricsCollector.
func (c *PrometheusCollector) RecordOpen(d time.Duration, err error) {
	c.opLatency.WithLabelValues("open", status(err)).Observe(d.Seconds())
}

// RecordQuery implements matrixstore.MetricsCollector.
func (c *PrometheusCollector) RecordQuery(rows int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("query", status(err)).Observe(d.Seconds())
	c.queryRows.Observe(float64(rows))
}

// RecordDecode implements matrixstore.MetricsCollector.
func (c *PrometheusCollector) RecordDecode(bytes int, err error) {
	c.decodes.WithLabelValues(status(err)).Inc()
	c.decodeBytes.Add(float64(bytes))
}

// RecordFetch implements matrixstore.MetricsCollector.
func (c *PrometheusCollector) RecordFetch(bytes int64, skipped bool, d time.Duration, err error) {
	st := status(err)
	if err == nil && skipped {
		st = "skipped"
	}
	c.opLatency.WithLabelValues("fetch", status(err)).Observe(d.Seconds())
	c.fetches.WithLabelValues(st).Inc()
	if !skipped {
		c.fetchedBytes.Add(float64(bytes))
	}
}
