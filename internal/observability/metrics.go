package observability

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"
)

// MetricsRegistry holds all registered metrics.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	gauges   map[string]*Gauge
	histos   map[string]*Histogram
}

// Counter is a monotonically increasing metric.
type Counter struct {
	name  string
	help  string
	mu    sync.Mutex
	value float64
}

// Gauge is a metric that can go up or down.
type Gauge struct {
	name  string
	help  string
	mu    sync.Mutex
	value float64
}

// Histogram tracks the distribution of observed values.
type Histogram struct {
	name    string
	help    string
	buckets []float64
	mu      sync.Mutex
	counts  []uint64
	sum     float64
	count   uint64
}

// NewMetricsRegistry creates an empty metrics registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]*Counter),
		gauges:   make(map[string]*Gauge),
		histos:   make(map[string]*Histogram),
	}
}

// NewCounter creates and registers a counter.
func (r *MetricsRegistry) NewCounter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &Counter{name: name, help: help}
	r.counters[name] = c
	return c
}

// NewGauge creates and registers a gauge.
func (r *MetricsRegistry) NewGauge(name, help string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := &Gauge{name: name, help: help}
	r.gauges[name] = g
	return g
}

// NewHistogram creates and registers a histogram. A nil buckets slice
// uses DefaultBuckets.
func (r *MetricsRegistry) NewHistogram(name, help string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	if buckets == nil {
		buckets = DefaultBuckets()
	}
	h := &Histogram{
		name:    name,
		help:    help,
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
	r.histos[name] = h
	return h
}

// DefaultBuckets returns histogram buckets sized for scan durations,
// which range from milliseconds on small projects to tens of seconds
// on monorepos.
func DefaultBuckets() []float64 {
	return []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
}

// Inc increments a counter by 1.
func (c *Counter) Inc() {
	c.Add(1)
}

// Add adds a value to the counter.
func (c *Counter) Add(v float64) {
	c.mu.Lock()
	c.value += v
	c.mu.Unlock()
}

// Value returns the counter value.
func (c *Counter) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set sets the gauge value.
func (g *Gauge) Set(v float64) {
	g.mu.Lock()
	g.value = v
	g.mu.Unlock()
}

// Value returns the gauge value.
func (g *Gauge) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

// Observe records a value in the histogram.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sum += v
	h.count++
	for i, bound := range h.buckets {
		if v <= bound {
			h.counts[i]++
		}
	}
}

// ObserveDuration records the elapsed time since start in seconds.
func (h *Histogram) ObserveDuration(start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// Handler returns an HTTP handler serving Prometheus text format.
func (r *MetricsRegistry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.WritePrometheus(w)
	})
}

// WritePrometheus writes all registered metrics in Prometheus text
// format. Output is sorted by metric name so scrapes are stable.
func (r *MetricsRegistry) WritePrometheus(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range sortedKeys(r.counters) {
		c := r.counters[name]
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %s\n",
			c.name, c.help, c.name, c.name, formatFloat(c.Value()))
	}
	for _, name := range sortedKeys(r.gauges) {
		g := r.gauges[name]
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %s\n",
			g.name, g.help, g.name, g.name, formatFloat(g.Value()))
	}
	for _, name := range sortedKeys(r.histos) {
		writeHistogram(w, r.histos[name])
	}
}

func writeHistogram(w io.Writer, h *Histogram) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name)
	var cumulative uint64
	for i, bound := range h.buckets {
		cumulative += h.counts[i]
		fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", h.name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(w, "%s_bucket{le=\"+Inf\"} %d\n", h.name, h.count)
	fmt.Fprintf(w, "%s_sum %s\n", h.name, formatFloat(h.sum))
	fmt.Fprintf(w, "%s_count %d\n", h.name, h.count)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ScanMetrics collects counters for the scan loop. The watch command
// exposes them over HTTP so long-running watchers can be scraped.
type ScanMetrics struct {
	Registry *MetricsRegistry

	ScansTotal      *Counter
	FilesScanned    *Counter
	ViolationsFound *Counter
	ScanErrors      *Counter
	ScanDuration    *Histogram
	LastCompliance  *Gauge
	WatchedDirs     *Gauge
}

// NewScanMetrics creates the scan metric set on a fresh registry.
func NewScanMetrics() *ScanMetrics {
	r := NewMetricsRegistry()

	return &ScanMetrics{
		Registry: r,

		ScansTotal:      r.NewCounter("bulwark_scans_total", "Total scan runs"),
		FilesScanned:    r.NewCounter("bulwark_files_scanned_total", "Total files checked across all scans"),
		ViolationsFound: r.NewCounter("bulwark_violations_total", "Total violations reported across all scans"),
		ScanErrors:      r.NewCounter("bulwark_scan_errors_total", "Total error-severity violations"),
		ScanDuration:    r.NewHistogram("bulwark_scan_duration_seconds", "Scan duration", nil),
		LastCompliance:  r.NewGauge("bulwark_last_compliance_score", "Compliance score of the most recent scan"),
		WatchedDirs:     r.NewGauge("bulwark_watched_dirs", "Number of directories under watch"),
	}
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *ScanMetrics) Handler() http.Handler {
	return m.Registry.Handler()
}

// RecordScan records the outcome of one scan run.
func (m *ScanMetrics) RecordScan(duration time.Duration, filesChecked, violations, errors int) {
	m.ScansTotal.Inc()
	m.FilesScanned.Add(float64(filesChecked))
	m.ViolationsFound.Add(float64(violations))
	m.ScanErrors.Add(float64(errors))
	m.ScanDuration.Observe(duration.Seconds())
	if filesChecked > 0 {
		m.LastCompliance.Set(float64(filesChecked-errors) / float64(filesChecked) * 100)
	} else {
		m.LastCompliance.Set(100)
	}
}
