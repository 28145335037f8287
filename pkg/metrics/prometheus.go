package metrics

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"
)

// PrometheusExporter exports metrics in Prometheus text format.
type PrometheusExporter struct {
	collector *Collector
	namespace string
}

// NewPrometheusExporter creates a Prometheus exporter for the given collector.
// The namespace is prepended to all metric names (e.g., "qkdnet").
func NewPrometheusExporter(c *Collector, namespace string) *PrometheusExporter {
	return &PrometheusExporter{
		collector: c,
		namespace: namespace,
	}
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (e *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		e.WriteMetrics(w)
	})
}

// WriteMetrics writes all metrics in Prometheus text format to the writer.
func (e *PrometheusExporter) WriteMetrics(w io.Writer) {
	snap := e.collector.Snapshot()
	labels := e.formatLabels(snap.Labels)

	// --- Link Metrics ---
	e.writeHelp(w, "links_total", "Total number of links simulated")
	e.writeType(w, "links_total", "counter")
	e.writeMetric(w, "links_total", labels, float64(snap.LinksTotal))

	e.writeHelp(w, "links_secure_total", "Links with error rate under the security threshold")
	e.writeType(w, "links_secure_total", "counter")
	e.writeMetric(w, "links_secure_total", labels, float64(snap.LinksSecure))

	e.writeHelp(w, "links_compromised_total", "Links flagged as compromised")
	e.writeType(w, "links_compromised_total", "counter")
	e.writeMetric(w, "links_compromised_total", labels, float64(snap.LinksCompromised))

	e.writeHelp(w, "links_indeterminate_total", "Links with an empty sifted key")
	e.writeType(w, "links_indeterminate_total", "counter")
	e.writeMetric(w, "links_indeterminate_total", labels, float64(snap.LinksIndeterminate))

	e.writeHelp(w, "links_failed_total", "Links that errored before producing a result")
	e.writeType(w, "links_failed_total", "counter")
	e.writeMetric(w, "links_failed_total", labels, float64(snap.LinksFailed))

	// --- Batch Metrics ---
	e.writeHelp(w, "scenarios_total", "Total number of scenarios simulated")
	e.writeType(w, "scenarios_total", "counter")
	e.writeMetric(w, "scenarios_total", labels, float64(snap.ScenariosTotal))

	e.writeHelp(w, "batches_total", "Total number of scenario batches completed")
	e.writeType(w, "batches_total", "counter")
	e.writeMetric(w, "batches_total", labels, float64(snap.BatchesTotal))

	// --- Protocol Metrics ---
	e.writeHelp(w, "qubits_simulated_total", "Total qubits transmitted across all links")
	e.writeType(w, "qubits_simulated_total", "counter")
	e.writeMetric(w, "qubits_simulated_total", labels, float64(snap.QubitsSimulated))

	e.writeHelp(w, "interceptions_total", "Total qubits intercepted by attackers")
	e.writeType(w, "interceptions_total", "counter")
	e.writeMetric(w, "interceptions_total", labels, float64(snap.Interceptions))

	// --- Uptime ---
	e.writeHelp(w, "uptime_seconds", "Time since the collector was created")
	e.writeType(w, "uptime_seconds", "gauge")
	e.writeMetric(w, "uptime_seconds", labels, snap.Uptime.Seconds())

	// --- Histograms ---
	e.writeHistogram(w, "qber_percent", "Observed quantum bit error rate in percent", labels, snap.QBERPercent)
	e.writeHistogram(w, "link_duration_milliseconds", "Single link execution time in milliseconds", labels, snap.LinkDuration)
}

func (e *PrometheusExporter) writeHelp(w io.Writer, name, help string) {
	fmt.Fprintf(w, "# HELP %s_%s %s\n", e.namespace, name, help)
}

func (e *PrometheusExporter) writeType(w io.Writer, name, typ string) {
	fmt.Fprintf(w, "# TYPE %s_%s %s\n", e.namespace, name, typ)
}

func (e *PrometheusExporter) writeMetric(w io.Writer, name, labels string, value float64) {
	if labels != "" {
		fmt.Fprintf(w, "%s_%s{%s} %g\n", e.namespace, name, labels, value)
	} else {
		fmt.Fprintf(w, "%s_%s %g\n", e.namespace, name, value)
	}
}

// writeHistogram writes a histogram in Prometheus format.
func (e *PrometheusExporter) writeHistogram(w io.Writer, name, help, labels string, h HistogramSummary) {
	e.writeHelp(w, name, help)
	e.writeType(w, name, "histogram")

	fullName := e.namespace + "_" + name

	for _, b := range h.Buckets {
		le := fmt.Sprintf("%g", b.UpperBound)
		if math.IsInf(b.UpperBound, 1) {
			le = "+Inf"
		}
		if labels != "" {
			fmt.Fprintf(w, "%s_bucket{%s,le=\"%s\"} %d\n", fullName, labels, le, b.Count)
		} else {
			fmt.Fprintf(w, "%s_bucket{le=\"%s\"} %d\n", fullName, le, b.Count)
		}
	}

	if labels != "" {
		fmt.Fprintf(w, "%s_sum{%s} %g\n", fullName, labels, h.Sum)
		fmt.Fprintf(w, "%s_count{%s} %d\n", fullName, labels, h.Count)
	} else {
		fmt.Fprintf(w, "%s_sum %g\n", fullName, h.Sum)
		fmt.Fprintf(w, "%s_count %d\n", fullName, h.Count)
	}
}

// formatLabels converts Labels to sorted Prometheus label format.
func (e *PrometheusExporter) formatLabels(labels Labels) string {
	if len(labels) == 0 {
		return ""
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=\"%s\"", k, escapePromValue(labels[k])))
	}
	return strings.Join(parts, ",")
}

func escapePromValue(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// Scrape endpoint timeouts. Exports are tiny, so the write timeout only has
// to cover a stalled scraper, not payload size.
const (
	scrapeReadHeaderTimeout = 5 * time.Second
	scrapeReadTimeout       = 10 * time.Second
	scrapeWriteTimeout      = 10 * time.Second
	scrapeIdleTimeout       = 120 * time.Second
)

// ServePrometheus starts an HTTP server serving Prometheus metrics on
// /metrics. It blocks until the server stops.
func ServePrometheus(addr string, c *Collector, namespace string) error {
	exp := NewPrometheusExporter(c, namespace)
	mux := http.NewServeMux()
	mux.Handle("/metrics", exp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: scrapeReadHeaderTimeout,
		ReadTimeout:       scrapeReadTimeout,
		WriteTimeout:      scrapeWriteTimeout,
		IdleTimeout:       scrapeIdleTimeout,
	}
	return srv.ListenAndServe()
}
