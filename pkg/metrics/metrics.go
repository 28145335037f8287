package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pzverkov/qkdnet/internal/constants"
)

// Collector aggregates metrics from link simulations and scenario batches.
type Collector struct {
	// Link metrics
	linksTotal         atomic.Uint64
	linksSecure        atomic.Uint64
	linksCompromised   atomic.Uint64
	linksIndeterminate atomic.Uint64
	linksFailed        atomic.Uint64

	// Batch metrics
	scenariosTotal atomic.Uint64
	batchesTotal   atomic.Uint64

	// Protocol metrics
	qubitsSimulated atomic.Uint64
	interceptions   atomic.Uint64

	// Distribution of observed error rates (percent)
	qberPercent *Histogram

	// Link execution time (milliseconds)
	linkDuration *Histogram

	// Creation time for uptime tracking
	createdAt time.Time

	// Labels for this collector instance
	labels Labels
}

// Labels represents key-value pairs for metric labeling.
type Labels map[string]string

// NewCollector creates a new metrics collector.
func NewCollector(labels Labels) *Collector {
	if labels == nil {
		labels = make(Labels)
	}

	return &Collector{
		qberPercent:  NewHistogram(constants.QBERBuckets),
		linkDuration: NewHistogram(LinkDurationBuckets),
		createdAt:    time.Now(),
		labels:       labels,
	}
}

// LinkDurationBuckets for single-link execution time (milliseconds).
var LinkDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25}

// --- Link Metrics ---

// LinkSecure records a completed link whose error rate stayed under the
// security threshold.
func (c *Collector) LinkSecure() {
	c.linksTotal.Add(1)
	c.linksSecure.Add(1)
}

// LinkCompromised records a completed link flagged as compromised.
func (c *Collector) LinkCompromised() {
	c.linksTotal.Add(1)
	c.linksCompromised.Add(1)
}

// LinkIndeterminate records a completed link with an empty sifted key.
func (c *Collector) LinkIndeterminate() {
	c.linksTotal.Add(1)
	c.linksIndeterminate.Add(1)
}

// LinkFailed records a link that errored before producing a result.
func (c *Collector) LinkFailed() {
	c.linksTotal.Add(1)
	c.linksFailed.Add(1)
}

// RecordQBER records an observed quantum bit error rate in percent.
func (c *Collector) RecordQBER(percent float64) {
	c.qberPercent.Observe(percent)
}

// RecordLinkDuration records a single link's execution time.
func (c *Collector) RecordLinkDuration(d time.Duration) {
	c.linkDuration.Observe(float64(d) / float64(time.Millisecond))
}

// --- Batch Metrics ---

// ScenarioCompleted increments the scenario counter.
func (c *Collector) ScenarioCompleted() {
	c.scenariosTotal.Add(1)
}

// BatchCompleted increments the batch counter.
func (c *Collector) BatchCompleted() {
	c.batchesTotal.Add(1)
}

// --- Protocol Metrics ---

// RecordQubits adds to the transmitted qubit counter.
func (c *Collector) RecordQubits(n uint64) {
	c.qubitsSimulated.Add(n)
}

// RecordInterceptions adds to the intercepted qubit counter.
func (c *Collector) RecordInterceptions(n uint64) {
	c.interceptions.Add(n)
}

// --- Snapshot ---

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	// Timestamp of the snapshot
	Timestamp time.Time

	// Uptime since collector creation
	Uptime time.Duration

	// Link metrics
	LinksTotal         uint64
	LinksSecure        uint64
	LinksCompromised   uint64
	LinksIndeterminate uint64
	LinksFailed        uint64

	// Batch metrics
	ScenariosTotal uint64
	BatchesTotal   uint64

	// Protocol metrics
	QubitsSimulated uint64
	Interceptions   uint64

	// Histogram summaries
	QBERPercent  HistogramSummary
	LinkDuration HistogramSummary

	// Labels
	Labels Labels
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Timestamp:          time.Now(),
		Uptime:             time.Since(c.createdAt),
		LinksTotal:         c.linksTotal.Load(),
		LinksSecure:        c.linksSecure.Load(),
		LinksCompromised:   c.linksCompromised.Load(),
		LinksIndeterminate: c.linksIndeterminate.Load(),
		LinksFailed:        c.linksFailed.Load(),
		ScenariosTotal:     c.scenariosTotal.Load(),
		BatchesTotal:       c.batchesTotal.Load(),
		QubitsSimulated:    c.qubitsSimulated.Load(),
		Interceptions:      c.interceptions.Load(),
		QBERPercent:        c.qberPercent.Summary(),
		LinkDuration:       c.linkDuration.Summary(),
		Labels:             c.labels,
	}
}

// Reset clears all metrics (useful for testing).
func (c *Collector) Reset() {
	c.linksTotal.Store(0)
	c.linksSecure.Store(0)
	c.linksCompromised.Store(0)
	c.linksIndeterminate.Store(0)
	c.linksFailed.Store(0)
	c.scenariosTotal.Store(0)
	c.batchesTotal.Store(0)
	c.qubitsSimulated.Store(0)
	c.interceptions.Store(0)
	c.qberPercent.Reset()
	c.linkDuration.Reset()
	c.createdAt = time.Now()
}

// --- Global Collector ---

var (
	globalCollector     *Collector
	globalCollectorOnce sync.Once
)

// Global returns the global metrics collector.
// Creates one with default settings if not already initialized.
func Global() *Collector {
	globalCollectorOnce.Do(func() {
		globalCollector = NewCollector(Labels{"instance": "default"})
	})
	return globalCollector
}

// SetGlobal sets the global metrics collector.
// Should be called during initialization before any metrics are recorded.
func SetGlobal(c *Collector) {
	globalCollector = c
}
