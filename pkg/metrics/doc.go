// Package metrics provides observability primitives for the qkdnet simulator.
//
// # Overview
//
// The metrics package offers:
//   - Metrics collection (counters and histograms) for links, scenarios, and batches
//   - Prometheus-compatible metrics export
//   - Tracing support (OpenTelemetry-compatible interface)
//   - Structured logging with levels
//
// # Quick Start
//
// Basic usage with the global collector:
//
//	import "github.com/pzverkov/qkdnet/pkg/metrics"
//
//	// Record metrics
//	metrics.Global().LinkSecure()
//	metrics.Global().RecordQBER(3.5)
//	metrics.Global().RecordQubits(10)
//
//	// Start Prometheus server
//	go metrics.ServePrometheus(":9090", metrics.Global(), "qkdnet")
//
// # Metrics Collection
//
// The Collector type aggregates metrics from link simulations:
//
//	collector := metrics.NewCollector(metrics.Labels{
//		"instance": "node-1",
//	})
//
//	collector.LinkSecure()
//	collector.LinkCompromised()
//	collector.RecordQBER(percent)
//	collector.RecordLinkDuration(d)
//
//	snap := collector.Snapshot()
//
// # Prometheus Export
//
// Export metrics in Prometheus format:
//
//	exporter := metrics.NewPrometheusExporter(collector, "qkdnet")
//	http.Handle("/metrics", exporter.Handler())
//
// # Tracing
//
// The package provides a Tracer interface compatible with OpenTelemetry:
//
//	// Recording tracer for testing
//	tracer := metrics.NewSimpleTracer()
//	ctx, end := tracer.StartSpan(ctx, metrics.SpanLink)
//	defer end(nil) // or end(err) on error
//
//	// OpenTelemetry adapter (uses the global provider)
//	otelTracer := metrics.NewOTelTracer("qkdnet")
//	// Build with -tags otel to enable the adapter.
//
// # Structured Logging
//
// The Logger provides structured logging with levels:
//
//	logger := metrics.NewLogger(
//		metrics.WithLevel(metrics.LevelInfo),
//		metrics.WithFormat(metrics.FormatJSON),
//	)
//
//	logger.Info("scenario completed", metrics.Fields{
//		"scenario": name,
//		"secure":   secureCount,
//	})
//
//	// Child loggers
//	linkLog := logger.Named("link").With(metrics.Fields{"receiver": "Bob"})
//	linkLog.Debug("sifting key")
//
// # Simulation Observer
//
// SimObserver ties the three together behind hooks the simulator calls
// at link, scenario, and batch boundaries:
//
//	obs := metrics.NewSimObserver(metrics.SimObserverConfig{
//		Collector: collector,
//		Tracer:    tracer,
//	})
//	ctx, done := obs.OnLinkStart(ctx, "Bob")
//	// ... run the link ...
//	done(metrics.LinkOutcome{Receiver: "Bob", QBERPercent: q, Secure: ok}, nil)
package metrics
