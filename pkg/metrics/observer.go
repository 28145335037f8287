package metrics

import (
	"context"
	"time"
)

// SimObserver bundles a collector, tracer, and logger behind hooks that
// the simulator calls at link and scenario boundaries. All fields are
// optional; missing ones fall back to the package defaults.
type SimObserver struct {
	collector *Collector
	tracer    Tracer
	logger    *Logger
}

// SimObserverConfig configures a simulation observer.
type SimObserverConfig struct {
	Collector *Collector
	Tracer    Tracer
	Logger    *Logger
}

// NewSimObserver creates a simulation observer.
func NewSimObserver(cfg SimObserverConfig) *SimObserver {
	if cfg.Collector == nil {
		cfg.Collector = Global()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = NoOpTracer{}
	}
	if cfg.Logger == nil {
		cfg.Logger = GetLogger()
	}

	return &SimObserver{
		collector: cfg.Collector,
		tracer:    cfg.Tracer,
		logger:    cfg.Logger.Named("sim"),
	}
}

// LinkOutcome summarizes a finished link for metric recording.
type LinkOutcome struct {
	Receiver      string
	Qubits        int
	Interceptions int
	QBERPercent   float64
	Secure        bool
	Indeterminate bool
}

// OnLinkStart returns a context and completion function for a single
// link run. The completion function records duration and outcome.
func (o *SimObserver) OnLinkStart(ctx context.Context, receiver string) (context.Context, func(LinkOutcome, error)) {
	start := time.Now()
	ctx, endSpan := o.tracer.StartSpan(ctx, SpanLink, WithAttributes(map[string]interface{}{
		"receiver": receiver,
	}))

	o.logger.Debug("link started", Fields{"receiver": receiver})

	return ctx, func(out LinkOutcome, err error) {
		duration := time.Since(start)
		o.collector.RecordLinkDuration(duration)

		if err != nil {
			o.collector.LinkFailed()
			o.logger.Error("link failed", Fields{
				"receiver": receiver,
				"error":    err.Error(),
			})
			endSpan(err)
			return
		}

		o.collector.RecordQubits(uint64(out.Qubits))
		o.collector.RecordInterceptions(uint64(out.Interceptions))
		o.collector.RecordQBER(out.QBERPercent)

		switch {
		case out.Indeterminate:
			o.collector.LinkIndeterminate()
		case out.Secure:
			o.collector.LinkSecure()
		default:
			o.collector.LinkCompromised()
		}

		o.logger.Debug("link completed", Fields{
			"receiver":     receiver,
			"qber_percent": out.QBERPercent,
			"secure":       out.Secure,
			"duration":     duration.String(),
		})
		endSpan(nil)
	}
}

// OnScenarioStart returns a context and completion function for a
// scenario run covering all of its links.
func (o *SimObserver) OnScenarioStart(ctx context.Context, name string) (context.Context, func(error)) {
	ctx, endSpan := o.tracer.StartSpan(ctx, SpanScenario, WithAttributes(map[string]interface{}{
		"scenario": name,
	}))

	o.logger.Debug("scenario started", Fields{"scenario": name})

	return ctx, func(err error) {
		o.collector.ScenarioCompleted()
		if err != nil {
			o.logger.Error("scenario failed", Fields{
				"scenario": name,
				"error":    err.Error(),
			})
		}
		endSpan(err)
	}
}

// OnBatchStart returns a context and completion function for a batch
// of random scenarios.
func (o *SimObserver) OnBatchStart(ctx context.Context, scenarios int) (context.Context, func(error)) {
	start := time.Now()
	ctx, endSpan := o.tracer.StartSpan(ctx, SpanBatch, WithAttributes(map[string]interface{}{
		"scenarios": scenarios,
	}))

	o.logger.Info("batch started", Fields{"scenarios": scenarios})

	return ctx, func(err error) {
		o.collector.BatchCompleted()
		duration := time.Since(start)
		if err != nil {
			o.logger.Error("batch failed", Fields{
				"error":    err.Error(),
				"duration": duration.String(),
			})
		} else {
			o.logger.Info("batch completed", Fields{"duration": duration.String()})
		}
		endSpan(err)
	}
}

// Logger returns the observer's logger for custom logging.
func (o *SimObserver) Logger() *Logger {
	return o.logger
}
