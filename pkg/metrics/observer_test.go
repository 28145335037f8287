package metrics

import (
	"context"
	"errors"
	"testing"
)

func newTestObserver() (*SimObserver, *Collector, *SimpleTracer) {
	c := NewCollector(nil)
	tr := NewSimpleTracer()
	obs := NewSimObserver(SimObserverConfig{
		Collector: c,
		Tracer:    tr,
		Logger:    NullLogger(),
	})
	return obs, c, tr
}

func TestSimObserverLinkSecure(t *testing.T) {
	obs, c, tr := newTestObserver()

	_, done := obs.OnLinkStart(context.Background(), "Bob")
	done(LinkOutcome{
		Receiver:      "Bob",
		Qubits:        10,
		Interceptions: 3,
		QBERPercent:   4.5,
		Secure:        true,
	}, nil)

	snap := c.Snapshot()
	if snap.LinksSecure != 1 || snap.LinksTotal != 1 {
		t.Errorf("expected 1 secure link, got %+v", snap)
	}
	if snap.QubitsSimulated != 10 {
		t.Errorf("expected 10 qubits, got %d", snap.QubitsSimulated)
	}
	if snap.Interceptions != 3 {
		t.Errorf("expected 3 interceptions, got %d", snap.Interceptions)
	}
	if snap.QBERPercent.Count != 1 {
		t.Errorf("expected 1 QBER observation, got %d", snap.QBERPercent.Count)
	}

	spans := tr.Spans()
	if len(spans) != 1 || spans[0].Name != SpanLink {
		t.Errorf("expected one %s span, got %v", SpanLink, spans)
	}
	if spans[0].Attributes["receiver"] != "Bob" {
		t.Errorf("expected receiver attribute, got %v", spans[0].Attributes)
	}
}

func TestSimObserverLinkOutcomes(t *testing.T) {
	obs, c, _ := newTestObserver()

	_, done := obs.OnLinkStart(context.Background(), "Bob")
	done(LinkOutcome{QBERPercent: 25, Secure: false}, nil)

	_, done = obs.OnLinkStart(context.Background(), "Charlie")
	done(LinkOutcome{Indeterminate: true}, nil)

	snap := c.Snapshot()
	if snap.LinksCompromised != 1 {
		t.Errorf("expected 1 compromised link, got %d", snap.LinksCompromised)
	}
	if snap.LinksIndeterminate != 1 {
		t.Errorf("expected 1 indeterminate link, got %d", snap.LinksIndeterminate)
	}
}

func TestSimObserverLinkFailed(t *testing.T) {
	obs, c, tr := newTestObserver()

	_, done := obs.OnLinkStart(context.Background(), "Mallory")
	done(LinkOutcome{}, errors.New("unknown receiver"))

	snap := c.Snapshot()
	if snap.LinksFailed != 1 || snap.LinksTotal != 1 {
		t.Errorf("expected 1 failed link, got %+v", snap)
	}
	// A failed link records no protocol metrics.
	if snap.QubitsSimulated != 0 || snap.QBERPercent.Count != 0 {
		t.Errorf("expected no protocol metrics on failure, got %+v", snap)
	}
	if spans := tr.Spans(); len(spans) != 1 || spans[0].Error == nil {
		t.Errorf("expected errored span, got %v", spans)
	}
}

func TestSimObserverScenarioAndBatch(t *testing.T) {
	obs, c, tr := newTestObserver()

	ctx, endScenario := obs.OnScenarioStart(context.Background(), "scenario_1_no_attack")
	endScenario(nil)

	_, endBatch := obs.OnBatchStart(ctx, 3)
	endBatch(nil)

	snap := c.Snapshot()
	if snap.ScenariosTotal != 1 {
		t.Errorf("expected 1 scenario, got %d", snap.ScenariosTotal)
	}
	if snap.BatchesTotal != 1 {
		t.Errorf("expected 1 batch, got %d", snap.BatchesTotal)
	}

	names := make(map[string]bool)
	for _, s := range tr.Spans() {
		names[s.Name] = true
	}
	if !names[SpanScenario] || !names[SpanBatch] {
		t.Errorf("expected scenario and batch spans, got %v", names)
	}
}

func TestSimObserverDefaults(t *testing.T) {
	obs := NewSimObserver(SimObserverConfig{Logger: NullLogger()})
	if obs.collector == nil || obs.tracer == nil {
		t.Fatal("expected defaults for nil collector and tracer")
	}
}
