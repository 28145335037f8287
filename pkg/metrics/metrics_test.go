package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestNewCollector(t *testing.T) {
	labels := Labels{"instance": "test"}
	c := NewCollector(labels)

	if c == nil {
		t.Fatal("expected non-nil collector")
	}

	snap := c.Snapshot()
	if snap.Labels["instance"] != "test" {
		t.Errorf("expected label instance=test, got %v", snap.Labels)
	}
}

func TestCollectorLinkMetrics(t *testing.T) {
	c := NewCollector(nil)

	c.LinkSecure()
	c.LinkSecure()
	c.LinkCompromised()
	c.LinkIndeterminate()
	c.LinkFailed()

	snap := c.Snapshot()
	if snap.LinksTotal != 5 {
		t.Errorf("expected 5 total links, got %d", snap.LinksTotal)
	}
	if snap.LinksSecure != 2 {
		t.Errorf("expected 2 secure links, got %d", snap.LinksSecure)
	}
	if snap.LinksCompromised != 1 {
		t.Errorf("expected 1 compromised link, got %d", snap.LinksCompromised)
	}
	if snap.LinksIndeterminate != 1 {
		t.Errorf("expected 1 indeterminate link, got %d", snap.LinksIndeterminate)
	}
	if snap.LinksFailed != 1 {
		t.Errorf("expected 1 failed link, got %d", snap.LinksFailed)
	}
}

func TestCollectorBatchMetrics(t *testing.T) {
	c := NewCollector(nil)

	c.ScenarioCompleted()
	c.ScenarioCompleted()
	c.ScenarioCompleted()
	c.BatchCompleted()

	snap := c.Snapshot()
	if snap.ScenariosTotal != 3 {
		t.Errorf("expected 3 scenarios, got %d", snap.ScenariosTotal)
	}
	if snap.BatchesTotal != 1 {
		t.Errorf("expected 1 batch, got %d", snap.BatchesTotal)
	}
}

func TestCollectorProtocolMetrics(t *testing.T) {
	c := NewCollector(nil)

	c.RecordQubits(10)
	c.RecordQubits(20)
	c.RecordInterceptions(7)

	snap := c.Snapshot()
	if snap.QubitsSimulated != 30 {
		t.Errorf("expected 30 qubits, got %d", snap.QubitsSimulated)
	}
	if snap.Interceptions != 7 {
		t.Errorf("expected 7 interceptions, got %d", snap.Interceptions)
	}
}

func TestCollectorQBERHistogram(t *testing.T) {
	c := NewCollector(nil)

	c.RecordQBER(0)
	c.RecordQBER(5)
	c.RecordQBER(25)

	snap := c.Snapshot()
	if snap.QBERPercent.Count != 3 {
		t.Errorf("expected 3 observations, got %d", snap.QBERPercent.Count)
	}
	if snap.QBERPercent.Max != 25 {
		t.Errorf("expected max 25, got %g", snap.QBERPercent.Max)
	}
}

func TestCollectorLinkDuration(t *testing.T) {
	c := NewCollector(nil)

	c.RecordLinkDuration(2 * time.Millisecond)

	snap := c.Snapshot()
	if snap.LinkDuration.Count != 1 {
		t.Errorf("expected 1 observation, got %d", snap.LinkDuration.Count)
	}
	if snap.LinkDuration.Sum != 2 {
		t.Errorf("expected sum 2ms, got %g", snap.LinkDuration.Sum)
	}
}

func TestCollectorReset(t *testing.T) {
	c := NewCollector(nil)

	c.LinkSecure()
	c.ScenarioCompleted()
	c.RecordQubits(100)
	c.RecordQBER(5)

	c.Reset()

	snap := c.Snapshot()
	if snap.LinksTotal != 0 || snap.ScenariosTotal != 0 || snap.QubitsSimulated != 0 {
		t.Errorf("expected zeroed counters after reset, got %+v", snap)
	}
	if snap.QBERPercent.Count != 0 {
		t.Errorf("expected empty histogram after reset, got %d observations", snap.QBERPercent.Count)
	}
}

func TestCollectorConcurrentAccess(t *testing.T) {
	c := NewCollector(nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.LinkSecure()
				c.RecordQBER(float64(j % 30))
				c.RecordQubits(10)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.LinksTotal != 1000 {
		t.Errorf("expected 1000 links, got %d", snap.LinksTotal)
	}
	if snap.QubitsSimulated != 10000 {
		t.Errorf("expected 10000 qubits, got %d", snap.QubitsSimulated)
	}
	if snap.QBERPercent.Count != 1000 {
		t.Errorf("expected 1000 observations, got %d", snap.QBERPercent.Count)
	}
}

func TestGlobalCollector(t *testing.T) {
	g := Global()
	if g == nil {
		t.Fatal("expected non-nil global collector")
	}
	if Global() != g {
		t.Error("expected Global to return the same instance")
	}
}
