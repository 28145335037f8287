package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPrometheusExporterCounters(t *testing.T) {
	c := NewCollector(nil)
	c.LinkSecure()
	c.LinkSecure()
	c.LinkCompromised()
	c.ScenarioCompleted()
	c.RecordQubits(20)
	c.RecordInterceptions(5)

	var sb strings.Builder
	NewPrometheusExporter(c, "qkdnet").WriteMetrics(&sb)
	out := sb.String()

	want := []string{
		"qkdnet_links_total 3",
		"qkdnet_links_secure_total 2",
		"qkdnet_links_compromised_total 1",
		"qkdnet_links_indeterminate_total 0",
		"qkdnet_scenarios_total 1",
		"qkdnet_qubits_simulated_total 20",
		"qkdnet_interceptions_total 5",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("expected output to contain %q", w)
		}
	}
}

func TestPrometheusExporterHelpAndType(t *testing.T) {
	c := NewCollector(nil)

	var sb strings.Builder
	NewPrometheusExporter(c, "qkdnet").WriteMetrics(&sb)
	out := sb.String()

	if !strings.Contains(out, "# HELP qkdnet_links_total") {
		t.Error("expected HELP line for links_total")
	}
	if !strings.Contains(out, "# TYPE qkdnet_links_total counter") {
		t.Error("expected TYPE line for links_total")
	}
	if !strings.Contains(out, "# TYPE qkdnet_uptime_seconds gauge") {
		t.Error("expected TYPE line for uptime gauge")
	}
	if !strings.Contains(out, "# TYPE qkdnet_qber_percent histogram") {
		t.Error("expected TYPE line for QBER histogram")
	}
}

func TestPrometheusExporterLabels(t *testing.T) {
	c := NewCollector(Labels{"instance": "node-1", "run": "a"})
	c.LinkSecure()

	var sb strings.Builder
	NewPrometheusExporter(c, "qkdnet").WriteMetrics(&sb)
	out := sb.String()

	// Labels sorted by key.
	if !strings.Contains(out, `qkdnet_links_total{instance="node-1",run="a"} 1`) {
		t.Errorf("expected labeled metric line, got:\n%s", out)
	}
}

func TestPrometheusExporterHistogram(t *testing.T) {
	c := NewCollector(nil)
	c.RecordQBER(0)
	c.RecordQBER(12)

	var sb strings.Builder
	NewPrometheusExporter(c, "qkdnet").WriteMetrics(&sb)
	out := sb.String()

	if !strings.Contains(out, `qkdnet_qber_percent_bucket{le="+Inf"} 2`) {
		t.Errorf("expected +Inf bucket with cumulative count, got:\n%s", out)
	}
	if !strings.Contains(out, "qkdnet_qber_percent_sum 12") {
		t.Errorf("expected histogram sum, got:\n%s", out)
	}
	if !strings.Contains(out, "qkdnet_qber_percent_count 2") {
		t.Errorf("expected histogram count, got:\n%s", out)
	}
}

func TestPrometheusExporterEscaping(t *testing.T) {
	c := NewCollector(Labels{"path": `a"b\c`})

	var sb strings.Builder
	NewPrometheusExporter(c, "qkdnet").WriteMetrics(&sb)
	out := sb.String()

	if !strings.Contains(out, `path="a\"b\\c"`) {
		t.Errorf("expected escaped label value, got:\n%s", out)
	}
}

func TestPrometheusHandler(t *testing.T) {
	c := NewCollector(nil)
	c.LinkSecure()

	srv := httptest.NewServer(NewPrometheusExporter(c, "qkdnet").Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type %q", ct)
	}
	buf := make([]byte, 4096)
	n, _ := resp.Body.Read(buf)
	if !strings.Contains(string(buf[:n]), "qkdnet_links_total 1") {
		t.Errorf("expected metric in response body")
	}
}

func TestServePrometheusInvalidAddress(t *testing.T) {
	c := NewCollector(nil)
	if err := ServePrometheus("127.0.0.1:-1", c, "qkdnet"); err == nil {
		t.Fatal("expected listen error for invalid address")
	}
}
