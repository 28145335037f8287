package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pzverkov/qkdnet/internal/config"
	"github.com/pzverkov/qkdnet/internal/rng"
	"github.com/pzverkov/qkdnet/pkg/analysis"
	"github.com/pzverkov/qkdnet/pkg/attack"
	"github.com/pzverkov/qkdnet/pkg/link"
	"github.com/pzverkov/qkdnet/pkg/metrics"
	"github.com/pzverkov/qkdnet/pkg/network"
	"github.com/pzverkov/qkdnet/pkg/scenario"
)

// commonOpts are the flags shared by every simulation command.
type commonOpts struct {
	LogLevel    string
	LogFormat   string
	Tracing     string
	MetricsAddr string
}

func commonFlags(fs *flag.FlagSet) *commonOpts {
	c := &commonOpts{}
	fs.StringVar(&c.LogLevel, "log-level", "warn", "Log level: debug, info, warn, error, silent")
	fs.StringVar(&c.LogFormat, "log-format", "text", "Log format: text or json")
	fs.StringVar(&c.Tracing, "tracing", "none", "Tracing mode: none, simple, otel (requires -tags otel)")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run. Empty disables")
	return c
}

// setup builds the logger, tracer, and collector for a run and installs the
// logger globally so library code shares it.
func setup(c commonOpts) (*metrics.Logger, metrics.Tracer, *metrics.Collector) {
	format := metrics.FormatText
	if c.LogFormat == "json" {
		format = metrics.FormatJSON
	}
	logger := metrics.NewLogger(
		metrics.WithLevel(metrics.ParseLevel(c.LogLevel)),
		metrics.WithFormat(format),
	)
	metrics.SetLogger(logger)

	var tracer metrics.Tracer
	switch c.Tracing {
	case "simple":
		tracer = metrics.NewSimpleTracer()
	case "otel":
		if !metrics.OTelEnabled() {
			logger.Warn("binary built without -tags otel, tracing is a no-op")
		}
		tracer = metrics.NewOTelTracer("qkdnet")
	default:
		tracer = metrics.NoOpTracer{}
	}

	collector := metrics.NewCollector(nil)
	if c.MetricsAddr != "" {
		go func() {
			if err := metrics.ServePrometheus(c.MetricsAddr, collector, "qkdnet"); err != nil {
				logger.Error("metrics server stopped", metrics.Fields{"error": err.Error()})
			}
		}()
	}
	return logger, tracer, collector
}

func newSimulator(numReceivers int, threshold float64, c commonOpts) (*network.Simulator, metrics.Tracer, *metrics.Collector) {
	logger, tracer, collector := setup(c)
	obs := metrics.NewSimObserver(metrics.SimObserverConfig{
		Collector: collector,
		Tracer:    tracer,
		Logger:    logger,
	})
	sim, err := network.New(network.ReceiverSet(numReceivers),
		network.WithThreshold(threshold),
		network.WithLogger(logger),
		network.WithObserver(obs),
	)
	if err != nil {
		fail(err)
	}
	return sim, tracer, collector
}

// resolveSeed returns the seed itself, or a fresh entropy seed for zero.
func resolveSeed(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	return rng.NewEntropy().Seed()
}

func writeJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fail(err)
	}
	os.Stdout.Write(data)
	os.Stdout.Write([]byte{'\n'})
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runLink(qubits int, seed uint64, rate, threshold float64, c commonOpts) {
	sim, _, _ := newSimulator(1, threshold, c)
	seed = resolveSeed(seed)

	var chain attack.Chain
	if rate > 0 {
		chain = attack.NewChain(attack.Profile{Name: "Attacker_1", InterceptProbability: rate})
	}

	res, err := sim.RunSingleLink(qubits, chain, rng.New(seed))
	if err != nil {
		fail(err)
	}

	writeJSON(struct {
		Seed uint64 `json:"seed"`
		link.Result
	}{seed, res})
}

func runNetwork(qubits int, seed uint64, numReceivers int, archetypeName string, threshold float64, c commonOpts) {
	sim, _, _ := newSimulator(numReceivers, threshold, c)
	seed = resolveSeed(seed)

	root := rng.New(seed)
	gen, err := scenario.NewGenerator(sim.Receivers(), root.Derive("generator"))
	if err != nil {
		fail(err)
	}

	var spec scenario.Spec
	if archetypeName == "" {
		specs, err := gen.Generate(1)
		if err != nil {
			fail(err)
		}
		spec = specs[0]
	} else {
		a, err := scenario.ParseArchetype(archetypeName)
		if err != nil {
			fail(err)
		}
		if spec, err = gen.One(a); err != nil {
			fail(err)
		}
	}

	res, err := sim.RunScenario(context.Background(), qubits, spec, root.Derive("scenario/0"))
	if err != nil {
		fail(err)
	}

	writeJSON(struct {
		Seed uint64 `json:"seed"`
		network.ScenarioResult
	}{seed, res})
}

func runBatch(configPath string, fs *flag.FlagSet, qubits, scenarios int, seed uint64, numReceivers int, threshold float64, c commonOpts) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			fail(err)
		}
	}

	// Explicit flags win over the config file.
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if configPath == "" || set["qubits"] {
		cfg.NumQubits = qubits
	}
	if configPath == "" || set["scenarios"] {
		cfg.NumScenarios = scenarios
	}
	if configPath == "" || set["seed"] {
		cfg.Seed = seed
	}
	if configPath == "" || set["receivers"] {
		cfg.NumReceivers = numReceivers
	}
	if configPath == "" || set["threshold"] {
		cfg.Threshold = threshold
	}
	if set["log-level"] || configPath == "" {
		cfg.LogLevel = c.LogLevel
	}
	if set["log-format"] || configPath == "" {
		cfg.LogFormat = c.LogFormat
	}
	if set["metrics-addr"] || configPath == "" {
		cfg.MetricsAddr = c.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	c.LogLevel = cfg.LogLevel
	c.LogFormat = cfg.LogFormat
	c.MetricsAddr = cfg.MetricsAddr
	sim, _, _ := newSimulator(cfg.NumReceivers, cfg.Threshold, c)

	res, err := sim.RunRandomBatch(context.Background(), cfg.NumQubits, cfg.NumScenarios, resolveSeed(cfg.Seed))
	if err != nil {
		fail(err)
	}
	writeJSON(res)
}

func runThreat(qubits, trials int, seed uint64, threshold float64, c commonOpts) {
	_, tracer, _ := setup(c)
	seed = resolveSeed(seed)

	results, err := analysis.ThreatScenarios(analysis.Config{
		NumQubits: qubits,
		Trials:    trials,
		Threshold: threshold,
		Rand:      rng.New(seed),
		Tracer:    tracer,
	})
	if err != nil {
		fail(err)
	}

	writeJSON(struct {
		Seed    uint64                  `json:"seed"`
		Results []analysis.ThreatResult `json:"results"`
	}{seed, results})
}

func runCorrelate(qubits, trials int, step float64, seed uint64, threshold float64, c commonOpts) {
	_, tracer, _ := setup(c)
	seed = resolveSeed(seed)

	res, err := analysis.Correlation(analysis.CorrelationConfig{
		Config: analysis.Config{
			NumQubits: qubits,
			Trials:    trials,
			Threshold: threshold,
			Rand:      rng.New(seed),
			Tracer:    tracer,
		},
		Step: step,
	})
	if err != nil {
		fail(err)
	}

	writeJSON(struct {
		Seed uint64 `json:"seed"`
		analysis.CorrelationResult
	}{seed, res})
}
