// Package analysis runs repeated-trial studies over single BB84 links:
// a fixed set of threat profiles, and an intercept-rate sweep correlating
// interception against the observed error rate. Results are plain numeric
// records; rendering them is out of scope.
package analysis

import (
	"github.com/pzverkov/qkdnet/internal/constants"
	"github.com/pzverkov/qkdnet/internal/errors"
	"github.com/pzverkov/qkdnet/internal/rng"
	"github.com/pzverkov/qkdnet/pkg/attack"
	"github.com/pzverkov/qkdnet/pkg/link"
	"github.com/pzverkov/qkdnet/pkg/metrics"
)

// Config parameterizes an analysis run. A zero Threshold selects the
// standard 11% threshold; a nil Tracer disables tracing.
type Config struct {
	NumQubits int
	Trials    int
	Threshold float64
	Rand      *rng.Stream
	Tracer    metrics.Tracer
}

func (c Config) validate() error {
	if c.NumQubits <= 0 {
		return errors.NewConfigError("numQubits", c.NumQubits, errors.ErrInvalidQubitCount)
	}
	if c.Trials <= 0 {
		return errors.NewConfigError("trials", c.Trials, errors.ErrInvalidTrialCount)
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return errors.NewConfigError("threshold", c.Threshold, errors.ErrInvalidThreshold)
	}
	if c.Rand == nil {
		return errors.NewConfigError("rand", nil, errors.ErrMissingRand)
	}
	return nil
}

func (c Config) threshold() float64 {
	if c.Threshold == 0 {
		return constants.SecurityThresholdPercent
	}
	return c.Threshold
}

func (c Config) tracer() metrics.Tracer {
	if c.Tracer == nil {
		return metrics.NoOpTracer{}
	}
	return c.Tracer
}

// runTrial executes one link with a single attacker at the given intercept
// rate and returns its QBER. Rate 0 runs a clean link.
func runTrial(cfg Config, rate float64) (link.Result, error) {
	var chain attack.Chain
	if rate > 0 {
		chain = attack.NewChain(attack.Profile{
			Name:                 constants.AttackerNamePrefix + "1",
			InterceptProbability: rate,
		})
	}
	return link.Run(link.Config{
		NumQubits: cfg.NumQubits,
		Attackers: chain,
		Threshold: cfg.Threshold,
		Rand:      cfg.Rand,
	})
}
