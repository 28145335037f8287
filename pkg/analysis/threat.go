package analysis

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/pzverkov/qkdnet/internal/errors"
	"github.com/pzverkov/qkdnet/pkg/metrics"
)

// Threat statuses, ordered from quiet to loud.
const (
	StatusSecure     = "secure"
	StatusUnstable   = "unstable"
	StatusSuspicious = "suspicious"
	StatusDetected   = "detected"
)

// ThreatProfile is one attacker posture evaluated by the threat study.
// Variable profiles redraw the intercept rate uniformly on every trial.
type ThreatProfile struct {
	Name     string  `json:"name"`
	Rate     float64 `json:"rate"`
	Variable bool    `json:"variable"`
}

// ThreatProfiles returns the standard postures: a clean baseline, a stealthy
// 10% tap, a half-rate tap, a full intercept-resend, and a variable attacker.
func ThreatProfiles() []ThreatProfile {
	return []ThreatProfile{
		{Name: "no_attack", Rate: 0},
		{Name: "stealth", Rate: 0.1},
		{Name: "passive", Rate: 0.5},
		{Name: "aggressive", Rate: 1.0},
		{Name: "variable", Variable: true},
	}
}

// ThreatResult summarizes the trials of one profile.
//
// Trials counts the runs that produced a sifted key; indeterminate runs are
// excluded, so it can fall short of the configured trial count.
type ThreatResult struct {
	Profile       string  `json:"profile"`
	InterceptRate float64 `json:"interceptRate"`
	Variable      bool    `json:"variable"`
	Trials        int     `json:"trials"`
	MeanQBER      float64 `json:"meanQberPercent"`
	StdDevQBER    float64 `json:"stdDevQberPercent"`
	MinQBER       float64 `json:"minQberPercent"`
	MaxQBER       float64 `json:"maxQberPercent"`
	DetectionRate float64 `json:"detectionRate"`
	Status        string  `json:"status"`
}

// ThreatScenarios runs every standard threat profile for cfg.Trials trials
// each and classifies the outcome per profile.
func ThreatScenarios(cfg Config) ([]ThreatResult, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	_, end := cfg.tracer().StartSpan(context.Background(), metrics.SpanThreat,
		metrics.WithAttributes(map[string]interface{}{
			"trials": cfg.Trials,
			"qubits": cfg.NumQubits,
		}))

	profiles := ThreatProfiles()
	results := make([]ThreatResult, 0, len(profiles))
	for _, p := range profiles {
		r, err := runThreatProfile(cfg, p)
		if err != nil {
			end(err)
			return nil, errors.NewSimulationError("threat", p.Name, err)
		}
		results = append(results, r)
	}

	end(nil)
	return results, nil
}

func runThreatProfile(cfg Config, p ThreatProfile) (ThreatResult, error) {
	threshold := cfg.threshold()

	qbers := make([]float64, 0, cfg.Trials)
	detected := 0
	for i := 0; i < cfg.Trials; i++ {
		rate := p.Rate
		if p.Variable {
			rate = cfg.Rand.Float64()
		}

		res, err := runTrial(cfg, rate)
		if err != nil {
			return ThreatResult{}, err
		}
		if res.Indeterminate {
			// No sifted key, no error-rate evidence. The trial is skipped
			// rather than counted as a clean run.
			continue
		}
		qbers = append(qbers, res.QBERPercent)
		if res.QBERPercent >= threshold {
			detected++
		}
	}

	out := ThreatResult{
		Profile:       p.Name,
		InterceptRate: p.Rate,
		Variable:      p.Variable,
		Trials:        len(qbers),
	}
	if len(qbers) == 0 {
		out.Status = StatusUnstable
		return out, nil
	}

	out.MeanQBER = stat.Mean(qbers, nil)
	if len(qbers) > 1 {
		out.StdDevQBER = stat.StdDev(qbers, nil)
	}
	out.MinQBER, out.MaxQBER = qbers[0], qbers[0]
	for _, q := range qbers[1:] {
		if q < out.MinQBER {
			out.MinQBER = q
		}
		if q > out.MaxQBER {
			out.MaxQBER = q
		}
	}
	out.DetectionRate = float64(detected) / float64(len(qbers))
	out.Status = classify(out, threshold)
	return out, nil
}

// classify maps a profile's trial statistics to a threat status. Mean at or
// over the threshold is a detection; a mean under it with individual trials
// over is suspicious; a spread wider than the threshold itself means single
// runs carry no stable verdict.
func classify(r ThreatResult, threshold float64) string {
	switch {
	case r.MeanQBER >= threshold:
		return StatusDetected
	case r.MaxQBER >= threshold:
		return StatusSuspicious
	case r.StdDevQBER > threshold:
		return StatusUnstable
	default:
		return StatusSecure
	}
}
