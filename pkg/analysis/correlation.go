package analysis

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pzverkov/qkdnet/internal/constants"
	"github.com/pzverkov/qkdnet/internal/errors"
	"github.com/pzverkov/qkdnet/pkg/metrics"
)

// DefaultSweepStep is the intercept-rate increment of the correlation sweep.
const DefaultSweepStep = 0.05

// CorrelationConfig extends Config with the sweep step. A zero Step selects
// DefaultSweepStep.
type CorrelationConfig struct {
	Config
	Step float64
}

// SweepPoint is the trial aggregate at one intercept rate.
type SweepPoint struct {
	InterceptRate float64 `json:"interceptRate"`
	MeanQBER      float64 `json:"meanQberPercent"`
	StdDevQBER    float64 `json:"stdDevQberPercent"`
	DetectionRate float64 `json:"detectionRate"`
}

// CorrelationResult is the outcome of a full intercept-rate sweep.
type CorrelationResult struct {
	Points []SweepPoint `json:"points"`

	// Pearson is the correlation between intercept rate and mean QBER
	// across the sweep.
	Pearson float64 `json:"pearson"`

	// Slope and Intercept are the least-squares fit of mean QBER against
	// intercept rate. TheoreticalSlope is the intercept-resend prediction
	// the fit is compared against.
	Slope            float64 `json:"slope"`
	Intercept        float64 `json:"intercept"`
	TheoreticalSlope float64 `json:"theoreticalSlope"`

	// ThresholdCrossing is the lowest swept rate whose mean QBER reached
	// the security threshold, or -1 when no point did.
	ThresholdCrossing float64 `json:"thresholdCrossing"`

	// BaselineQBER and SaturationQBER are the mean QBER at the first and
	// last sweep points.
	BaselineQBER   float64 `json:"baselineQberPercent"`
	SaturationQBER float64 `json:"saturationQberPercent"`
}

// Correlation sweeps the intercept rate from 0 to 1 and measures how the
// observed error rate tracks it.
func Correlation(cfg CorrelationConfig) (CorrelationResult, error) {
	if err := cfg.validate(); err != nil {
		return CorrelationResult{}, err
	}
	step := cfg.Step
	if step == 0 {
		step = DefaultSweepStep
	}
	if step < 0 || step > 1 {
		return CorrelationResult{}, errors.NewConfigError("step", cfg.Step, errors.ErrInvalidStep)
	}

	_, end := cfg.tracer().StartSpan(context.Background(), metrics.SpanSweep,
		metrics.WithAttributes(map[string]interface{}{
			"trials": cfg.Trials,
			"step":   step,
		}))

	threshold := cfg.threshold()

	// Integer-indexed steps keep the rates exact; accumulating the step
	// in a float loop drops the final rate-1.0 point.
	steps := int(math.Round(1.0 / step))
	points := make([]SweepPoint, 0, steps+1)
	for i := 0; i <= steps; i++ {
		rate := float64(i) * step
		if rate > 1.0 {
			rate = 1.0
		}
		point, err := sweepPoint(cfg.Config, rate, threshold)
		if err != nil {
			end(err)
			return CorrelationResult{}, errors.NewSimulationError("sweep", "", err)
		}
		points = append(points, point)
	}

	out := CorrelationResult{
		Points:            points,
		TheoreticalSlope:  constants.SaturationQBERPercent,
		ThresholdCrossing: -1,
		BaselineQBER:      points[0].MeanQBER,
		SaturationQBER:    points[len(points)-1].MeanQBER,
	}

	rates := make([]float64, len(points))
	means := make([]float64, len(points))
	for i, p := range points {
		rates[i] = p.InterceptRate
		means[i] = p.MeanQBER
		if out.ThresholdCrossing < 0 && p.MeanQBER >= threshold {
			out.ThresholdCrossing = p.InterceptRate
		}
	}
	if len(points) > 1 {
		out.Pearson = stat.Correlation(rates, means, nil)
		out.Intercept, out.Slope = stat.LinearRegression(rates, means, nil, false)
	}

	end(nil)
	return out, nil
}

func sweepPoint(cfg Config, rate, threshold float64) (SweepPoint, error) {
	qbers := make([]float64, 0, cfg.Trials)
	detected := 0
	for i := 0; i < cfg.Trials; i++ {
		res, err := runTrial(cfg, rate)
		if err != nil {
			return SweepPoint{}, err
		}
		if res.Indeterminate {
			continue
		}
		qbers = append(qbers, res.QBERPercent)
		if res.QBERPercent >= threshold {
			detected++
		}
	}

	point := SweepPoint{InterceptRate: rate}
	if len(qbers) == 0 {
		return point, nil
	}
	point.MeanQBER = stat.Mean(qbers, nil)
	if len(qbers) > 1 {
		point.StdDevQBER = stat.StdDev(qbers, nil)
	}
	point.DetectionRate = float64(detected) / float64(len(qbers))
	return point, nil
}
