// Package network simulates a star-topology QKD network: one sender
// establishing independent BB84 links to a set of receivers, with attacker
// chains wired per link by a scenario. Links within a scenario run
// concurrently, each on its own deterministically derived random stream, so
// a seeded run produces identical results regardless of scheduling.
package network

import (
	"context"
	"fmt"
	"sync"

	"github.com/pzverkov/qkdnet/internal/constants"
	"github.com/pzverkov/qkdnet/internal/errors"
	"github.com/pzverkov/qkdnet/internal/rng"
	"github.com/pzverkov/qkdnet/pkg/attack"
	"github.com/pzverkov/qkdnet/pkg/link"
	"github.com/pzverkov/qkdnet/pkg/metrics"
	"github.com/pzverkov/qkdnet/pkg/scenario"
)

// Simulator runs BB84 links from a fixed sender to a configured receiver set.
type Simulator struct {
	receivers []string
	threshold float64
	observer  *metrics.SimObserver
	logger    *metrics.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithThreshold overrides the security threshold for every link the
// simulator runs. Zero keeps the standard 11% threshold.
func WithThreshold(percent float64) Option {
	return func(s *Simulator) {
		s.threshold = percent
	}
}

// WithLogger sets the simulator's logger.
func WithLogger(l *metrics.Logger) Option {
	return func(s *Simulator) {
		s.logger = l
	}
}

// WithObserver sets the metrics/tracing observer.
func WithObserver(o *metrics.SimObserver) Option {
	return func(s *Simulator) {
		s.observer = o
	}
}

// New creates a simulator for the given receiver set.
func New(receivers []string, opts ...Option) (*Simulator, error) {
	if len(receivers) == 0 {
		return nil, errors.NewConfigError("receivers", receivers, errors.ErrNoReceivers)
	}
	seen := make(map[string]struct{}, len(receivers))
	for _, r := range receivers {
		if _, dup := seen[r]; dup {
			return nil, errors.NewConfigError("receivers", r, errors.ErrDuplicateReceiver)
		}
		seen[r] = struct{}{}
	}

	s := &Simulator{
		receivers: append([]string(nil), receivers...),
		logger:    metrics.GetLogger().Named("network"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.observer == nil {
		s.observer = metrics.NewSimObserver(metrics.SimObserverConfig{Logger: s.logger})
	}
	return s, nil
}

// Receivers returns the simulator's receiver names in configuration order.
func (s *Simulator) Receivers() []string {
	return append([]string(nil), s.receivers...)
}

// ReceiverSet returns n receiver names: the canonical set first, padded with
// synthetic names when n exceeds it.
func ReceiverSet(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i < len(constants.DefaultReceivers) {
			out = append(out, constants.DefaultReceivers[i])
			continue
		}
		out = append(out, fmt.Sprintf("%s%d", constants.SyntheticReceiverPrefix, i+1))
	}
	return out
}

// LinkResult pairs a receiver with its link outcome. Error is set, and the
// embedded result zero, when the link failed to run.
type LinkResult struct {
	Receiver string `json:"receiver"`
	link.Result
	Error string `json:"error,omitempty"`
}

// ScenarioResult aggregates all links of one scenario run. Indeterminate
// links count toward neither the secure nor the compromised tally, and
// SecurityPercentage is taken over decided links only.
type ScenarioResult struct {
	ScenarioName           string       `json:"scenarioName"`
	Archetype              string       `json:"archetype"`
	Links                  []LinkResult `json:"links"`
	SecureLinkCount        int          `json:"secureLinkCount"`
	CompromisedLinkCount   int          `json:"compromisedLinkCount"`
	IndeterminateLinkCount int          `json:"indeterminateLinkCount"`
	FailedLinkCount        int          `json:"failedLinkCount"`
	SecurityPercentage     float64      `json:"securityPercentage"`
	AttackerNames          []string     `json:"attackerNames,omitempty"`
}

// OverallStats summarizes a batch run.
type OverallStats struct {
	ScenarioCount          int     `json:"scenarioCount"`
	LinkCount              int     `json:"linkCount"`
	SecureLinkCount        int     `json:"secureLinkCount"`
	CompromisedLinkCount   int     `json:"compromisedLinkCount"`
	IndeterminateLinkCount int     `json:"indeterminateLinkCount"`
	FailedLinkCount        int     `json:"failedLinkCount"`
	SecurityPercentage     float64 `json:"securityPercentage"`
	MeanQBERPercent        float64 `json:"meanQberPercent"`
}

// RunResult is the outcome of a random batch.
type RunResult struct {
	Seed      uint64           `json:"seed"`
	NumQubits int              `json:"numQubits"`
	Scenarios []ScenarioResult `json:"scenarios"`
	Overall   OverallStats     `json:"overall"`
}

// RunSingleLink runs one link to the first configured receiver with the
// given attacker chain.
func (s *Simulator) RunSingleLink(numQubits int, chain attack.Chain, stream *rng.Stream) (link.Result, error) {
	if stream == nil {
		return link.Result{}, errors.NewConfigError("rand", nil, errors.ErrMissingRand)
	}
	_, done := s.observer.OnLinkStart(context.Background(), s.receivers[0])
	res, err := link.Run(link.Config{
		NumQubits: numQubits,
		Attackers: chain,
		Threshold: s.threshold,
		Rand:      stream,
	})
	done(outcomeOf(s.receivers[0], res), err)
	if err != nil {
		return link.Result{}, errors.NewSimulationError("link", s.receivers[0], err)
	}
	return res, nil
}

// RunScenario runs one link per configured receiver with the scenario's
// attacker assignments. Links run concurrently, each on a sub-stream derived
// from the given stream and the receiver name, so the result does not depend
// on goroutine scheduling. A link that fails is recorded in its slot and the
// remaining links still run.
func (s *Simulator) RunScenario(ctx context.Context, numQubits int, spec scenario.Spec, stream *rng.Stream) (ScenarioResult, error) {
	if err := ctx.Err(); err != nil {
		return ScenarioResult{}, err
	}
	if stream == nil {
		return ScenarioResult{}, errors.NewConfigError("rand", nil, errors.ErrMissingRand)
	}
	if err := spec.Validate(s.receivers); err != nil {
		return ScenarioResult{}, errors.NewSimulationError("scenario", spec.Name, err)
	}

	ctx, endScenario := s.observer.OnScenarioStart(ctx, spec.Name)

	result := ScenarioResult{
		ScenarioName:  spec.Name,
		Archetype:     spec.ArchetypeName(),
		Links:         make([]LinkResult, len(s.receivers)),
		AttackerNames: spec.AttackerNames(),
	}

	var wg sync.WaitGroup
	for i, receiver := range s.receivers {
		// Derivation keys the sub-stream on the receiver name alone, so a
		// link's draws are identical whether it runs first or last.
		sub := stream.Derive("link/" + receiver)

		wg.Add(1)
		go func(i int, receiver string, sub *rng.Stream) {
			defer wg.Done()
			result.Links[i] = s.runLink(ctx, numQubits, spec, receiver, sub)
		}(i, receiver, sub)
	}
	wg.Wait()

	for _, lr := range result.Links {
		switch {
		case lr.Error != "":
			result.FailedLinkCount++
		case lr.Indeterminate:
			result.IndeterminateLinkCount++
		case lr.Secure:
			result.SecureLinkCount++
		default:
			result.CompromisedLinkCount++
		}
	}
	if decided := result.SecureLinkCount + result.CompromisedLinkCount; decided > 0 {
		result.SecurityPercentage = 100 * float64(result.SecureLinkCount) / float64(decided)
	}

	endScenario(nil)
	return result, nil
}

func (s *Simulator) runLink(ctx context.Context, numQubits int, spec scenario.Spec, receiver string, stream *rng.Stream) LinkResult {
	_, done := s.observer.OnLinkStart(ctx, receiver)

	chain, err := spec.ChainFor(receiver)
	if err == nil {
		var res link.Result
		res, err = link.Run(link.Config{
			NumQubits: numQubits,
			Attackers: chain,
			Threshold: s.threshold,
			Rand:      stream,
		})
		if err == nil {
			done(outcomeOf(receiver, res), nil)
			return LinkResult{Receiver: receiver, Result: res}
		}
	}

	done(metrics.LinkOutcome{Receiver: receiver}, err)
	return LinkResult{
		Receiver: receiver,
		Error:    errors.NewSimulationError("link", receiver, err).Error(),
	}
}

// RunRandomBatch generates numScenarios random scenarios from the seed and
// runs them in order. The same seed, qubit count, and receiver set always
// produce the same RunResult. The context is checked between scenarios only;
// a running scenario always completes.
func (s *Simulator) RunRandomBatch(ctx context.Context, numQubits, numScenarios int, seed uint64) (RunResult, error) {
	if numScenarios <= 0 {
		return RunResult{}, errors.NewConfigError("numScenarios", numScenarios, errors.ErrInvalidScenarioCount)
	}

	root := rng.New(seed)
	gen, err := scenario.NewGenerator(s.receivers, root.Derive("generator"))
	if err != nil {
		return RunResult{}, err
	}
	specs, err := gen.Generate(numScenarios)
	if err != nil {
		return RunResult{}, err
	}

	ctx, endBatch := s.observer.OnBatchStart(ctx, numScenarios)

	out := RunResult{
		Seed:      seed,
		NumQubits: numQubits,
		Scenarios: make([]ScenarioResult, 0, numScenarios),
	}
	for i, spec := range specs {
		if err := ctx.Err(); err != nil {
			wrapped := fmt.Errorf("%w after %d of %d scenarios: %v",
				errors.ErrBatchCanceled, i, numScenarios, err)
			endBatch(wrapped)
			return out, wrapped
		}

		res, err := s.RunScenario(ctx, numQubits, spec, root.Derive(fmt.Sprintf("scenario/%d", i)))
		if err != nil {
			endBatch(err)
			return out, err
		}
		out.Scenarios = append(out.Scenarios, res)
	}

	out.Overall = summarize(out.Scenarios)
	endBatch(nil)
	return out, nil
}

func summarize(scenarios []ScenarioResult) OverallStats {
	stats := OverallStats{ScenarioCount: len(scenarios)}

	qberSum := 0.0
	qberCount := 0
	for _, sc := range scenarios {
		stats.LinkCount += len(sc.Links)
		stats.SecureLinkCount += sc.SecureLinkCount
		stats.CompromisedLinkCount += sc.CompromisedLinkCount
		stats.IndeterminateLinkCount += sc.IndeterminateLinkCount
		stats.FailedLinkCount += sc.FailedLinkCount
		for _, lr := range sc.Links {
			if lr.Error == "" && !lr.Indeterminate {
				qberSum += lr.QBERPercent
				qberCount++
			}
		}
	}
	if decided := stats.SecureLinkCount + stats.CompromisedLinkCount; decided > 0 {
		stats.SecurityPercentage = 100 * float64(stats.SecureLinkCount) / float64(decided)
	}
	if qberCount > 0 {
		stats.MeanQBERPercent = qberSum / float64(qberCount)
	}
	return stats
}

func outcomeOf(receiver string, res link.Result) metrics.LinkOutcome {
	return metrics.LinkOutcome{
		Receiver:      receiver,
		Qubits:        res.NumQubits,
		Interceptions: res.Intercepted,
		QBERPercent:   res.QBERPercent,
		Secure:        res.Secure,
		Indeterminate: res.Indeterminate,
	}
}
