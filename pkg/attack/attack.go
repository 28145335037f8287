// Package attack models intercept-resend eavesdroppers and their composition
// on a single quantum link.
//
// An attacker is a memoryless Bernoulli process: each qubit is intercepted
// independently with the attacker's intercept probability, and each
// interception measures in a fresh uniformly random basis. Multiple attackers
// on one link form an ordered chain; a qubit re-prepared by one attacker can
// be re-intercepted by the next before it reaches the receiver.
package attack

import (
	"github.com/pzverkov/qkdnet/internal/errors"
	"github.com/pzverkov/qkdnet/pkg/qubit"
)

// Profile describes one eavesdropper.
type Profile struct {
	// Name identifies the attacker in results and scenario assignments.
	Name string `json:"name" yaml:"name"`

	// InterceptProbability is the fraction of qubits intercepted, in [0, 1].
	InterceptProbability float64 `json:"interceptProbability" yaml:"intercept_probability"`
}

// Validate checks the profile's parameters.
func (p Profile) Validate() error {
	if p.Name == "" {
		return errors.NewConfigError("attacker.name", p.Name, errors.ErrEmptyAttackerName)
	}
	if p.InterceptProbability < 0 || p.InterceptProbability > 1 {
		return errors.NewConfigError("attacker.interceptProbability", p.InterceptProbability, errors.ErrInvalidProbability)
	}
	return nil
}

// ShouldIntercept draws one Bernoulli trial with the intercept probability.
// Trials are independent per qubit; the profile keeps no state.
func (p Profile) ShouldIntercept(src qubit.Source) bool {
	return src.Float64() < p.InterceptProbability
}

// ChooseBasis draws a uniformly random measurement basis.
func (p Profile) ChooseBasis(src qubit.Source) qubit.Basis {
	return qubit.Basis(src.Uint64() & 1)
}

// Mode selects how attackers on one chain compose when more than one could
// intercept the same qubit.
type Mode uint8

const (
	// ModeIndependent gives every attacker an independent Bernoulli trial on
	// every qubit, including qubits already intercepted upstream. Default.
	ModeIndependent Mode = iota

	// ModeExclusive skips a qubit for the rest of the chain once any
	// attacker has intercepted it.
	ModeExclusive
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeIndependent:
		return "independent"
	case ModeExclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}

// Chain is an ordered sequence of attackers wired onto one link.
// The zero value is an empty chain (clean link).
type Chain struct {
	Attackers []Profile `json:"attackers" yaml:"attackers"`
	Mode      Mode      `json:"-" yaml:"-"`
}

// NewChain builds a chain in the default independent mode.
func NewChain(attackers ...Profile) Chain {
	return Chain{Attackers: attackers}
}

// Validate checks every profile and rejects duplicate attacker names.
func (c Chain) Validate() error {
	seen := make(map[string]bool, len(c.Attackers))
	for _, p := range c.Attackers {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.Name] {
			return errors.NewConfigError("attacker.name", p.Name, errors.ErrDuplicateAttacker)
		}
		seen[p.Name] = true
	}
	return nil
}

// Empty reports whether the chain has no attackers.
func (c Chain) Empty() bool {
	return len(c.Attackers) == 0
}

// Names returns the attacker names in chain order.
func (c Chain) Names() []string {
	if len(c.Attackers) == 0 {
		return nil
	}
	names := make([]string, len(c.Attackers))
	for i, p := range c.Attackers {
		names[i] = p.Name
	}
	return names
}

// Apply passes one qubit through the chain in order, returning the qubit that
// finally reaches the receiver and the number of interceptions that occurred.
func (c Chain) Apply(ch *qubit.Channel, src qubit.Source, q qubit.Qubit) (qubit.Qubit, int) {
	intercepts := 0
	for _, p := range c.Attackers {
		if c.Mode == ModeExclusive && intercepts > 0 {
			break
		}
		if !p.ShouldIntercept(src) {
			continue
		}
		q, _ = ch.Intercept(q, p.ChooseBasis(src))
		intercepts++
	}
	return q, intercepts
}
