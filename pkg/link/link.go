// Package link runs the BB84 protocol for one sender-receiver pair.
//
// A run is a single pass: the sender prepares N qubits with random bits and
// bases, each qubit travels through the link's attacker chain, the receiver
// measures in independently random bases, and the two sides sift on matching
// bases. The quantum bit error rate over the sifted key is the eavesdropping
// signal; at or above the security threshold the link is classified
// compromised.
package link

import (
	"fmt"

	"github.com/pzverkov/qkdnet/internal/constants"
	"github.com/pzverkov/qkdnet/internal/errors"
	"github.com/pzverkov/qkdnet/pkg/attack"
	"github.com/pzverkov/qkdnet/pkg/qubit"
)

// Config parameterizes one link run.
type Config struct {
	// NumQubits is the number of qubits the sender transmits. Must be
	// positive; the core places no upper bound.
	NumQubits int

	// Attackers is the ordered chain wired onto this link. Empty means a
	// clean link.
	Attackers attack.Chain

	// Threshold is the QBER percentage at which the link is classified
	// compromised. Zero selects the standard 11% threshold.
	Threshold float64

	// Rand is the random stream for every draw of this run. Required.
	Rand qubit.Source
}

// Result is the outcome of one link run. It is a plain record: every field
// serializes without knowledge of the simulation internals.
type Result struct {
	// SenderKey and ReceiverKey are the sifted bit sequences, index-aligned
	// and of equal length.
	SenderKey   []qubit.Bit `json:"senderKey"`
	ReceiverKey []qubit.Bit `json:"receiverKey"`

	// QBERPercent is the positional mismatch rate over the sifted key, 0-100.
	QBERPercent float64 `json:"qberPercent"`

	// Secure reports QBERPercent < threshold. Always false when the run is
	// indeterminate.
	Secure bool `json:"secure"`

	// Indeterminate is set when sifting discarded every position, so the
	// run carries no error-rate evidence either way.
	Indeterminate bool `json:"indeterminate"`

	// SiftedLength is the length of the sifted keys.
	SiftedLength int `json:"siftedLength"`

	// BasisMatchRate is the percentage of transmitted qubits surviving
	// sifting.
	BasisMatchRate float64 `json:"basisMatchRate"`

	// Intercepted is the total number of interceptions across all qubits.
	Intercepted int `json:"intercepted"`

	// Attackers lists the attacker names wired onto the link, in chain order.
	Attackers []string `json:"attackers,omitempty"`

	// NumQubits echoes the configured qubit count.
	NumQubits int `json:"numQubits"`

	// ThresholdPercent echoes the threshold the verdict was made against.
	ThresholdPercent float64 `json:"thresholdPercent"`
}

// Validate checks the configuration without running anything.
func (c Config) Validate() error {
	if c.NumQubits <= 0 {
		return errors.NewConfigError("numQubits", c.NumQubits, errors.ErrInvalidQubitCount)
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return errors.NewConfigError("threshold", c.Threshold, errors.ErrInvalidThreshold)
	}
	if c.Rand == nil {
		return errors.NewConfigError("rand", nil, errors.ErrMissingRand)
	}
	return c.Attackers.Validate()
}

// Run executes one full BB84 exchange and classifies the link.
func Run(cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = constants.SecurityThresholdPercent
	}

	ch := qubit.NewChannel(cfg.Rand)
	n := cfg.NumQubits

	senderBits := make([]qubit.Bit, n)
	senderBases := make([]qubit.Basis, n)
	receiverBases := make([]qubit.Basis, n)
	receiverBits := make([]qubit.Bit, n)

	intercepted := 0
	for i := 0; i < n; i++ {
		senderBits[i] = ch.RandomBit()
		senderBases[i] = ch.RandomBasis()

		q := qubit.Prepare(senderBits[i], senderBases[i])

		var hits int
		q, hits = cfg.Attackers.Apply(ch, cfg.Rand, q)
		intercepted += hits

		receiverBases[i] = ch.RandomBasis()
		receiverBits[i] = ch.Measure(q, receiverBases[i]).Bit
	}

	// Sift on the sender's original bases. An attacker's re-preparation basis
	// never enters the sifting decision; it only perturbs the measured bits.
	senderKey := make([]qubit.Bit, 0, n)
	receiverKey := make([]qubit.Bit, 0, n)
	for i := 0; i < n; i++ {
		if senderBases[i] == receiverBases[i] {
			senderKey = append(senderKey, senderBits[i])
			receiverKey = append(receiverKey, receiverBits[i])
		}
	}

	res := Result{
		SenderKey:        senderKey,
		ReceiverKey:      receiverKey,
		SiftedLength:     len(senderKey),
		BasisMatchRate:   100 * float64(len(senderKey)) / float64(n),
		Intercepted:      intercepted,
		Attackers:        cfg.Attackers.Names(),
		NumQubits:        n,
		ThresholdPercent: threshold,
	}

	if len(senderKey) == 0 {
		// No basis matches survived: no evidence either way. The link is
		// flagged indeterminate instead of trivially secure.
		res.Indeterminate = true
		return res, nil
	}

	mismatches := 0
	for i := range senderKey {
		if senderKey[i] != receiverKey[i] {
			mismatches++
		}
	}
	res.QBERPercent = 100 * float64(mismatches) / float64(len(senderKey))
	res.Secure = res.QBERPercent < threshold
	return res, nil
}

// Verdict returns a short human-readable classification.
func (r Result) Verdict() string {
	switch {
	case r.Indeterminate:
		return "indeterminate"
	case r.Secure:
		return "secure"
	default:
		return "compromised"
	}
}

// String summarizes the result for logs.
func (r Result) String() string {
	return fmt.Sprintf("qubits=%d sifted=%d qber=%.2f%% verdict=%s",
		r.NumQubits, r.SiftedLength, r.QBERPercent, r.Verdict())
}
