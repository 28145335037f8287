// Package constants defines protocol parameters and simulation bounds for the
// qkdnet BB84 network simulator.
//
// The values here follow the standard BB84 analysis: a full intercept-resend
// attack disturbs 25% of sifted bits on average, so any observed quantum bit
// error rate at or above the 11% threshold is treated as evidence of
// eavesdropping.
package constants

// BB84 protocol parameters
const (
	// SecurityThresholdPercent is the QBER above which a link is considered
	// compromised. 11% is the standard BB84 detection threshold.
	SecurityThresholdPercent = 11.0

	// SaturationQBERPercent is the expected QBER under full intercept-resend:
	// the attacker guesses the wrong basis half the time, and each wrong
	// guess randomizes the receiver's sifted bit half the time.
	SaturationQBERPercent = 25.0

	// ExpectedSiftRatio is the expected fraction of qubits surviving sifting
	// (sender and receiver bases agree half the time).
	ExpectedSiftRatio = 0.5
)

// Simulation bounds. Product-level qubit/scenario bounds are enforced at the
// configuration boundary, never inside the core engine.
const (
	// DefaultNumQubits is the default qubit count per link.
	DefaultNumQubits = 10

	// MaxBoundaryQubits is the per-link qubit cap enforced by the config layer.
	MaxBoundaryQubits = 20

	// DefaultNumScenarios is the default random-batch size.
	DefaultNumScenarios = 3

	// MaxBoundaryScenarios is the batch-size cap enforced by the config layer.
	MaxBoundaryScenarios = 10

	// MinAttackers and MaxAttackers bound the randomized attacker count in
	// generated scenarios.
	MinAttackers = 1
	MaxAttackers = 3
)

// Sender is the canonical sender name for every link in the star topology.
const Sender = "Alice"

// DefaultReceivers is the canonical receiver set for network runs.
var DefaultReceivers = []string{"Bob", "Charlie", "Dave", "Diana"}

// SyntheticReceiverPrefix prefixes generated receiver names when a run asks
// for more receivers than the canonical set provides.
const SyntheticReceiverPrefix = "Receiver_"

// AttackerNamePrefix prefixes generated attacker names in random scenarios.
const AttackerNamePrefix = "Attacker_"

// QBERBuckets are histogram bucket bounds (percent) for observed link QBER.
var QBERBuckets = []float64{1, 2.5, 5, 7.5, 11, 15, 20, 25, 30, 40, 50}
