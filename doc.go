// Package qkdnet simulates BB84 quantum key distribution across a multi-party
// network with configurable intercept-resend attackers.
//
// One sender establishes independent BB84 links to a set of receivers. Each
// link transmits qubits prepared in random conjugate bases, optionally through
// a chain of eavesdroppers, and classifies itself by the quantum bit error
// rate over the sifted key: interception disturbs the qubits and raises the
// QBER above the 11% security threshold, while a full intercept-resend attack
// saturates around 25%.
//
// # Quick Start
//
// For a single link:
//
//	import (
//		"github.com/pzverkov/qkdnet/internal/rng"
//		"github.com/pzverkov/qkdnet/pkg/link"
//	)
//
//	res, _ := link.Run(link.Config{NumQubits: 100, Rand: rng.New(42)})
//	fmt.Println(res.Verdict()) // "secure"
//
// For a full network scenario:
//
//	import "github.com/pzverkov/qkdnet/pkg/network"
//
//	sim, _ := network.New(network.ReceiverSet(4))
//	result, _ := sim.RunRandomBatch(ctx, 10, 3, 1234)
//
// # Package Structure
//
//   - pkg/qubit: qubit preparation and basis-dependent measurement
//   - pkg/attack: attacker profiles and ordered interception chains
//   - pkg/link: one sender-receiver BB84 exchange with sifting and QBER
//   - pkg/network: concurrent multi-receiver scenarios and random batches
//   - pkg/scenario: attack archetypes and seeded scenario generation
//   - pkg/analysis: threat-profile studies and intercept-rate correlation
//   - pkg/metrics: structured logging, metrics collection, and tracing
//   - internal/rng: seeded random streams with labeled sub-stream derivation
//   - internal/config: YAML run configuration with boundary bounds
//   - internal/constants: protocol thresholds and default network shape
//   - internal/errors: sentinel and typed errors
//
// # Reproducibility
//
// Every random draw flows from an injected seeded stream. Concurrent links
// derive per-receiver sub-streams keyed by receiver name (SHAKE-256), so a
// seeded run produces bitwise identical results regardless of scheduling.
//
// # Testing
//
//	go test ./...                          # All tests
//	go test ./pkg/link -run TestRun        # Link protocol tests
//	go test -fuzz=FuzzParseArchetype ./test/fuzz
//	go test -bench=. ./test/benchmark      # Benchmarks
//
// For more information, see: https://github.com/pzverkov/qkdnet
package qkdnet
