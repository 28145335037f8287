// Package fuzz provides fuzz tests for the qkdnet parsing surfaces.
package fuzz

import (
	"testing"

	"github.com/pzverkov/qkdnet/internal/config"
	"github.com/pzverkov/qkdnet/pkg/scenario"
)

// FuzzParseArchetype checks that archetype parsing never panics and that a
// successful parse round-trips through String.
func FuzzParseArchetype(f *testing.F) {
	for _, a := range scenario.Archetypes() {
		f.Add(a.String())
	}
	f.Add("")
	f.Add("no_attack ")
	f.Add("NO_ATTACK")

	f.Fuzz(func(t *testing.T, s string) {
		a, err := scenario.ParseArchetype(s)
		if err != nil {
			return
		}
		if !a.Valid() {
			t.Errorf("parse accepted %q but archetype %d is invalid", s, a)
		}
		if a.String() != s {
			t.Errorf("round trip mismatch: %q -> %v -> %q", s, a, a.String())
		}
	})
}

// FuzzConfigParse checks that arbitrary YAML never panics the config parser
// and that every accepted config satisfies its own bounds.
func FuzzConfigParse(f *testing.F) {
	f.Add([]byte("numQubits: 10\nnumScenarios: 3\n"))
	f.Add([]byte("seed: 42\nthreshold: 11\n"))
	f.Add([]byte("numQubits: -1"))
	f.Add([]byte("logLevel: debug\nlogFormat: json\n"))
	f.Add([]byte("{"))

	f.Fuzz(func(t *testing.T, data []byte) {
		cfg, err := config.Parse(data)
		if err != nil {
			return
		}
		if cfg.NumQubits < 1 || cfg.NumQubits > 20 {
			t.Errorf("accepted out-of-bounds qubit count %d", cfg.NumQubits)
		}
		if cfg.NumScenarios < 1 || cfg.NumScenarios > 10 {
			t.Errorf("accepted out-of-bounds scenario count %d", cfg.NumScenarios)
		}
		if cfg.Threshold < 0 || cfg.Threshold > 100 {
			t.Errorf("accepted out-of-bounds threshold %g", cfg.Threshold)
		}
	})
}
