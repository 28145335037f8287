// Package scenario defines attack-scenario archetypes and generates
// randomized scenario specifications for repeated-trial network analysis.
package scenario

import (
	"github.com/pzverkov/qkdnet/internal/errors"
)

// Archetype is a closed enumeration of attack-scenario shapes.
type Archetype uint8

const (
	// NoAttack is the clean baseline: every link runs unattacked.
	NoAttack Archetype = iota

	// SingleAttackerSingleTarget wires one attacker onto one link.
	SingleAttackerSingleTarget

	// SingleAttackerMultiTarget wires one attacker onto several links.
	SingleAttackerMultiTarget

	// MultiAttackerSingleTargets wires several attackers onto distinct links,
	// one attacker per targeted link.
	MultiAttackerSingleTargets

	// MultiAttackerMultiTarget wires several attackers freely across links;
	// one link may carry a chain of more than one attacker.
	MultiAttackerMultiTarget
)

var archetypeNames = map[Archetype]string{
	NoAttack:                   "no_attack",
	SingleAttackerSingleTarget: "single_attacker_single_target",
	SingleAttackerMultiTarget:  "single_attacker_multiple_targets",
	MultiAttackerSingleTargets: "multiple_attackers_single_targets",
	MultiAttackerMultiTarget:   "multiple_attackers_multiple_targets",
}

// String returns the archetype's canonical snake_case name.
func (a Archetype) String() string {
	if s, ok := archetypeNames[a]; ok {
		return s
	}
	return "unknown"
}

// Valid reports whether a is one of the defined archetypes.
func (a Archetype) Valid() bool {
	_, ok := archetypeNames[a]
	return ok
}

// Multi reports whether the archetype involves more than one attacker.
func (a Archetype) Multi() bool {
	return a == MultiAttackerSingleTargets || a == MultiAttackerMultiTarget
}

// ParseArchetype resolves a canonical archetype name.
func ParseArchetype(s string) (Archetype, error) {
	for a, name := range archetypeNames {
		if name == s {
			return a, nil
		}
	}
	return 0, errors.NewConfigError("archetype", s, errors.ErrUnknownArchetype)
}

// Archetypes returns all defined archetypes in declaration order.
func Archetypes() []Archetype {
	return []Archetype{
		NoAttack,
		SingleAttackerSingleTarget,
		SingleAttackerMultiTarget,
		MultiAttackerSingleTargets,
		MultiAttackerMultiTarget,
	}
}
