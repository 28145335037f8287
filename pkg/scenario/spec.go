package scenario

import (
	"github.com/pzverkov/qkdnet/internal/errors"
	"github.com/pzverkov/qkdnet/pkg/attack"
)

// Spec is one fully parameterized scenario: the attackers that exist and the
// ordered attacker chain assigned to each targeted receiver. Receivers absent
// from Assignments run clean baseline links.
type Spec struct {
	// Name identifies the scenario inside a batch.
	Name string `json:"name" yaml:"name"`

	// Archetype is the scenario's attack shape.
	Archetype Archetype `json:"-" yaml:"-"`

	// Attackers declares every attacker the scenario may assign.
	Attackers []attack.Profile `json:"attackers,omitempty" yaml:"attackers,omitempty"`

	// Assignments maps receiver name to the ordered attacker names wired
	// onto that receiver's link.
	Assignments map[string][]string `json:"assignments,omitempty" yaml:"assignments,omitempty"`

	// Mode selects how overlapping interceptions compose on a shared link.
	Mode attack.Mode `json:"-" yaml:"-"`
}

// ArchetypeName is the canonical archetype name, for serialized records.
func (s Spec) ArchetypeName() string {
	return s.Archetype.String()
}

// AttackerNames returns the declared attacker names in declaration order.
func (s Spec) AttackerNames() []string {
	if len(s.Attackers) == 0 {
		return nil
	}
	names := make([]string, len(s.Attackers))
	for i, p := range s.Attackers {
		names[i] = p.Name
	}
	return names
}

// profile resolves a declared attacker by name.
func (s Spec) profile(name string) (attack.Profile, bool) {
	for _, p := range s.Attackers {
		if p.Name == name {
			return p, true
		}
	}
	return attack.Profile{}, false
}

// Validate checks the spec against a receiver set: every declared attacker
// must be valid, every assignment must reference a known receiver and a
// declared attacker, and the archetype must be defined.
func (s Spec) Validate(receivers []string) error {
	if !s.Archetype.Valid() {
		return errors.NewConfigError("archetype", int(s.Archetype), errors.ErrUnknownArchetype)
	}

	known := make(map[string]bool, len(receivers))
	for _, r := range receivers {
		known[r] = true
	}

	declared := make(map[string]bool, len(s.Attackers))
	for _, p := range s.Attackers {
		if err := p.Validate(); err != nil {
			return err
		}
		if declared[p.Name] {
			return errors.NewConfigError("attacker.name", p.Name, errors.ErrDuplicateAttacker)
		}
		declared[p.Name] = true
	}

	for receiver, chain := range s.Assignments {
		if !known[receiver] {
			return errors.NewConfigError("assignment.receiver", receiver, errors.ErrUnknownReceiver)
		}
		for _, name := range chain {
			if !declared[name] {
				return errors.NewConfigError("assignment.attacker", name, errors.ErrUnknownAttacker)
			}
		}
	}
	return nil
}

// ChainFor builds the attacker chain wired onto the given receiver's link.
// Unassigned receivers get an empty chain.
func (s Spec) ChainFor(receiver string) (attack.Chain, error) {
	names := s.Assignments[receiver]
	if len(names) == 0 {
		return attack.Chain{Mode: s.Mode}, nil
	}
	profiles := make([]attack.Profile, 0, len(names))
	for _, name := range names {
		p, ok := s.profile(name)
		if !ok {
			return attack.Chain{}, errors.NewConfigError("assignment.attacker", name, errors.ErrUnknownAttacker)
		}
		profiles = append(profiles, p)
	}
	return attack.Chain{Attackers: profiles, Mode: s.Mode}, nil
}
