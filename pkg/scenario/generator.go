package scenario

import (
	"fmt"

	"github.com/pzverkov/qkdnet/internal/constants"
	"github.com/pzverkov/qkdnet/internal/errors"
	"github.com/pzverkov/qkdnet/internal/rng"
	"github.com/pzverkov/qkdnet/pkg/attack"
)

// Generator produces randomized scenario specifications over a fixed
// receiver set. All randomness comes from the injected stream, so a batch is
// fully reproducible from its seed.
type Generator struct {
	receivers []string
	rand      *rng.Stream

	minAttackers int
	maxAttackers int
	mode         attack.Mode
	pinned       *Archetype
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithAttackerBounds overrides the randomized attacker-count bounds.
func WithAttackerBounds(min, max int) GeneratorOption {
	return func(g *Generator) {
		g.minAttackers = min
		g.maxAttackers = max
	}
}

// WithMode sets the interception-composition mode stamped on every spec.
func WithMode(mode attack.Mode) GeneratorOption {
	return func(g *Generator) {
		g.mode = mode
	}
}

// WithPinnedArchetype pins every generated scenario to one archetype instead
// of drawing archetypes uniformly.
func WithPinnedArchetype(a Archetype) GeneratorOption {
	return func(g *Generator) {
		g.pinned = &a
	}
}

// NewGenerator creates a Generator over the given receiver set.
func NewGenerator(receivers []string, rand *rng.Stream, opts ...GeneratorOption) (*Generator, error) {
	if len(receivers) == 0 {
		return nil, errors.NewConfigError("receivers", receivers, errors.ErrNoReceivers)
	}
	if rand == nil {
		return nil, errors.NewConfigError("rand", nil, errors.ErrMissingRand)
	}

	g := &Generator{
		receivers:    append([]string(nil), receivers...),
		rand:         rand,
		minAttackers: constants.MinAttackers,
		maxAttackers: constants.MaxAttackers,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.minAttackers < 1 || g.maxAttackers < g.minAttackers {
		return nil, errors.NewConfigError("attackerBounds",
			fmt.Sprintf("%d-%d", g.minAttackers, g.maxAttackers), errors.ErrInvalidAttackerCount)
	}
	if g.pinned != nil && !g.pinned.Valid() {
		return nil, errors.NewConfigError("archetype", int(*g.pinned), errors.ErrUnknownArchetype)
	}
	return g, nil
}

// Generate produces k scenario specifications.
func (g *Generator) Generate(k int) ([]Spec, error) {
	if k <= 0 {
		return nil, errors.NewConfigError("numScenarios", k, errors.ErrInvalidScenarioCount)
	}

	specs := make([]Spec, 0, k)
	for i := 0; i < k; i++ {
		archetype := g.drawArchetype()
		spec := g.generate(archetype)
		spec.Name = fmt.Sprintf("scenario_%d_%s", i+1, archetype)
		specs = append(specs, spec)
	}
	return specs, nil
}

// One produces a single spec of the given archetype.
func (g *Generator) One(archetype Archetype) (Spec, error) {
	if !archetype.Valid() {
		return Spec{}, errors.NewConfigError("archetype", int(archetype), errors.ErrUnknownArchetype)
	}
	spec := g.generate(archetype)
	spec.Name = archetype.String()
	return spec, nil
}

func (g *Generator) drawArchetype() Archetype {
	if g.pinned != nil {
		return *g.pinned
	}
	all := Archetypes()
	return all[g.rand.IntN(len(all))]
}

// newAttackers draws n attacker profiles with random intercept rates.
func (g *Generator) newAttackers(n int) []attack.Profile {
	profiles := make([]attack.Profile, n)
	for i := range profiles {
		profiles[i] = attack.Profile{
			Name:                 fmt.Sprintf("%s%d", constants.AttackerNamePrefix, i+1),
			InterceptProbability: g.rand.Float64(),
		}
	}
	return profiles
}

// pickReceivers draws n distinct receivers uniformly.
func (g *Generator) pickReceivers(n int) []string {
	idx := g.rand.Perm(len(g.receivers))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = g.receivers[j]
	}
	return out
}

// drawCount draws an attacker count within the generator's bounds, capped by
// limit when archetypes need distinct targets. A multi-attacker archetype
// draws at least two attackers whenever the bounds allow.
func (g *Generator) drawCount(limit int, multi bool) int {
	lo, hi := g.minAttackers, g.maxAttackers
	if multi && lo < 2 && hi >= 2 {
		lo = 2
	}
	if limit > 0 && hi > limit {
		hi = limit
	}
	if hi < lo {
		hi = lo
	}
	return lo + g.rand.IntN(hi-lo+1)
}

func (g *Generator) generate(archetype Archetype) Spec {
	spec := Spec{
		Archetype:   archetype,
		Mode:        g.mode,
		Assignments: map[string][]string{},
	}

	switch archetype {
	case NoAttack:
		// Clean baseline, nothing to wire.

	case SingleAttackerSingleTarget:
		spec.Attackers = g.newAttackers(1)
		target := g.pickReceivers(1)[0]
		spec.Assignments[target] = []string{spec.Attackers[0].Name}

	case SingleAttackerMultiTarget:
		spec.Attackers = g.newAttackers(1)
		n := g.multiTargetCount()
		for _, target := range g.pickReceivers(n) {
			spec.Assignments[target] = []string{spec.Attackers[0].Name}
		}

	case MultiAttackerSingleTargets:
		// Each attacker hits its own distinct receiver.
		n := g.drawCount(len(g.receivers), true)
		if n > len(g.receivers) {
			n = len(g.receivers)
		}
		spec.Attackers = g.newAttackers(n)
		for i, target := range g.pickReceivers(n) {
			spec.Assignments[target] = []string{spec.Attackers[i].Name}
		}

	case MultiAttackerMultiTarget:
		n := g.drawCount(0, true)
		spec.Attackers = g.newAttackers(n)
		// Each attacker independently targets each receiver with
		// probability 1/2; chains keep attacker declaration order.
		assigned := false
		for _, p := range spec.Attackers {
			for _, r := range g.receivers {
				if g.rand.Bernoulli(0.5) {
					spec.Assignments[r] = append(spec.Assignments[r], p.Name)
					assigned = true
				}
			}
		}
		if !assigned {
			target := g.pickReceivers(1)[0]
			spec.Assignments[target] = []string{spec.Attackers[0].Name}
		}
	}

	return spec
}

// multiTargetCount draws how many receivers a single attacker fans out to:
// at least two when the receiver set allows it.
func (g *Generator) multiTargetCount() int {
	if len(g.receivers) < 2 {
		return 1
	}
	return 2 + g.rand.IntN(len(g.receivers)-1)
}
