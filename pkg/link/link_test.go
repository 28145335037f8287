package link_test

import (
	"reflect"
	"testing"

	"github.com/pzverkov/qkdnet/internal/errors"
	"github.com/pzverkov/qkdnet/internal/rng"
	"github.com/pzverkov/qkdnet/pkg/attack"
	"github.com/pzverkov/qkdnet/pkg/link"
)

func TestRunRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     link.Config
		wantErr error
	}{
		{"zero qubits", link.Config{NumQubits: 0, Rand: rng.New(1)}, errors.ErrInvalidQubitCount},
		{"negative qubits", link.Config{NumQubits: -5, Rand: rng.New(1)}, errors.ErrInvalidQubitCount},
		{"nil rand", link.Config{NumQubits: 10}, errors.ErrMissingRand},
		{"bad threshold", link.Config{NumQubits: 10, Threshold: 101, Rand: rng.New(1)}, errors.ErrInvalidThreshold},
		{
			"bad attacker",
			link.Config{
				NumQubits: 10,
				Rand:      rng.New(1),
				Attackers: attack.NewChain(attack.Profile{Name: "Eve", InterceptProbability: 2}),
			},
			errors.ErrInvalidProbability,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := link.Run(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunCleanLinkZeroQBER(t *testing.T) {
	// Without attackers the receiver's sifted bits are exactly the sender's:
	// basis-matched measurements are deterministic.
	for seed := uint64(0); seed < 20; seed++ {
		res, err := link.Run(link.Config{NumQubits: 200, Rand: rng.New(seed)})
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		if res.QBERPercent != 0 {
			t.Errorf("seed %d: clean link QBER = %.2f%%, want 0", seed, res.QBERPercent)
		}
		if !res.Secure {
			t.Errorf("seed %d: clean link classified compromised", seed)
		}
	}
}

func TestRunReproducible(t *testing.T) {
	cfg := func() link.Config {
		return link.Config{
			NumQubits: 100,
			Rand:      rng.New(42),
			Attackers: attack.NewChain(attack.Profile{Name: "Eve", InterceptProbability: 0.5}),
		}
	}

	a, err := link.Run(cfg())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	b, err := link.Run(cfg())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same-seed runs differ:\n%+v\n%+v", a, b)
	}
}

func TestRunFullInterceptionQBER(t *testing.T) {
	// Full intercept-resend converges to ~25% QBER. Average over repeated
	// trials; single runs are too noisy to pin.
	var total, trials float64
	for seed := uint64(0); seed < 40; seed++ {
		res, err := link.Run(link.Config{
			NumQubits: 500,
			Rand:      rng.New(seed),
			Attackers: attack.NewChain(attack.Profile{Name: "Eve", InterceptProbability: 1}),
		})
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		total += res.QBERPercent
		trials++
	}

	mean := total / trials
	if mean < 22 || mean > 28 {
		t.Errorf("full-interception mean QBER = %.2f%%, want ~25%%", mean)
	}
}

func TestRunQBERMonotoneInInterceptRate(t *testing.T) {
	// Expected QBER must not decrease as the intercept rate rises.
	meanQBER := func(rate float64) float64 {
		var total float64
		const trials = 30
		for seed := uint64(0); seed < trials; seed++ {
			res, err := link.Run(link.Config{
				NumQubits: 400,
				Rand:      rng.New(1000 + seed),
				Attackers: attack.NewChain(attack.Profile{Name: "Eve", InterceptProbability: rate}),
			})
			if err != nil {
				t.Fatalf("Run() failed: %v", err)
			}
			total += res.QBERPercent
		}
		return total / trials
	}

	rates := []float64{0, 0.25, 0.5, 0.75, 1}
	prev := -1.0
	for _, r := range rates {
		m := meanQBER(r)
		// 1.5 percentage points of slack for sampling noise.
		if m < prev-1.5 {
			t.Errorf("mean QBER dropped from %.2f%% to %.2f%% as rate rose to %.2f", prev, m, r)
		}
		prev = m
	}
}

func TestRunSecureMatchesThreshold(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		res, err := link.Run(link.Config{
			NumQubits: 60,
			Rand:      rng.New(seed),
			Attackers: attack.NewChain(attack.Profile{Name: "Eve", InterceptProbability: 0.6}),
		})
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		want := res.QBERPercent < res.ThresholdPercent
		if res.Indeterminate {
			want = false
		}
		if res.Secure != want {
			t.Errorf("seed %d: Secure = %v with QBER %.2f%% threshold %.1f%%", seed, res.Secure, res.QBERPercent, res.ThresholdPercent)
		}
	}
}

func TestRunThresholdOverride(t *testing.T) {
	// A permissive threshold flips the verdict on an attacked link.
	cfg := link.Config{
		NumQubits: 400,
		Threshold: 90,
		Rand:      rng.New(3),
		Attackers: attack.NewChain(attack.Profile{Name: "Eve", InterceptProbability: 1}),
	}
	res, err := link.Run(cfg)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if !res.Secure {
		t.Errorf("QBER %.2f%% should pass a 90%% threshold", res.QBERPercent)
	}
	if res.ThresholdPercent != 90 {
		t.Errorf("ThresholdPercent = %v, want 90", res.ThresholdPercent)
	}
}

func TestRunIndeterminateSingleQubit(t *testing.T) {
	// With N=1 roughly half of all seeds produce zero sifted bits. Find one
	// and pin the indeterminate policy.
	seen := false
	for seed := uint64(0); seed < 64 && !seen; seed++ {
		res, err := link.Run(link.Config{NumQubits: 1, Rand: rng.New(seed)})
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		if res.SiftedLength > 0 {
			continue
		}
		seen = true
		if !res.Indeterminate {
			t.Error("zero sifted bits must flag the run indeterminate")
		}
		if res.Secure {
			t.Error("indeterminate run must not be classified secure")
		}
		if res.QBERPercent != 0 {
			t.Errorf("indeterminate QBER = %v, want 0", res.QBERPercent)
		}
		if res.Verdict() != "indeterminate" {
			t.Errorf("Verdict() = %q", res.Verdict())
		}
	}
	if !seen {
		t.Fatal("no zero-sift run found across 64 seeds; check sifting")
	}
}

func TestRunBasisMatchRate(t *testing.T) {
	res, err := link.Run(link.Config{NumQubits: 2000, Rand: rng.New(13)})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if res.BasisMatchRate < 45 || res.BasisMatchRate > 55 {
		t.Errorf("basis match rate = %.2f%%, want ~50%%", res.BasisMatchRate)
	}
	wantRate := 100 * float64(res.SiftedLength) / float64(res.NumQubits)
	if res.BasisMatchRate != wantRate {
		t.Errorf("BasisMatchRate = %v inconsistent with sifted length (%v)", res.BasisMatchRate, wantRate)
	}
}

func TestRunAttackerNamesCarried(t *testing.T) {
	res, err := link.Run(link.Config{
		NumQubits: 10,
		Rand:      rng.New(4),
		Attackers: attack.NewChain(
			attack.Profile{Name: "Eve", InterceptProbability: 0.2},
			attack.Profile{Name: "Mallory", InterceptProbability: 0.8},
		),
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(res.Attackers) != 2 || res.Attackers[0] != "Eve" || res.Attackers[1] != "Mallory" {
		t.Errorf("Attackers = %v, want chain order [Eve Mallory]", res.Attackers)
	}
}
