package qubit_test

import (
	"encoding/json"
	"testing"

	"github.com/pzverkov/qkdnet/internal/rng"
	"github.com/pzverkov/qkdnet/pkg/qubit"
)

func TestPrepare(t *testing.T) {
	tests := []struct {
		bit   qubit.Bit
		basis qubit.Basis
	}{
		{0, qubit.Rectilinear},
		{1, qubit.Rectilinear},
		{0, qubit.Diagonal},
		{1, qubit.Diagonal},
	}

	for _, tt := range tests {
		q := qubit.Prepare(tt.bit, tt.basis)
		if q.Bit() != tt.bit {
			t.Errorf("Prepare(%d, %v).Bit() = %d", tt.bit, tt.basis, q.Bit())
		}
		if q.Basis() != tt.basis {
			t.Errorf("Prepare(%d, %v).Basis() = %v", tt.bit, tt.basis, q.Basis())
		}
	}
}

func TestMeasureMatchingBasisDeterministic(t *testing.T) {
	ch := qubit.NewChannel(rng.New(1))

	for _, basis := range []qubit.Basis{qubit.Rectilinear, qubit.Diagonal} {
		for _, bit := range []qubit.Bit{0, 1} {
			q := qubit.Prepare(bit, basis)
			for i := 0; i < 50; i++ {
				m := ch.Measure(q, basis)
				if m.Bit != bit {
					t.Fatalf("Measure in matching basis %v returned %d, want %d", basis, m.Bit, bit)
				}
				if m.Basis != basis {
					t.Fatalf("Measurement basis = %v, want %v", m.Basis, basis)
				}
			}
		}
	}
}

func TestMeasureMismatchedBasisUniform(t *testing.T) {
	ch := qubit.NewChannel(rng.New(42))
	q := qubit.Prepare(1, qubit.Rectilinear)

	ones := 0
	const n = 10000
	for i := 0; i < n; i++ {
		m := ch.Measure(q, qubit.Diagonal)
		if m.Bit > 1 {
			t.Fatalf("measurement bit = %d", m.Bit)
		}
		ones += int(m.Bit)
	}

	ratio := float64(ones) / n
	if ratio < 0.47 || ratio > 0.53 {
		t.Errorf("mismatched-basis outcomes ratio = %.3f, want ~0.5", ratio)
	}
}

func TestMeasureReproducible(t *testing.T) {
	run := func() []qubit.Bit {
		ch := qubit.NewChannel(rng.New(7))
		out := make([]qubit.Bit, 0, 100)
		q := qubit.Prepare(0, qubit.Rectilinear)
		for i := 0; i < 100; i++ {
			out = append(out, ch.Measure(q, qubit.Diagonal).Bit)
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same-seed measurements diverged at index %d", i)
		}
	}
}

func TestInterceptMatchingBasisTransparent(t *testing.T) {
	ch := qubit.NewChannel(rng.New(3))

	q := qubit.Prepare(1, qubit.Diagonal)
	resent, m := ch.Intercept(q, qubit.Diagonal)

	if m.Bit != 1 {
		t.Errorf("matching-basis intercept measured %d, want 1", m.Bit)
	}
	if resent.Bit() != 1 || resent.Basis() != qubit.Diagonal {
		t.Errorf("resent qubit = (%d, %v), want (1, diagonal)", resent.Bit(), resent.Basis())
	}
}

func TestInterceptRepreparesInInterceptorBasis(t *testing.T) {
	ch := qubit.NewChannel(rng.New(11))

	q := qubit.Prepare(0, qubit.Rectilinear)
	resent, m := ch.Intercept(q, qubit.Diagonal)

	// The resent qubit must carry the interceptor's basis and measured bit,
	// regardless of what the original encoded.
	if resent.Basis() != qubit.Diagonal {
		t.Errorf("resent basis = %v, want diagonal", resent.Basis())
	}
	if resent.Bit() != m.Bit {
		t.Errorf("resent bit = %d, measurement bit = %d", resent.Bit(), m.Bit)
	}
}

func TestRandomBasisUniform(t *testing.T) {
	ch := qubit.NewChannel(rng.New(9))
	diag := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if ch.RandomBasis() == qubit.Diagonal {
			diag++
		}
	}
	ratio := float64(diag) / n
	if ratio < 0.47 || ratio > 0.53 {
		t.Errorf("diagonal basis ratio = %.3f, want ~0.5", ratio)
	}
}

func TestBitJSONArrayShape(t *testing.T) {
	// Key sequences must serialize as integer arrays. A plain uint8 slice
	// would come out base64-encoded, which no transport consumer can read.
	key := []qubit.Bit{0, 1, 1, 0, 1}

	data, err := json.Marshal(key)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "[0,1,1,0,1]" {
		t.Fatalf("key serialized as %s, want [0,1,1,0,1]", data)
	}

	var back []qubit.Bit
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(back) != len(key) {
		t.Fatalf("round trip length = %d, want %d", len(back), len(key))
	}
	for i := range key {
		if back[i] != key[i] {
			t.Errorf("round trip bit %d = %d, want %d", i, back[i], key[i])
		}
	}
}

func TestBitJSONRejectsOutOfRange(t *testing.T) {
	var b qubit.Bit
	if err := json.Unmarshal([]byte("2"), &b); err == nil {
		t.Error("bit value 2 should fail to unmarshal")
	}
	if err := json.Unmarshal([]byte(`"1"`), &b); err == nil {
		t.Error("quoted bit should fail to unmarshal")
	}
}

func TestBasisString(t *testing.T) {
	tests := []struct {
		basis qubit.Basis
		want  string
	}{
		{qubit.Rectilinear, "rectilinear"},
		{qubit.Diagonal, "diagonal"},
		{qubit.Basis(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.basis.String(); got != tt.want {
			t.Errorf("Basis(%d).String() = %q, want %q", tt.basis, got, tt.want)
		}
	}
}
