// Package qubit models the preparation, transmission and measurement of
// single BB84 qubits.
//
// The model is the standard classical simulation of conjugate-basis encoding:
// a qubit measured in the basis it was prepared in yields its encoded bit
// deterministically; a qubit measured in the other basis collapses to a
// uniformly random bit. This is the entire mechanism behind BB84's
// eavesdropping detection, so the package keeps it exact and free of any
// channel-noise shortcuts.
package qubit

import (
	"encoding/json"
	"fmt"
)

// Bit is a classical bit value, 0 or 1.
type Bit uint8

// MarshalJSON encodes the bit as a bare 0 or 1. Without this, a []Bit would
// serialize as a base64 string, since Bit is a byte kind; key sequences must
// reach transport consumers as integer arrays.
func (b Bit) MarshalJSON() ([]byte, error) {
	if b == 0 {
		return []byte{'0'}, nil
	}
	return []byte{'1'}, nil
}

// UnmarshalJSON decodes a bare 0 or 1.
func (b *Bit) UnmarshalJSON(data []byte) error {
	var v uint8
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v > 1 {
		return fmt.Errorf("bit value %d out of range", v)
	}
	*b = Bit(v)
	return nil
}

// Basis is one of the two conjugate encoding bases.
type Basis uint8

// The two BB84 bases. Rectilinear encodes bits in the {|0>, |1>} pair,
// Diagonal in the {|+>, |->} pair.
const (
	Rectilinear Basis = iota
	Diagonal
)

// String returns the basis name.
func (b Basis) String() string {
	switch b {
	case Rectilinear:
		return "rectilinear"
	case Diagonal:
		return "diagonal"
	default:
		return "unknown"
	}
}

// Qubit is a prepared two-state quantum bit. It is immutable: interception
// never modifies a Qubit, it produces a freshly prepared one.
type Qubit struct {
	bit   Bit
	basis Basis
}

// Bit returns the classical value encoded in the qubit.
func (q Qubit) Bit() Bit { return q.bit }

// Basis returns the basis the qubit was prepared in.
func (q Qubit) Basis() Basis { return q.basis }

// Measurement is the outcome of measuring a qubit in a chosen basis.
type Measurement struct {
	Bit   Bit
	Basis Basis
}

// Source yields the randomness a Channel draws from. *rng.Stream satisfies it.
type Source interface {
	Uint64() uint64
	Float64() float64
}

// Channel simulates a quantum channel for single qubits: preparation,
// optional intercept-resend, and measurement.
type Channel struct {
	rand Source
}

// NewChannel creates a Channel drawing randomness from src.
func NewChannel(src Source) *Channel {
	return &Channel{rand: src}
}

// Prepare encodes bit in the given basis. Deterministic; no randomness drawn.
func Prepare(bit Bit, basis Basis) Qubit {
	return Qubit{bit: bit & 1, basis: basis}
}

// RandomBit returns a uniformly random bit.
func (c *Channel) RandomBit() Bit {
	return Bit(c.rand.Uint64() & 1)
}

// RandomBasis returns a uniformly random basis.
func (c *Channel) RandomBasis() Basis {
	return Basis(c.rand.Uint64() & 1)
}

// Measure measures q in the given basis.
//
// On a basis match the outcome equals the encoded bit. On a mismatch the
// outcome is a fresh uniformly random bit, modeling collapse in the wrong
// basis. One random draw per mismatched measurement, none on a match.
func (c *Channel) Measure(q Qubit, basis Basis) Measurement {
	if basis == q.basis {
		return Measurement{Bit: q.bit, Basis: basis}
	}
	return Measurement{Bit: c.RandomBit(), Basis: basis}
}

// Intercept performs one intercept-resend step: the qubit is measured in the
// interceptor's basis and a new qubit is prepared from the outcome.
//
// When the interceptor's basis differs from the original preparation basis,
// the re-prepared qubit carries a randomized bit in the wrong basis. That
// disturbance is what the receiving end later observes as an elevated error
// rate, independent of whether the final measurement basis matches the
// sender's.
func (c *Channel) Intercept(q Qubit, basis Basis) (Qubit, Measurement) {
	m := c.Measure(q, basis)
	return Prepare(m.Bit, m.Basis), m
}
