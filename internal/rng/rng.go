// Package rng provides seedable random streams for the simulation engine.
//
// Every randomized step of the protocol (bit generation, basis choice,
// interception, measurement collapse) draws from an injected Stream rather
// than a global generator, so full runs are reproducible from a single seed.
//
// Concurrent units (the links of one network scenario) each receive their own
// sub-stream derived deterministically from the parent seed and a label via
// SHAKE-256. Derivation is order-independent: a link's stream depends only on
// the parent seed and the link's label, never on how many values other links
// have drawn.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	mrand "math/rand/v2"

	"golang.org/x/crypto/sha3"
)

// domain separates stream derivation from any other SHAKE-256 use.
const domain = "qkdnet-stream-v1"

// Stream is a deterministic random stream seeded from a uint64.
// It is not safe for concurrent use; derive one Stream per goroutine.
type Stream struct {
	*mrand.Rand
	seed uint64
}

// New creates a Stream from the given seed.
func New(seed uint64) *Stream {
	return &Stream{
		Rand: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed: seed,
	}
}

// NewEntropy creates a Stream seeded from the operating system CSPRNG.
// Use this for non-reproducible production runs; tests should use New.
func NewEntropy() *Stream {
	var b [8]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		panic("rng: failed to read from CSPRNG: " + err.Error())
	}
	return New(binary.BigEndian.Uint64(b[:]))
}

// Seed returns the seed this stream was created from.
func (s *Stream) Seed() uint64 {
	return s.seed
}

// Derive returns a new Stream whose seed is a SHAKE-256 digest of this
// stream's seed and the given label. Length-prefixed inputs keep the
// encoding unambiguous.
func (s *Stream) Derive(label string) *Stream {
	h := sha3.NewShake256()

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(domain)))
	h.Write(buf[:])
	h.Write([]byte(domain))

	binary.BigEndian.PutUint64(buf[:], s.seed)
	h.Write(buf[:])

	binary.BigEndian.PutUint64(buf[:], uint64(len(label)))
	h.Write(buf[:])
	h.Write([]byte(label))

	var out [8]byte
	h.Read(out[:])
	return New(binary.BigEndian.Uint64(out[:]))
}

// Bit returns a uniformly random bit.
func (s *Stream) Bit() int {
	return int(s.Uint64() & 1)
}

// Bernoulli reports true with probability p.
func (s *Stream) Bernoulli(p float64) bool {
	return s.Float64() < p
}
