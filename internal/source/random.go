// Package source provides the randomness the tunnel generator draws from.
// Generation never touches a global generator: callers pass a Random in,
// seeded for reproducible runs or seeded from entropy otherwise.
package source

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

// Random draws uniformly from [0, 1).
type Random interface {
	Float64() float64
}

// Seeded is a deterministic Random that remembers its seed so a run can be
// reproduced and reported.
type Seeded struct {
	seed int64
	r    *rand.Rand
}

// NewSeeded returns a deterministic source for seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{seed: seed, r: rand.New(rand.NewSource(seed))}
}

// NewEntropy returns a source seeded from the operating system's entropy
// pool. The clock is used only when that pool is unavailable.
func NewEntropy() *Seeded {
	return NewSeeded(EntropySeed())
}

// EntropySeed returns a fresh non-zero seed.
func EntropySeed() int64 {
	var b [8]byte
	seed := time.Now().UnixNano()
	if _, err := crand.Read(b[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(b[:]) >> 1)
	}
	if seed == 0 {
		seed = 1
	}
	return seed
}

func (s *Seeded) Float64() float64 { return s.r.Float64() }

// Seed returns the seed the source was created with.
func (s *Seeded) Seed() int64 { return s.seed }

// Fixed returns the same value on every draw. Values outside [0, 1) are
// clamped into range.
type Fixed float64

func (f Fixed) Float64() float64 {
	switch {
	case f < 0:
		return 0
	case f >= 1:
		return 0.9999999999999999
	}
	return float64(f)
}

// Sequence replays the given values in order and then repeats them.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence returns a source replaying values. An empty list behaves as Fixed(0).
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return Fixed(v).Float64()
}
