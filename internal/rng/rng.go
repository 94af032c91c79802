// Package rng provides the random source used by the outcome generators.
// The generators take a Source so that tests can inject deterministic draws.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

// Source is the draw interface consumed by the outcome generators.
type Source interface {
	// Int returns a uniform integer in [0, max).
	Int(max int64) (int64, error)
	// Float returns a uniform float in [0.0, 1.0).
	Float() (float64, error)
}

// Service is the production Source, backed by crypto/rand.
type Service struct {
	entropy io.Reader
	mu      sync.Mutex

	samplesGenerated int64
}

// New creates a new RNG service using crypto/rand.
func New() *Service {
	return &Service{entropy: rand.Reader}
}

// Int returns a random integer in range [0, max).
// Uses rejection sampling to eliminate modulo bias.
func (s *Service) Int(max int64) (int64, error) {
	if max <= 0 {
		return 0, fmt.Errorf("max must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Reject values above the largest multiple of max to keep the
	// distribution uniform.
	threshold := uint64(1<<63-1) - (uint64(1<<63-1) % uint64(max))

	for {
		buf := make([]byte, 8)
		if _, err := io.ReadFull(s.entropy, buf); err != nil {
			return 0, fmt.Errorf("failed to generate random int: %w", err)
		}

		n := binary.BigEndian.Uint64(buf) >> 1 // 63-bit positive range

		if n < threshold {
			s.samplesGenerated++
			return int64(n % uint64(max)), nil
		}
	}
}

// Float returns a random float in range [0.0, 1.0) with 53 bits of precision.
func (s *Service) Float() (float64, error) {
	n, err := s.Int(1 << 53)
	if err != nil {
		return 0, err
	}
	return float64(n) / float64(1<<53), nil
}

// Samples returns the number of draws generated, for health monitoring.
func (s *Service) Samples() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samplesGenerated
}
