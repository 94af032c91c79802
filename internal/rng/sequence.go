package rng

import "fmt"

// Sequence is a deterministic Source that replays a fixed list of floats.
// Int draws are derived from the same float stream so that a test can
// script an exact outcome. The sequence wraps around when exhausted.
type Sequence struct {
	floats []float64
	next   int
}

// NewSequence creates a Sequence over the given draws. Each value must be
// in [0, 1).
func NewSequence(floats ...float64) *Sequence {
	return &Sequence{floats: floats}
}

func (s *Sequence) draw() (float64, error) {
	if len(s.floats) == 0 {
		return 0, fmt.Errorf("sequence has no draws")
	}
	v := s.floats[s.next%len(s.floats)]
	s.next++
	if v < 0 || v >= 1 {
		return 0, fmt.Errorf("sequence draw %v out of range [0, 1)", v)
	}
	return v, nil
}

// Int returns floor(draw * max), a uniform integer when the draw is uniform.
func (s *Sequence) Int(max int64) (int64, error) {
	if max <= 0 {
		return 0, fmt.Errorf("max must be positive")
	}
	v, err := s.draw()
	if err != nil {
		return 0, err
	}
	return int64(v * float64(max)), nil
}

// Float returns the next scripted draw.
func (s *Sequence) Float() (float64, error) {
	return s.draw()
}
