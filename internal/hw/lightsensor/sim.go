package lightsensor

import (
	"math/rand"
	"time"

	"plantmobile/internal/lux"
)

// Sim simulates the paired sensors for development machines: values vary
// around a base level, as if lights flicker and clouds pass.
type Sim struct {
	base      int
	variation int
}

func NewSim(base, variation int) *Sim {
	return &Sim{base: base, variation: variation}
}

func (s *Sim) Setup() error { return nil }

func (s *Sim) Read() lux.Reading {
	return lux.NewReading(s.sample(), s.sample(), time.Now())
}

func (s *Sim) Off() {}

func (s *Sim) sample() int {
	v := s.base
	if s.variation > 0 {
		v += rand.Intn(2*s.variation) - s.variation
	}
	return max(v, 0)
}
