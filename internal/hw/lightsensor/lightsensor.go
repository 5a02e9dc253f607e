// Package lightsensor adapts the paired TSL2561 chips into lux readings.
package lightsensor

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"plantmobile/internal/hw/i2cdev"
	"plantmobile/internal/lux"
)

// Paired reads the outer and inner TSL2561 sensors behind the shared mux.
type Paired struct {
	bus     string
	mux     *i2cdev.TCA9548A
	outerCh int
	innerCh int
	outer   *i2cdev.TSL2561
	inner   *i2cdev.TSL2561
	last    lux.Reading
	hasLast bool
	log     zerolog.Logger
}

func NewPaired(bus string, mux *i2cdev.TCA9548A, outerCh, innerCh int, logger zerolog.Logger) *Paired {
	if outerCh < 0 || outerCh > 7 || innerCh < 0 || innerCh > 7 {
		panic("lightsensor: mux channel must be 0-7")
	}
	return &Paired{
		bus:     bus,
		mux:     mux,
		outerCh: outerCh,
		innerCh: innerCh,
		log:     logger.With().Str("component", "light_sensor").Logger(),
	}
}

// Setup probes both sensors. Fails when either is absent, which excludes the
// whole platform at startup.
func (p *Paired) Setup() error {
	if p.outer != nil {
		return nil
	}
	p.log.Info().Int("outer_channel", p.outerCh).Int("inner_channel", p.innerCh).
		Msg("initializing light sensors")
	outer, err := i2cdev.NewTSL2561(p.bus, p.mux, p.outerCh)
	if err != nil {
		return fmt.Errorf("outer sensor: %w", err)
	}
	inner, err := i2cdev.NewTSL2561(p.bus, p.mux, p.innerCh)
	if err != nil {
		outer.Close()
		return fmt.Errorf("inner sensor: %w", err)
	}
	p.outer, p.inner = outer, inner
	return nil
}

// Read returns the current reading. Transient bus errors degrade to the last
// good reading rather than propagate mid-run.
func (p *Paired) Read() lux.Reading {
	if p.outer == nil {
		panic("lightsensor: must call Setup before reading")
	}

	outer, errO := p.outer.Infrared()
	inner, errI := p.inner.Infrared()
	if errO != nil || errI != nil {
		p.log.Warn().AnErr("outer_err", errO).AnErr("inner_err", errI).
			Msg("light read failed: using last reading")
		if p.hasLast {
			return p.last
		}
		return lux.NewReading(0, 0, time.Now())
	}

	p.last = lux.NewReading(outer, inner, time.Now())
	p.hasLast = true
	return p.last
}

func (p *Paired) Off() {
	if p.outer != nil {
		p.outer.Close()
		p.inner.Close()
		p.outer, p.inner = nil, nil
	}
}
