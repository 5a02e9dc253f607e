// Package voltage reads the motor supply voltage through the ADS1115 ADC.
package voltage

import (
	"fmt"

	"github.com/rs/zerolog"

	"plantmobile/internal/hw/i2cdev"
)

// Reader measures the source voltage through a divider of
// Vs~r1~ADC~r2~GND, scaling the ADC reading by (r1+r2)/r2.
type Reader struct {
	bus        string
	channel    int
	multiplier float64
	ads        *i2cdev.ADS1115
	prev       float64
	log        zerolog.Logger
}

func NewReader(bus string, channel int, r1, r2 float64, logger zerolog.Logger) *Reader {
	if channel < 0 || channel > 3 {
		panic("voltage: analog channel must be 0-3")
	}
	if r2 <= 0 {
		panic("voltage: r2 must be positive")
	}
	return &Reader{
		bus:        bus,
		channel:    channel,
		multiplier: (r1 + r2) / r2,
		log:        logger.With().Str("component", "voltage").Logger(),
	}
}

func (r *Reader) Setup() error {
	if r.ads != nil {
		return nil
	}
	ads, err := i2cdev.NewADS1115(r.bus)
	if err != nil {
		return fmt.Errorf("voltage reader: %w", err)
	}
	r.ads = ads
	return nil
}

// Read returns the scaled source voltage. Transient bus errors degrade to
// the previous reading.
func (r *Reader) Read() float64 {
	if r.ads == nil {
		panic("voltage: must call Setup before reading")
	}
	v, err := r.ads.ReadVoltage(r.channel)
	if err != nil {
		r.log.Warn().Err(err).Float64("prev", r.prev).Msg("voltage read failed: using previous value")
		return r.prev
	}
	r.prev = v * r.multiplier
	return r.prev
}

func (r *Reader) Off() {
	if r.ads != nil {
		r.ads.Close()
		r.ads = nil
	}
}
