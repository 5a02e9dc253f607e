package output

import (
	"plantmobile/internal/hw/gpio"
	"plantmobile/internal/track"
)

// LED is a single indicator light on a GPIO pin.
type LED struct {
	gpio gpio.Driver
	pin  int
}

func NewLED(g gpio.Driver, pin int) *LED {
	return &LED{gpio: g, pin: pin}
}

func (l *LED) Setup() error {
	if err := l.gpio.SetupPin(l.pin, gpio.Output); err != nil {
		return err
	}
	return l.gpio.WritePin(l.pin, gpio.Low)
}

func (l *LED) On() error  { return l.gpio.WritePin(l.pin, gpio.High) }
func (l *LED) Off() error { return l.gpio.WritePin(l.pin, gpio.Low) }

// DirectionalLeds lights the outer or inner LED when the corresponding
// sensor is brighter than the other by at least the diff-percent cutoff.
type DirectionalLeds struct {
	outer  *LED
	inner  *LED
	cutoff int
}

func NewDirectionalLeds(outer, inner *LED, diffPercentCutoff int) *DirectionalLeds {
	return &DirectionalLeds{outer: outer, inner: inner, cutoff: diffPercentCutoff}
}

func (d *DirectionalLeds) Setup() error {
	if err := d.outer.Setup(); err != nil {
		return err
	}
	return d.inner.Setup()
}

func (d *DirectionalLeds) On() {
	_ = d.outer.On()
	_ = d.inner.On()
}

func (d *DirectionalLeds) Off() {
	_ = d.outer.Off()
	_ = d.inner.Off()
}

func (d *DirectionalLeds) OutputStatus(status track.Status) {
	lx := status.Lux
	if abs(lx.DiffPercent) >= d.cutoff && lx.Outer != lx.Inner {
		if lx.Outer > lx.Inner {
			_ = d.outer.On()
			_ = d.inner.Off()
		} else {
			_ = d.inner.On()
			_ = d.outer.Off()
		}
		return
	}
	d.Off()
}

// ToggledLed reflects an externally toggled enable flag, re-evaluated on
// every status tick.
type ToggledLed struct {
	led     *LED
	enabled func() bool
}

func NewToggledLed(led *LED, enabled func() bool) *ToggledLed {
	return &ToggledLed{led: led, enabled: enabled}
}

func (t *ToggledLed) Setup() error { return t.led.Setup() }

func (t *ToggledLed) Off() { _ = t.led.Off() }

func (t *ToggledLed) OutputStatus(track.Status) { t.Update() }

func (t *ToggledLed) Update() {
	if t.enabled() {
		_ = t.led.On()
	} else {
		_ = t.led.Off()
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
