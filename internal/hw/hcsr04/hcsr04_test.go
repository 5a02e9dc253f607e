package hcsr04

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"plantmobile/internal/hw/gpio"
)

// scriptedDriver serves a scripted sequence of echo pin levels; once the
// script is exhausted it repeats the last entry.
type scriptedDriver struct {
	gpio.MockDriver
	echoPin  int
	levels   []gpio.Level
	i        int
	triggers int
}

func (d *scriptedDriver) WritePin(pin int, level gpio.Level) error {
	if level == gpio.High {
		d.triggers++
	}
	return nil
}

func (d *scriptedDriver) ReadPin(pin int) (gpio.Level, error) {
	if pin != d.echoPin || len(d.levels) == 0 {
		return gpio.Low, nil
	}
	l := d.levels[min(d.i, len(d.levels)-1)]
	d.i++
	return l, nil
}

func newTestSensor(drv *scriptedDriver) *Sensor {
	return New(drv, 4, 17, 10, 5*time.Millisecond, zerolog.Nop())
}

func TestRead_TimeoutDefaultsToInf(t *testing.T) {
	drv := &scriptedDriver{echoPin: 17} // echo never goes high
	s := newTestSensor(drv)

	d := s.Read()
	if !math.IsInf(d, 1) {
		t.Errorf("distance: got %v, want +Inf", d)
	}
	// The measurement is retried once before giving up: two trigger pulses.
	if drv.triggers != 2 {
		t.Errorf("triggers: got %d, want 2", drv.triggers)
	}
}

func TestRead_TimeoutFallsBackToPrevious(t *testing.T) {
	drv := &scriptedDriver{echoPin: 17, levels: []gpio.Level{gpio.High, gpio.Low}}
	s := newTestSensor(drv)

	first := s.Read()
	if math.IsInf(first, 1) {
		t.Fatalf("first read should have succeeded, got %v", first)
	}

	// Make all subsequent reads time out.
	drv.levels = []gpio.Level{gpio.Low}
	drv.i = 0

	second := s.Read()
	if second != first {
		t.Errorf("fallback distance: got %v, want previous %v", second, first)
	}
}

func TestIsInRange(t *testing.T) {
	// Immediate high then low: near-zero echo time, distance ~0cm.
	drv := &scriptedDriver{echoPin: 17, levels: []gpio.Level{gpio.High, gpio.Low}}
	s := newTestSensor(drv)

	if !s.IsInRange() {
		t.Error("expected in range for near-zero echo")
	}
}

func TestIsInRange_OutOfRangeOnTimeout(t *testing.T) {
	drv := &scriptedDriver{echoPin: 17}
	s := newTestSensor(drv)

	if s.IsInRange() {
		t.Error("infinite distance must read as out of range")
	}
}
