package stepper

import (
	"time"

	"plantmobile/internal/hw/gpio"
)

// halfStepSequence is the 8-phase coil pattern for a 28BYJ-48 driven through
// a ULN2003 board. Walking the table forward spins the motor clockwise.
var halfStepSequence = [8][4]gpio.Level{
	{gpio.High, gpio.Low, gpio.Low, gpio.Low},
	{gpio.High, gpio.High, gpio.Low, gpio.Low},
	{gpio.Low, gpio.High, gpio.Low, gpio.Low},
	{gpio.Low, gpio.High, gpio.High, gpio.Low},
	{gpio.Low, gpio.Low, gpio.High, gpio.Low},
	{gpio.Low, gpio.Low, gpio.High, gpio.High},
	{gpio.Low, gpio.Low, gpio.Low, gpio.High},
	{gpio.High, gpio.Low, gpio.Low, gpio.High},
}

// Config holds the hardware configuration for the motor.
type Config struct {
	Pins      [4]int        // ULN2003 IN1-IN4 (BCM numbering)
	StepDelay time.Duration // delay after each half-step. Defaults to 1ms.
}

// Stepper drives a 28BYJ-48 stepper motor in half-steps. Positive step counts
// spin clockwise, negative counterclockwise.
type Stepper struct {
	gpio  gpio.Driver
	cfg   Config
	delay time.Duration
	phase int
}

// New creates a new stepper motor controller. Pins are configured on Setup.
func New(g gpio.Driver, cfg Config) *Stepper {
	delay := cfg.StepDelay
	if delay <= 0 {
		delay = 1 * time.Millisecond
	}

	return &Stepper{
		gpio:  g,
		cfg:   cfg,
		delay: delay,
	}
}

// Setup configures the coil pins as outputs and de-energizes them.
func (s *Stepper) Setup() error {
	for _, pin := range s.cfg.Pins {
		if err := s.gpio.SetupPin(pin, gpio.Output); err != nil {
			return err
		}
	}
	return s.Off()
}

// MoveSteps advances the motor by a number of half-steps. Positive is
// clockwise, negative counterclockwise. Blocks until the move completes.
func (s *Stepper) MoveSteps(steps int) error {
	delta := 1
	if steps < 0 {
		delta = -1
		steps = -steps
	}

	for i := 0; i < steps; i++ {
		s.phase = (s.phase + delta + len(halfStepSequence)) % len(halfStepSequence)
		if err := s.writePhase(halfStepSequence[s.phase]); err != nil {
			return err
		}
		time.Sleep(s.delay)
	}
	return nil
}

func (s *Stepper) writePhase(levels [4]gpio.Level) error {
	for i, pin := range s.cfg.Pins {
		if err := s.gpio.WritePin(pin, levels[i]); err != nil {
			return err
		}
	}
	return nil
}

// Energize sets all coils high. Holds no useful position but draws enough
// current to keep a USB power bank from shutting off.
func (s *Stepper) Energize() error {
	return s.writePhase([4]gpio.Level{gpio.High, gpio.High, gpio.High, gpio.High})
}

// Off de-energizes all coils. The motor freewheels with no holding torque.
func (s *Stepper) Off() error {
	return s.writePhase([4]gpio.Level{gpio.Low, gpio.Low, gpio.Low, gpio.Low})
}
