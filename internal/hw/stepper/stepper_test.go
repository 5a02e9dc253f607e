package stepper

import (
	"testing"
	"time"

	"plantmobile/internal/hw/gpio"
)

// recordingDriver records GPIO writes for verification.
type recordingDriver struct {
	writes []gpioWrite
}

type gpioWrite struct {
	pin   int
	level gpio.Level
}

func (d *recordingDriver) SetupPin(pin int, mode gpio.PinMode) error { return nil }

func (d *recordingDriver) WritePin(pin int, level gpio.Level) error {
	d.writes = append(d.writes, gpioWrite{pin: pin, level: level})
	return nil
}

func (d *recordingDriver) ReadPin(pin int) (gpio.Level, error) { return gpio.Low, nil }

func (d *recordingDriver) Close() error { return nil }

// phases groups the recorded writes into per-step coil patterns.
func (d *recordingDriver) phases(t *testing.T) [][4]gpio.Level {
	t.Helper()
	if len(d.writes)%4 != 0 {
		t.Fatalf("writes not a multiple of 4: %d", len(d.writes))
	}
	var result [][4]gpio.Level
	for i := 0; i < len(d.writes); i += 4 {
		var phase [4]gpio.Level
		for j := 0; j < 4; j++ {
			phase[j] = d.writes[i+j].level
		}
		result = append(result, phase)
	}
	return result
}

func newTestStepper() (*Stepper, *recordingDriver) {
	drv := &recordingDriver{}
	s := New(drv, Config{
		Pins:      [4]int{27, 22, 10, 9},
		StepDelay: 1 * time.Microsecond,
	})
	return s, drv
}

func TestStepper_MoveStepsClockwise(t *testing.T) {
	s, drv := newTestStepper()

	if err := s.MoveSteps(8); err != nil {
		t.Fatalf("MoveSteps: %v", err)
	}

	phases := drv.phases(t)
	if len(phases) != 8 {
		t.Fatalf("expected 8 phases, got %d", len(phases))
	}
	// Starting phase is 0, so the first advance lands on sequence entry 1.
	for i, phase := range phases {
		want := halfStepSequence[(i+1)%8]
		if phase != want {
			t.Errorf("phase %d: got %v, want %v", i, phase, want)
		}
	}
}

func TestStepper_MoveStepsCounterclockwise(t *testing.T) {
	s, drv := newTestStepper()

	if err := s.MoveSteps(-2); err != nil {
		t.Fatalf("MoveSteps: %v", err)
	}

	phases := drv.phases(t)
	if len(phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(phases))
	}
	if phases[0] != halfStepSequence[7] {
		t.Errorf("first phase: got %v, want %v", phases[0], halfStepSequence[7])
	}
	if phases[1] != halfStepSequence[6] {
		t.Errorf("second phase: got %v, want %v", phases[1], halfStepSequence[6])
	}
}

func TestStepper_MoveStepsZero(t *testing.T) {
	s, drv := newTestStepper()

	if err := s.MoveSteps(0); err != nil {
		t.Fatalf("MoveSteps(0): %v", err)
	}
	if len(drv.writes) != 0 {
		t.Errorf("expected no writes, got %d", len(drv.writes))
	}
}

func TestStepper_DirectionReversalIsSymmetric(t *testing.T) {
	s, drv := newTestStepper()

	if err := s.MoveSteps(3); err != nil {
		t.Fatalf("MoveSteps(3): %v", err)
	}
	if err := s.MoveSteps(-3); err != nil {
		t.Fatalf("MoveSteps(-3): %v", err)
	}

	phases := drv.phases(t)
	// After an equal number of steps back, the coil pattern returns to the
	// starting phase.
	if last := phases[len(phases)-1]; last != halfStepSequence[0] {
		t.Errorf("final phase: got %v, want %v", last, halfStepSequence[0])
	}
}

func TestStepper_Off(t *testing.T) {
	s, drv := newTestStepper()

	if err := s.Off(); err != nil {
		t.Fatalf("Off: %v", err)
	}
	for _, w := range drv.writes {
		if w.level != gpio.Low {
			t.Errorf("pin %d: expected Low, got %v", w.pin, w.level)
		}
	}
}

func TestStepper_Energize(t *testing.T) {
	s, drv := newTestStepper()

	if err := s.Energize(); err != nil {
		t.Fatalf("Energize: %v", err)
	}
	if len(drv.writes) != 4 {
		t.Fatalf("expected 4 writes, got %d", len(drv.writes))
	}
	for _, w := range drv.writes {
		if w.level != gpio.High {
			t.Errorf("pin %d: expected High, got %v", w.pin, w.level)
		}
	}
}
