package gpio

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Level represents the logical state of a GPIO pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// PinMode indicates whether a GPIO is input or output.
type PinMode int

const (
	Input PinMode = iota
	Output
)

// Driver defines the abstract interface for controlling GPIOs.
// This allows plugging in a real Raspberry Pi implementation
// or a mock for development on PC.
type Driver interface {
	SetupPin(pin int, mode PinMode) error
	WritePin(pin int, level Level) error
	ReadPin(pin int) (Level, error)
	Close() error
}

// MockDriver is a test implementation that keeps pin levels in memory.
// Used for development on PC or testing. Reads return whatever was last
// written or set via SetLevel.
type MockDriver struct {
	mu     sync.Mutex
	levels map[int]Level
}

// NewDriver creates a GPIO driver based on the chosen mode.
// If mock is true, returns a MockDriver (for dev/test).
// If mock is false, returns a real RPiDriver (for Raspberry Pi).
func NewDriver(mock bool) (Driver, error) {
	if mock {
		log.Info().Msg("using mock GPIO driver (development mode)")
		return &MockDriver{}, nil
	}
	return NewRPiDriver()
}

func (m *MockDriver) SetupPin(pin int, mode PinMode) error {
	log.Trace().Int("pin", pin).Int("mode", int(mode)).Msg("gpio setup")
	return nil
}

func (m *MockDriver) WritePin(pin int, level Level) error {
	log.Trace().Int("pin", pin).Bool("level", bool(level)).Msg("gpio write")
	m.SetLevel(pin, level)
	return nil
}

func (m *MockDriver) ReadPin(pin int) (Level, error) {
	return m.Level(pin), nil
}

func (m *MockDriver) Close() error {
	return nil
}

// SetLevel forces the level seen by subsequent reads. Intended for tests that
// simulate input pins.
func (m *MockDriver) SetLevel(pin int, level Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.levels == nil {
		m.levels = make(map[int]Level)
	}
	m.levels[pin] = level
}

// Level returns the last level written or set for the pin, Low by default.
func (m *MockDriver) Level(pin int) Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.levels[pin]
}
