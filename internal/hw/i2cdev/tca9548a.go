package i2cdev

import "fmt"

// DefaultMuxAddr is the TCA9548A's address with all address pins grounded.
const DefaultMuxAddr = 0x70

// TCA9548A is the 8-channel I2C multiplexer the light sensors sit behind
// (both TSL2561 chips share the same fixed address). Construct exactly one
// per bus and hand it to each sensor.
type TCA9548A struct {
	dev     *Device
	current int
}

func NewTCA9548A(bus string, addr byte) (*TCA9548A, error) {
	dev, err := Open(bus, addr)
	if err != nil {
		return nil, fmt.Errorf("tca9548a: %w", err)
	}
	return &TCA9548A{dev: dev, current: -1}, nil
}

// Select routes the bus to the given channel (0-7).
func (m *TCA9548A) Select(channel int) error {
	if channel < 0 || channel > 7 {
		panic("i2cdev: mux channel must be 0-7")
	}
	if channel == m.current {
		return nil
	}
	if err := m.dev.WriteByte(1 << channel); err != nil {
		return fmt.Errorf("tca9548a select channel %d: %w", channel, err)
	}
	m.current = channel
	return nil
}

func (m *TCA9548A) Close() error {
	return m.dev.Close()
}
