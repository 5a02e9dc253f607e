package output

import (
	"time"

	"plantmobile/internal/hw/gpio"
)

// Buzzer drives an active piezo buzzer on a GPIO pin.
type Buzzer struct {
	gpio gpio.Driver
	pin  int
}

func NewBuzzer(g gpio.Driver, pin int) *Buzzer {
	return &Buzzer{gpio: g, pin: pin}
}

func (b *Buzzer) Setup() error {
	if err := b.gpio.SetupPin(b.pin, gpio.Output); err != nil {
		return err
	}
	return b.gpio.WritePin(b.pin, gpio.Low)
}

// Beep sounds the buzzer for the given duration. Blocking.
func (b *Buzzer) Beep(duration time.Duration) {
	_ = b.gpio.WritePin(b.pin, gpio.High)
	time.Sleep(duration)
	_ = b.gpio.WritePin(b.pin, gpio.Low)
}
