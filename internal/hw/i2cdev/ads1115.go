package i2cdev

import (
	"fmt"
	"time"
)

// ADS1115 registers and config fields.
const (
	adsAddr          = 0x48
	adsRegConversion = 0x00
	adsRegConfig     = 0x01

	// Single-shot, PGA +-4.096V full scale (bits 11..9 = 001), 128 SPS.
	adsConfigBase = 0x8383
	// Single-ended mux selector for channel 0 sits at bit 14..12 = 100.
	adsMuxSingle0 = 0x4000
	adsMuxShift   = 12

	adsFullScaleVolts = 4.096
)

// adsConfigWord builds the config register value for a single-shot,
// single-ended conversion on the given channel.
func adsConfigWord(channel int) uint16 {
	return uint16(adsConfigBase) | uint16(adsMuxSingle0) | uint16(channel)<<adsMuxShift
}

// ADS1115 is the 16-bit ADC used to read the motor supply voltage.
type ADS1115 struct {
	dev *Device
}

func NewADS1115(bus string) (*ADS1115, error) {
	dev, err := Open(bus, adsAddr)
	if err != nil {
		return nil, fmt.Errorf("ads1115: %w", err)
	}
	return &ADS1115{dev: dev}, nil
}

// ReadVoltage performs a single-shot conversion on a single-ended channel
// (0-3) and returns the measured voltage.
func (a *ADS1115) ReadVoltage(channel int) (float64, error) {
	if channel < 0 || channel > 3 {
		panic("i2cdev: ads1115 channel must be 0-3")
	}

	config := adsConfigWord(channel)
	if err := a.dev.WriteReg(adsRegConfig, byte(config>>8), byte(config)); err != nil {
		return 0, fmt.Errorf("ads1115 start conversion: %w", err)
	}
	// 128 SPS conversion takes just under 8ms.
	time.Sleep(9 * time.Millisecond)

	buf, err := a.dev.ReadReg(adsRegConversion, 2)
	if err != nil {
		return 0, fmt.Errorf("ads1115 read conversion: %w", err)
	}
	raw := int16(uint16(buf[0])<<8 | uint16(buf[1]))
	return float64(raw) * adsFullScaleVolts / 32768, nil
}

func (a *ADS1115) Close() error {
	return a.dev.Close()
}
