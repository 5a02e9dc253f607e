package i2cdev

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// TSL2561 register map (command bit + word protocol).
const (
	tslAddr       = 0x39
	tslCmdBit     = 0x80
	tslWordBit    = 0x20
	tslRegControl = 0x00
	tslRegTiming  = 0x01
	tslRegID      = 0x0A
	tslRegData0   = 0x0C // broadband channel
	tslRegData1   = 0x0E // infrared channel
	tslPowerOn    = 0x03
	tslPowerOff   = 0x00
	// 101ms integration, 16x gain.
	tslTiming = 0x11
)

// TSL2561 is a lux sensor behind the mux. Reads use the infrared channel,
// matching the logged historical data.
type TSL2561 struct {
	dev     *Device
	mux     *TCA9548A
	channel int
}

// NewTSL2561 probes and powers up the sensor on the given mux channel.
// Fails when the sensor is absent or disconnected.
func NewTSL2561(bus string, mux *TCA9548A, channel int) (*TSL2561, error) {
	if err := mux.Select(channel); err != nil {
		return nil, err
	}
	dev, err := Open(bus, tslAddr)
	if err != nil {
		return nil, fmt.Errorf("tsl2561 channel %d: %w", channel, err)
	}
	t := &TSL2561{dev: dev, mux: mux, channel: channel}

	id, err := dev.ReadReg(tslCmdBit|tslRegID, 1)
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("tsl2561 channel %d: probe: %w", channel, err)
	}
	if partno := id[0] >> 4; partno != 0x5 {
		if partno == 0x4 {
			// Off-brand TSL2561 boards (e.g. HiLetgo) report part number 4
			// but speak the same protocol.
			log.Warn().Int("channel", channel).Msg("tsl2561 reports part number 0x4: assuming off-brand board")
		} else {
			dev.Close()
			return nil, fmt.Errorf("tsl2561 channel %d: unexpected part number 0x%x", channel, partno)
		}
	}

	if err := dev.WriteReg(tslCmdBit|tslRegControl, tslPowerOn); err != nil {
		dev.Close()
		return nil, fmt.Errorf("tsl2561 channel %d: power on: %w", channel, err)
	}
	if err := dev.WriteReg(tslCmdBit|tslRegTiming, tslTiming); err != nil {
		dev.Close()
		return nil, fmt.Errorf("tsl2561 channel %d: set timing: %w", channel, err)
	}
	// First conversion needs a full integration cycle.
	time.Sleep(120 * time.Millisecond)
	return t, nil
}

// Infrared reads the raw infrared channel.
func (t *TSL2561) Infrared() (int, error) {
	if err := t.mux.Select(t.channel); err != nil {
		return 0, err
	}
	buf, err := t.dev.ReadReg(tslCmdBit|tslWordBit|tslRegData1, 2)
	if err != nil {
		return 0, err
	}
	return int(buf[0]) | int(buf[1])<<8, nil
}

func (t *TSL2561) Close() error {
	if err := t.mux.Select(t.channel); err == nil {
		_ = t.dev.WriteReg(tslCmdBit|tslRegControl, tslPowerOff)
	}
	return t.dev.Close()
}
