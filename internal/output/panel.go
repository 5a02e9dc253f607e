package output

import (
	"time"

	"github.com/rs/zerolog"

	"plantmobile/internal/track"
)

const (
	blinkOnDuration   = 200 * time.Millisecond
	blinkOffDuration  = 200 * time.Millisecond
	errorBeepDuration = 1 * time.Second
)

// DebugPanel groups the platform's indicator outputs: it fans status
// snapshots out to all of them and provides the blink/error surfaces used by
// the controllers. The LEDs and buzzer are optional.
type DebugPanel struct {
	leds    *DirectionalLeds
	buzzer  *Buzzer
	outputs []Output
	log     zerolog.Logger
}

func NewDebugPanel(logger zerolog.Logger, leds *DirectionalLeds, buzzer *Buzzer, outputs ...Output) *DebugPanel {
	return &DebugPanel{
		leds:    leds,
		buzzer:  buzzer,
		outputs: outputs,
		log:     logger.With().Str("component", "panel").Logger(),
	}
}

// Setup initializes all outputs on the panel. Any obvious hardware failures
// should trigger here.
func (p *DebugPanel) Setup() error {
	if p.buzzer != nil {
		if err := p.buzzer.Setup(); err != nil {
			return err
		}
	}
	for _, o := range p.outputs {
		if err := o.Setup(); err != nil {
			return err
		}
	}
	return nil
}

// Off resets all outputs on the panel.
func (p *DebugPanel) Off() {
	for _, o := range p.outputs {
		o.Off()
	}
}

// OutputStatus updates every indicator and log with the given status.
func (p *DebugPanel) OutputStatus(status track.Status) {
	for _, o := range p.outputs {
		o.OutputStatus(status)
	}
}

// Blink flashes the directional LEDs as an acknowledgment. Blocking.
func (p *DebugPanel) Blink(times int) {
	if p.leds == nil {
		return
	}
	for i := 0; i < times; i++ {
		p.leds.On()
		time.Sleep(blinkOnDuration)
		p.leds.Off()
		if i != times-1 {
			time.Sleep(blinkOffDuration)
		}
	}
}

// OutputError surfaces a fault code on the error path, distinct from the
// normal status surface. Status tracking continues while a fault shows.
func (p *DebugPanel) OutputError(code string) {
	p.log.Error().Str("code", code).Msg("fault")
	if p.buzzer != nil {
		p.buzzer.Beep(errorBeepDuration)
	}
	p.Blink(1)
}
