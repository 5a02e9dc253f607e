package output

import "plantmobile/internal/track"

// Output renders a per-tick status snapshot to some surface (file, console,
// LEDs). Setup runs once at startup; Off resets the surface.
type Output interface {
	Setup() error
	Off()
	OutputStatus(status track.Status)
}

// MinOutputLux is the minimum average lux below which gated outputs stay
// dark. Used to keep indicator lights off at night.
const MinOutputLux = 10

// WithMinLux wraps an output so it is switched off instead of rendered when
// the average lux falls below minLux.
func WithMinLux(o Output, minLux int) Output {
	return &minLuxOutput{inner: o, minLux: minLux}
}

type minLuxOutput struct {
	inner  Output
	minLux int
}

func (m *minLuxOutput) Setup() error { return m.inner.Setup() }

func (m *minLuxOutput) Off() { m.inner.Off() }

func (m *minLuxOutput) OutputStatus(status track.Status) {
	if status.Lux.Avg < m.minLux {
		m.inner.Off()
		return
	}
	m.inner.OutputStatus(status)
}
