package control

import (
	"time"

	"github.com/rs/zerolog"

	"plantmobile/internal/lux"
	"plantmobile/internal/track"
)

// AvoiderConfig tunes the shadow avoider's thresholds and cadence.
type AvoiderConfig struct {
	// DiffPercentCutoff is how different one sensor has to be from the
	// average to trigger a move.
	DiffPercentCutoff int
	// DimLuxThreshold separates DARK from DIM. Defaults to 300.
	DimLuxThreshold int
	// BrightLuxThreshold separates DIM from BRIGHT. Defaults to 500.
	BrightLuxThreshold int
	// RunInterval is the decision cadence, decoupled from the faster per-tick
	// polling to smooth noisy instantaneous readings. Defaults to 10s.
	RunInterval time.Duration
}

func (c *AvoiderConfig) applyDefaults() {
	if c.DimLuxThreshold == 0 {
		c.DimLuxThreshold = 300
	}
	if c.BrightLuxThreshold == 0 {
		c.BrightLuxThreshold = 500
	}
	if c.RunInterval == 0 {
		c.RunInterval = 10 * time.Second
	}
}

// ShadowAvoider repositions the platform to keep light exposure balanced
// between the two sensors, with hysteresis to avoid thrashing.
type ShadowAvoider struct {
	platform   Platform
	panel      Panel
	printer    Printer
	enabled    func() bool
	classifier lux.Classifier
	cfg        AvoiderConfig

	prevLevel *lux.Level
	lastRun   time.Time
	agg       lux.Aggregator
	i         int

	log zerolog.Logger
}

func NewShadowAvoider(
	platform Platform,
	panel Panel,
	printer Printer,
	enabled func() bool,
	cfg AvoiderConfig,
	logger zerolog.Logger,
) *ShadowAvoider {
	cfg.applyDefaults()
	return &ShadowAvoider{
		platform: platform,
		panel:    panel,
		printer:  printer,
		enabled:  enabled,
		classifier: lux.Classifier{
			DimThreshold:      cfg.DimLuxThreshold,
			BrightThreshold:   cfg.BrightLuxThreshold,
			DiffPercentCutoff: cfg.DiffPercentCutoff,
		},
		cfg: cfg,
		log: logger.With().Str("component", "shadow_avoider").Logger(),
	}
}

// PerformAction accumulates the tick's reading and, once per run interval,
// evaluates the aggregated window and moves the platform if warranted.
func (a *ShadowAvoider) PerformAction(status track.Status) (bool, error) {
	a.agg.Add(status.Lux)

	if time.Since(a.lastRun) < a.cfg.RunInterval {
		return false, nil
	}

	// Pop the mean reading for the window and start a fresh one.
	avg := a.agg.Average()
	a.agg.Clear()
	defer func() { a.lastRun = time.Now() }()

	return a.evaluate(avg, status.Region)
}

func (a *ShadowAvoider) evaluate(avg lux.Reading, curRegion track.Region) (bool, error) {
	if !a.enabled() {
		return false, nil
	}

	if a.platform.GetRegion(false) == track.RegionUnknown {
		return true, a.initializePosition(avg, curRegion)
	}

	prev := a.prevLevel
	level := a.classifier.Classify(avg)
	a.prevLevel = &level
	a.log.Info().Stringer("prev_level", levelOrNone(prev)).Stringer("level", level).
		Msg("ran light analysis on aggregated lux")

	var err error
	switch level {
	case lux.Dark:
		// When dark, keep at the inner edge to avoid the blinds.
		_, err = a.move(track.Inner, curRegion, avg, "light dimming below active threshold", 0)
	case lux.OuterBrighter:
		_, err = a.move(track.Outer, curRegion, avg, "light difference found", 0)
	case lux.InnerBrighter:
		_, err = a.move(track.Inner, curRegion, avg, "light difference found", 0)
	case lux.Bright:
		switch {
		case prev != nil && *prev == lux.InnerBrighter:
			// When inner is no longer brighter, the shadow is likely passing
			// the outer edge.
			_, err = a.move(track.Outer, curRegion, avg, "inner light no longer brighter", 0)
		case prev != nil && (*prev == lux.Dark || *prev == lux.Dim):
			// When no longer dim (blinds are opened), move to the outer edge
			// for more sunlight.
			_, err = a.move(track.Outer, curRegion, avg, "light rising to active threshold", 0)
		}
	case lux.Dim:
		// Hysteresis band: allow the light to fluctuate back without
		// thrashing.
	}
	return true, err
}

// initializePosition moves to the sensor-equipped outer edge to establish the
// position, then rolls the move back if the average brightness got worse by
// at least the cutoff.
func (a *ShadowAvoider) initializePosition(avg lux.Reading, curRegion track.Region) error {
	steps, err := a.move(track.Outer, curRegion, avg, "initializing position", 0)
	if err != nil {
		return err
	}

	oldAvg := avg.Avg
	newStatus := a.platform.GetStatus(false)
	newAvg := newStatus.Lux.Avg
	// Reuse the same logic as the difference between outer and inner sensors.
	if lux.DiffPercent(newAvg, oldAvg) >= a.cfg.DiffPercentCutoff {
		a.log.Info().Int("old_avg", oldAvg).Int("new_avg", newAvg).
			Msg("brightness dropped at outer edge: undoing initialization move")
		a.printer.Reset()
		if _, err := a.move(track.Inner, newStatus.Region, avg, "rolling back initialization move", steps); err != nil {
			return err
		}
	}
	return nil
}

func (a *ShadowAvoider) move(
	direction track.Direction,
	region track.Region,
	reading lux.Reading,
	reason string,
	stepLimit int,
) (int, error) {
	if region == direction.ExtremeEdge() {
		// Don't try to move if we're already at the corresponding edge.
		a.log.Info().Stringer("direction", direction).Msg("not moving: already at edge")
		return 0, nil
	}
	if direction == track.Inner && region == track.RegionUnknown {
		panic("control: region must be initialized to move towards inner")
	}

	a.log.Info().Str("reason", reason).Stringer("direction", direction).
		Int("avg_lux", reading.Avg).Int("diff_percent", reading.DiffPercent).
		Msg("moving to edge")

	a.panel.Blink(2)
	a.i = 0
	steps, err := a.platform.MoveDirection(direction, a.shouldContinue, stepLimit)

	// The next reading is for a new position and is not comparable.
	a.prevLevel = nil
	return steps, err
}

func (a *ShadowAvoider) shouldContinue(status track.Status) bool {
	a.panel.OutputStatus(status)
	if a.i%10 == 0 {
		a.printer.ForceOutput(status)
	}
	a.i++
	return a.enabled()
}

// levelOrNone renders an optional level for logging.
func levelOrNone(l *lux.Level) noneStringer {
	return noneStringer{l}
}

type noneStringer struct {
	l *lux.Level
}

func (n noneStringer) String() string {
	if n.l == nil {
		return "NONE"
	}
	return n.l.String()
}
