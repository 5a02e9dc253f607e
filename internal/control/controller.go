package control

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"plantmobile/internal/track"
)

// DefaultLoopInterval is the pause between control loop ticks.
const DefaultLoopInterval = 500 * time.Millisecond

// Platform is the mobile platform a controller drives.
type Platform interface {
	GetStatus(forceEdgeCheck bool) track.Status
	GetRegion(forceEdgeCheck bool) track.Region
	MoveDirection(direction track.Direction, shouldContinue func(track.Status) bool, stepLimit int) (int, error)
	PingMotor(duration time.Duration) error
}

// Panel is the indicator surface shared by the controllers.
type Panel interface {
	OutputStatus(status track.Status)
	Blink(times int)
	OutputError(code string)
}

// Printer is the console status surface.
type Printer interface {
	OutputStatus(status track.Status)
	ForceOutput(status track.Status)
	Reset()
}

// Controller acts on a per-tick status snapshot.
type Controller interface {
	// PerformAction performs an action if one is appropriate for the current
	// state. Returns whether an action was performed.
	PerformAction(status track.Status) (bool, error)
}

// Loop runs the control loop for a platform until the context is cancelled.
// Each tick, the status is snapshotted and rendered, then the controllers run
// in priority order until one claims the tick. A battery fault from any
// controller short-circuits the remaining controllers for that tick and is
// surfaced on the error path; it never stops the loop.
func Loop(
	ctx context.Context,
	platform Platform,
	panel Panel,
	printer Printer,
	controllers []Controller,
	interval time.Duration,
	logger zerolog.Logger,
) error {
	if interval <= 0 {
		interval = DefaultLoopInterval
	}
	log := logger.With().Str("component", "control").Logger()

	for {
		status := platform.GetStatus(false)
		panel.OutputStatus(status)
		printer.OutputStatus(status)

		for _, c := range controllers {
			acted, err := c.PerformAction(status)
			if err != nil {
				var battErr *track.BatteryError
				if errors.As(err, &battErr) {
					log.Warn().Float64("voltage", battErr.Voltage).
						Msg("insufficient battery voltage: is the power bank enabled?")
					panel.OutputError("BATT")
					break
				}
				return err
			}
			if acted {
				break
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}
