package track

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"plantmobile/internal/lux"
)

const (
	// StepsPerMove is the number of motor half-steps in a single movement
	// unit between sensor checks.
	StepsPerMove = 7
	// MotorVoltageCutoff is the voltage below which movement aborts with a
	// battery fault.
	MotorVoltageCutoff = 4.0
	// driftWarnThreshold is the absolute drift at which an outer-edge resync
	// is logged as a warning instead of informational.
	driftWarnThreshold = 10
)

// BatteryError indicates the platform is unable to move due to a battery
// voltage issue.
type BatteryError struct {
	Voltage float64
}

func (e *BatteryError) Error() string {
	return fmt.Sprintf("motor voltage %.2fV below %.1fV cutoff", e.Voltage, MotorVoltageCutoff)
}

// LightSensor reads the paired lux sensors. Adapters absorb transient read
// failures internally; only Setup may fail (hardware absent).
type LightSensor interface {
	Setup() error
	Read() lux.Reading
	Off()
}

// DistanceSensor detects whether the platform is within ranging distance of
// the outer-edge sensor.
type DistanceSensor interface {
	Setup() error
	IsInRange() bool
	Off()
}

// VoltageReader reads the motor supply voltage.
type VoltageReader interface {
	Setup() error
	Read() float64
	Off()
}

// Motor moves the platform in half-steps. Negative step counts move toward
// the outer edge. Moves are blocking and synchronous.
type Motor interface {
	Setup() error
	MoveSteps(steps int) error
	Energize() error
	Off() error
}

// Platform is the main driver for a single platform, wrapping up its sensors
// and motor and owning the tracked position. Only the light sensor is
// required; the motor, distance sensor and voltage reader are optional and
// operations needing them panic when unconfigured (a wiring defect, not a
// runtime condition).
type Platform struct {
	Name string

	lights   LightSensor
	motor    Motor
	distance DistanceSensor
	voltage  VoltageReader

	// position is nil until the distance sensor first confirms the outer
	// edge. Mutated only by MoveDirection and resyncOuterEdge.
	position *int

	log zerolog.Logger
}

func NewPlatform(
	name string,
	lights LightSensor,
	motor Motor,
	distance DistanceSensor,
	voltage VoltageReader,
	logger zerolog.Logger,
) *Platform {
	return &Platform{
		Name:     name,
		lights:   lights,
		motor:    motor,
		distance: distance,
		voltage:  voltage,
		log:      logger.With().Str("platform", name).Logger(),
	}
}

// Mobile reports whether the platform can be driven along the track: it needs
// a motor to move and a distance sensor to know where it is.
func (p *Platform) Mobile() bool {
	return p.motor != nil && p.distance != nil
}

// Setup initializes all components of the platform. Any obvious hardware
// failures (e.g. a disconnected sensor) surface here, not mid-run.
func (p *Platform) Setup() error {
	if err := p.lights.Setup(); err != nil {
		return fmt.Errorf("light sensor: %w", err)
	}
	if p.motor != nil {
		if err := p.motor.Setup(); err != nil {
			return fmt.Errorf("motor: %w", err)
		}
	}
	if p.distance != nil {
		if err := p.distance.Setup(); err != nil {
			return fmt.Errorf("distance sensor: %w", err)
		}
	}
	if p.voltage != nil {
		if err := p.voltage.Setup(); err != nil {
			return fmt.Errorf("voltage reader: %w", err)
		}
	}
	return nil
}

// Off cleans up and resets any local state and outputs.
func (p *Platform) Off() {
	p.lights.Off()
	if p.motor != nil {
		if err := p.motor.Off(); err != nil {
			p.log.Warn().Err(err).Msg("failed to de-energize motor")
		}
	}
	if p.distance != nil {
		p.distance.Off()
	}
	if p.voltage != nil {
		p.voltage.Off()
	}
}

// GetStatus reads the current status from sensors and internal state.
// forceEdgeCheck controls whether the distance sensor re-verifies the edge
// position even when the position is already known.
func (p *Platform) GetStatus(forceEdgeCheck bool) Status {
	var voltage *float64
	if p.voltage != nil {
		v := p.voltage.Read()
		voltage = &v
	}
	// Region first: a resync may rewrite the position. Sense-only platforms
	// have no distance sensor and no notion of a region.
	region := RegionUnknown
	if p.distance != nil {
		region = p.GetRegion(forceEdgeCheck)
	}
	return Status{
		Name:         p.Name,
		Lux:          p.lights.Read(),
		MotorVoltage: voltage,
		Position:     p.positionCopy(),
		Region:       region,
	}
}

// GetRegion returns the region of the track in which the platform is located.
// The inner edge is modeled purely from the tracked position (it has no
// sensor); only the outer edge is hardware-confirmed.
//
// Note: upon initialization when the position is unknown, we might report
// UNKNOWN while actually sitting at the inner edge.
func (p *Platform) GetRegion(forceEdgeCheck bool) Region {
	if p.distance == nil {
		panic("track: distance sensor must be configured")
	}

	if p.position != nil && *p.position == TrackSize {
		return RegionInnerEdge
	}

	atOuterEdge := p.position != nil && *p.position == 0
	if p.position == nil || forceEdgeCheck {
		atOuterEdge = !p.distance.IsInRange()
		if atOuterEdge {
			p.resyncOuterEdge()
		}
	}

	switch {
	case atOuterEdge:
		return RegionOuterEdge
	case p.position != nil:
		return RegionMid
	default:
		return RegionUnknown
	}
}

// resyncOuterEdge resets the tracked position to 0. Drift between the tracked
// position and the confirmed edge is diagnostic only, never fatal.
func (p *Platform) resyncOuterEdge() {
	switch {
	case p.position == nil:
		p.log.Info().Msg("at outer edge: initializing position to zero")
	case *p.position != 0:
		drift := *p.position
		ev := p.log.Info()
		if abs(drift) >= driftWarnThreshold {
			ev = p.log.Warn()
		}
		ev.Int("drift", drift).Msg("resetting outer edge position")
	}
	zero := 0
	p.position = &zero
}

func (p *Platform) positionCopy() *int {
	if p.position == nil {
		return nil
	}
	v := *p.position
	return &v
}

func (p *Platform) voltageLow(status Status) bool {
	return status.MotorVoltage != nil && *status.MotorVoltage < MotorVoltageCutoff
}

// MoveDirection drives the platform toward direction one movement unit at a
// time until the continuation predicate fails, the direction's extreme edge
// is reached, the optional step limit (0 = none) is exhausted, or the maximum
// travel distance is covered. Returns the number of units moved. A low motor
// voltage aborts immediately with a BatteryError.
func (p *Platform) MoveDirection(direction Direction, shouldContinue func(Status) bool, stepLimit int) (int, error) {
	if p.motor == nil {
		panic("track: motor must be configured")
	}

	p.log.Info().Stringer("direction", direction).Msg("starting sequence move")

	// Move at most the track size, with a small error buffer to bias towards
	// the sensor-equipped outer edge.
	maxDistance := int(math.Ceil(TrackSize * 1.1))

	for steps := 0; steps <= maxDistance; steps++ {
		// When moving towards the outer edge, cross-check with the sensor in
		// case we've drifted.
		status := p.GetStatus(direction == Outer)

		switch {
		case p.voltageLow(status):
			p.log.Error().Stringer("direction", direction).Int("steps", steps).
				Float64("voltage", *status.MotorVoltage).
				Msg("stopping sequence move: insufficient voltage")
			return steps, &BatteryError{Voltage: *status.MotorVoltage}

		case !shouldContinue(status):
			p.log.Info().Stringer("direction", direction).Int("steps", steps).
				Msg("stopping sequence move: stopped")
			return steps, nil

		case stepLimit > 0 && steps >= stepLimit:
			p.log.Info().Stringer("direction", direction).Int("steps", steps).
				Msg("stopping sequence move: step limit reached")
			return steps, nil

		case status.Region == direction.ExtremeEdge():
			p.log.Info().Stringer("direction", direction).Int("steps", steps).
				Msg("stopping sequence move: at edge")
			return steps, nil

		case steps == maxDistance:
			// Explicit check so the edge check above runs first on the last
			// iteration. Reachable when the sensor misses the edge or the
			// position has drifted badly.
			p.log.Warn().Stringer("direction", direction).Int("steps", steps).
				Msg("stopping sequence move: travelled max distance without reaching edge")
			return steps, nil

		default:
			if err := p.motor.MoveSteps(int(direction) * StepsPerMove); err != nil {
				return steps, fmt.Errorf("move %s: %w", direction, err)
			}
			// Update the internal position, if it's already been initialized.
			if p.position != nil {
				*p.position += int(direction)
			}
		}
	}
	panic("track: move loop must terminate within bounds")
}

// PingMotor energizes all motor coils for the given duration. Used to draw
// enough current to keep the power bank awake.
func (p *Platform) PingMotor(duration time.Duration) error {
	if p.motor == nil {
		panic("track: motor must be configured")
	}
	if err := p.motor.Energize(); err != nil {
		return fmt.Errorf("energize motor: %w", err)
	}
	time.Sleep(duration)
	if err := p.motor.Off(); err != nil {
		return fmt.Errorf("de-energize motor: %w", err)
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
