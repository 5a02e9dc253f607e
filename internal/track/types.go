package track

import (
	"fmt"

	"plantmobile/internal/lux"
)

// TrackSize is the length of the track in movement units. Position 0 is the
// outer edge (window side, where the distance sensor is mounted) and
// TrackSize is the inner edge.
const TrackSize = 100

// Region is the discretized location bucket along the track.
type Region int

const (
	RegionUnknown Region = iota
	RegionOuterEdge
	RegionMid
	RegionInnerEdge
)

func (r Region) String() string {
	switch r {
	case RegionUnknown:
		return "UNKNOWN"
	case RegionOuterEdge:
		return "OUTER_EDGE"
	case RegionMid:
		return "MID"
	case RegionInnerEdge:
		return "INNER_EDGE"
	default:
		return fmt.Sprintf("Region(%d)", int(r))
	}
}

// Direction is the relative direction of travel. Its value is the signed
// position delta of a single movement unit, which also selects the motor's
// rotation sense: negative step counts spin toward the outer edge.
type Direction int

const (
	Outer Direction = -1
	Inner Direction = +1
)

func (d Direction) String() string {
	if d == Outer {
		return "OUTER"
	}
	return "INNER"
}

// ExtremeEdge returns the region that terminates movement in this direction.
func (d Direction) ExtremeEdge() Region {
	if d == Outer {
		return RegionOuterEdge
	}
	return RegionInnerEdge
}

// Status is an immutable per-tick snapshot of a platform's sensors and
// tracked state. Position and MotorVoltage are nil when unknown/unequipped.
type Status struct {
	Name         string
	Lux          lux.Reading
	MotorVoltage *float64
	Position     *int
	Region       Region
}
