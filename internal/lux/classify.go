package lux

import "fmt"

// Level is the discrete brightness classification of an aggregated reading.
type Level int

const (
	Dark Level = iota
	Dim
	Bright
	OuterBrighter
	InnerBrighter
)

func (l Level) String() string {
	switch l {
	case Dark:
		return "DARK"
	case Dim:
		return "DIM"
	case Bright:
		return "BRIGHT"
	case OuterBrighter:
		return "OUTER_BRIGHTER"
	case InnerBrighter:
		return "INNER_BRIGHTER"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Classifier maps a reading to a Level. DimThreshold must be below
// BrightThreshold.
type Classifier struct {
	DimThreshold      int
	BrightThreshold   int
	DiffPercentCutoff int
}

// Classify depends only on the reading's outer/inner values and diff percent,
// never on prior readings.
func (c Classifier) Classify(r Reading) Level {
	intensity := max(r.Outer, r.Inner)
	if intensity < c.DimThreshold {
		return Dark
	}
	if abs(r.DiffPercent) >= c.DiffPercentCutoff {
		switch {
		case r.Outer > r.Inner:
			return OuterBrighter
		case r.Inner > r.Outer:
			return InnerBrighter
		default:
			panic("lux: inconsistent reading: diff percent at cutoff with equal sensors")
		}
	}
	if intensity < c.BrightThreshold {
		return Dim
	}
	return Bright
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
