package lux

import (
	"math"
	"time"
)

// Reading is a single sample from the paired light sensors.
// Outer refers to the sensor facing the window, Inner the one facing the room.
type Reading struct {
	Outer       int
	Inner       int
	Avg         int
	Diff        int
	DiffPercent int
	Timestamp   time.Time
}

// NewReading derives the aggregate fields from the two raw sensor values.
func NewReading(outer, inner int, timestamp time.Time) Reading {
	return Reading{
		Outer:       outer,
		Inner:       inner,
		Avg:         (outer + inner) / 2,
		Diff:        inner - outer,
		DiffPercent: DiffPercent(outer, inner),
		Timestamp:   timestamp,
	}
}

// DiffPercent returns the signed percentage difference of b relative to a,
// normalized by their mean. Positive means b is brighter. Returns 0 when the
// mean is not positive.
func DiffPercent(a, b int) int {
	avg := (a + b) / 2
	if avg <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(b-a) / float64(avg)))
}

// Aggregator accumulates readings over a decision window and produces their
// field-wise mean. It is not safe for concurrent use.
type Aggregator struct {
	readings []Reading
}

func (a *Aggregator) Add(r Reading) {
	a.readings = append(a.readings, r)
}

func (a *Aggregator) Len() int {
	return len(a.readings)
}

func (a *Aggregator) Clear() {
	a.readings = a.readings[:0]
}

// Average returns the field-wise integer mean of the accumulated readings and
// the mean of their timestamps. Panics on an empty aggregator: callers always
// add the current reading before popping the window.
func (a *Aggregator) Average() Reading {
	n := len(a.readings)
	if n == 0 {
		panic("lux: average of empty aggregator")
	}

	// Timestamps are averaged as offsets from the first reading so the sum
	// stays well within int64 nanoseconds and no per-term truncation occurs.
	base := a.readings[0].Timestamp
	var outer, inner, avg, diff, diffPercent int64
	var offset time.Duration
	for _, r := range a.readings {
		outer += int64(r.Outer)
		inner += int64(r.Inner)
		avg += int64(r.Avg)
		diff += int64(r.Diff)
		diffPercent += int64(r.DiffPercent)
		offset += r.Timestamp.Sub(base)
	}
	return Reading{
		Outer:       int(outer / int64(n)),
		Inner:       int(inner / int64(n)),
		Avg:         int(avg / int64(n)),
		Diff:        int(diff / int64(n)),
		DiffPercent: int(diffPercent / int64(n)),
		Timestamp:   base.Add(offset / time.Duration(n)),
	}
}
