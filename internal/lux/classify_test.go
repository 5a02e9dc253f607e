package lux

import (
	"testing"
	"time"
)

var testClassifier = Classifier{
	DimThreshold:      300,
	BrightThreshold:   500,
	DiffPercentCutoff: 30,
}

func reading(outer, inner int) Reading {
	return NewReading(outer, inner, time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name         string
		outer, inner int
		want         Level
	}{
		{"pitch_black", 0, 0, Dark},
		{"below_dim_threshold", 299, 299, Dark},
		{"dark_wins_over_difference", 10, 250, Dark},
		{"at_dim_threshold", 300, 300, Dim},
		{"below_bright_threshold", 499, 499, Dim},
		{"at_bright_threshold", 500, 500, Bright},
		{"well_lit", 900, 900, Bright},
		{"outer_brighter", 800, 400, OuterBrighter},
		{"inner_brighter", 400, 800, InnerBrighter},
		{"difference_wins_over_bright", 700, 500, OuterBrighter},
		{"difference_below_cutoff", 550, 450, Bright},
		{"one_side_dark_other_bright", 0, 600, InnerBrighter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := testClassifier.Classify(reading(tc.outer, tc.inner)); got != tc.want {
				t.Errorf("Classify(%d, %d) = %v, want %v", tc.outer, tc.inner, got, tc.want)
			}
		})
	}
}

func TestClassify_IntensityIsBrighterSensor(t *testing.T) {
	// Only one sensor needs to clear the dim threshold for the platform to be
	// considered active; a balanced but lopsided pair is still classified on
	// the brighter of the two.
	r := reading(100, 350)
	if got := testClassifier.Classify(r); got == Dark {
		t.Errorf("Classify(100, 350) = DARK, want non-dark (intensity from brighter sensor)")
	}
}

func TestClassify_InconsistentReadingPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for fabricated reading with equal sensors at cutoff")
		}
	}()
	// A hand-built reading that claims a large difference while both raw
	// values are equal. NewReading can never produce this.
	r := Reading{Outer: 400, Inner: 400, Avg: 400, DiffPercent: 50}
	testClassifier.Classify(r)
}

func TestLevelString(t *testing.T) {
	cases := []struct {
		level Level
		want  string
	}{
		{Dark, "DARK"},
		{Dim, "DIM"},
		{Bright, "BRIGHT"},
		{OuterBrighter, "OUTER_BRIGHTER"},
		{InnerBrighter, "INNER_BRIGHTER"},
		{Level(42), "Level(42)"},
	}
	for _, tc := range cases {
		if got := tc.level.String(); got != tc.want {
			t.Errorf("Level(%d).String() = %q, want %q", int(tc.level), got, tc.want)
		}
	}
}
