package button

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestButton(holdAfter time.Duration) *Button {
	return &Button{holdAfter: holdAfter, log: zerolog.Nop()}
}

func TestButton_PressAndRelease(t *testing.T) {
	b := newTestButton(0)

	var presses, releases atomic.Int32
	b.SetHandlers(
		func() { presses.Add(1) },
		nil,
		func() { releases.Add(1) },
	)

	b.edge(true)
	if !b.IsPressed() {
		t.Error("expected pressed after falling edge")
	}
	b.edge(false)
	if b.IsPressed() {
		t.Error("expected released after rising edge")
	}

	if got := presses.Load(); got != 1 {
		t.Errorf("presses: got %d, want 1", got)
	}
	if got := releases.Load(); got != 1 {
		t.Errorf("releases: got %d, want 1", got)
	}
}

func TestButton_DuplicateEdgesIgnored(t *testing.T) {
	b := newTestButton(0)

	var presses atomic.Int32
	b.SetHandlers(func() { presses.Add(1) }, nil, nil)

	b.edge(true)
	b.edge(true)
	b.edge(true)

	if got := presses.Load(); got != 1 {
		t.Errorf("presses: got %d, want 1", got)
	}
}

func TestButton_HoldFiresAfterThreshold(t *testing.T) {
	b := newTestButton(10 * time.Millisecond)

	held := make(chan struct{})
	b.SetHandlers(nil, func() { close(held) }, nil)

	b.edge(true)
	select {
	case <-held:
	case <-time.After(time.Second):
		t.Fatal("hold never fired")
	}
}

func TestButton_ReleaseBeforeThresholdCancelsHold(t *testing.T) {
	b := newTestButton(50 * time.Millisecond)

	var holds atomic.Int32
	b.SetHandlers(nil, func() { holds.Add(1) }, nil)

	b.edge(true)
	b.edge(false)
	time.Sleep(100 * time.Millisecond)

	if got := holds.Load(); got != 0 {
		t.Errorf("holds: got %d, want 0", got)
	}
}

func TestToggle(t *testing.T) {
	tog := NewToggle(false)
	if tog.Enabled() {
		t.Error("expected disabled initially")
	}
	tog.Press()
	if !tog.Enabled() {
		t.Error("expected enabled after press")
	}
	tog.Press()
	if tog.Enabled() {
		t.Error("expected disabled after second press")
	}
}
