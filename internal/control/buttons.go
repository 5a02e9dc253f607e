package control

import (
	"sync"

	"github.com/rs/zerolog"

	"plantmobile/internal/track"
)

// Button is a physical push button delivering edge events. Handlers are
// invoked from the hardware event goroutine, concurrently with the control
// loop.
type Button interface {
	IsPressed() bool
	SetHandlers(onPress, onHold, onRelease func())
}

// ButtonHandler drives the platform manually via two buttons.
//
// In hold mode, hold one of the buttons for movement and let go to stop.
// In press mode, press one of the buttons and it will move until it reaches
// an edge; any further press cancels the move. Pressing both buttons at once
// toggles between the modes.
type ButtonHandler struct {
	platform Platform
	panel    Panel
	printer  Printer
	outer    Button
	inner    Button

	// mu guards holdMode and commanded, which are written from button edge
	// callbacks and read by the control loop's continuation predicate.
	mu        sync.Mutex
	holdMode  bool
	commanded *track.Direction

	i   int
	log zerolog.Logger
}

func NewButtonHandler(
	platform Platform,
	panel Panel,
	printer Printer,
	outer, inner Button,
	logger zerolog.Logger,
) *ButtonHandler {
	h := &ButtonHandler{
		platform: platform,
		panel:    panel,
		printer:  printer,
		outer:    outer,
		inner:    inner,
		holdMode: true,
		log:      logger.With().Str("component", "button_handler").Logger(),
	}
	outer.SetHandlers(
		func() { h.onPress(track.Outer) },
		func() { h.onHold(track.Outer) },
		h.onRelease,
	)
	inner.SetHandlers(
		func() { h.onPress(track.Inner) },
		func() { h.onHold(track.Inner) },
		h.onRelease,
	)
	return h
}

func (h *ButtonHandler) onPress(direction track.Direction) {
	h.mu.Lock()
	if h.outer.IsPressed() && h.inner.IsPressed() {
		// Both pressed: toggle between hold and press mode.
		h.commanded = nil
		h.holdMode = !h.holdMode
		holdMode := h.holdMode
		h.mu.Unlock()
		h.log.Debug().Bool("hold_mode", holdMode).Msg("both buttons pressed: toggled mode")
		h.panel.Blink(3)
		return
	}
	defer h.mu.Unlock()

	if h.holdMode {
		// Hold mode commands are handled by onHold.
		return
	}

	if h.commanded != nil {
		// Any button press cancels an in-progress move.
		h.log.Debug().Stringer("direction", *h.commanded).Msg("cancelling in-progress command (press)")
		h.commanded = nil
	} else {
		d := direction
		h.commanded = &d
		h.log.Debug().Stringer("direction", direction).Msg("commanding move (press)")
	}
}

func (h *ButtonHandler) onHold(direction track.Direction) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.holdMode {
		// Press mode commands are handled by onPress.
		return
	}
	if h.outer.IsPressed() && h.inner.IsPressed() {
		return
	}

	d := direction
	h.commanded = &d
	h.log.Debug().Stringer("direction", direction).Msg("commanding move (hold)")
}

func (h *ButtonHandler) onRelease() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.holdMode && h.commanded != nil {
		h.log.Debug().Msg("button released: cancelling movement")
		h.commanded = nil
	}
}

// HoldMode reports the current interaction mode.
func (h *ButtonHandler) HoldMode() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.holdMode
}

func (h *ButtonHandler) commandedDirection() (track.Direction, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.commanded == nil {
		return 0, false
	}
	return *h.commanded, true
}

func (h *ButtonHandler) clearCommand() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commanded = nil
}

// PerformAction moves in the commanded direction, if any. The continuation
// predicate re-reads the commanded direction every movement unit so a
// concurrent button event can cancel the move with bounded latency. The
// command is cleared once the move returns, regardless of why it stopped.
func (h *ButtonHandler) PerformAction(status track.Status) (bool, error) {
	direction, ok := h.commandedDirection()
	if !ok {
		return false, nil
	}

	h.i = 0
	_, err := h.platform.MoveDirection(direction, h.shouldContinue(direction), 0)
	h.clearCommand()
	return true, err
}

func (h *ButtonHandler) shouldContinue(direction track.Direction) func(track.Status) bool {
	return func(status track.Status) bool {
		h.panel.OutputStatus(status)
		if h.i%10 == 0 {
			h.printer.ForceOutput(status)
		}
		h.i++
		current, ok := h.commandedDirection()
		return ok && current == direction
	}
}
