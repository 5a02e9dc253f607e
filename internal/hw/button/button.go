package button

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/warthog618/go-gpiocdev"
)

const debouncePeriod = 5 * time.Millisecond

// Button is a push button on a GPIO line, wired active-low with the internal
// pull-up. Press, hold and release callbacks fire from the kernel event
// goroutine; a hold fires once the button has stayed down for the hold
// threshold.
type Button struct {
	line      *gpiocdev.Line
	holdAfter time.Duration

	mu        sync.Mutex
	pressed   bool
	holdTimer *time.Timer
	onPress   func()
	onHold    func()
	onRelease func()

	log zerolog.Logger
}

// New requests the line and starts watching for edges. holdAfter is the hold
// threshold; 0 disables hold events.
func New(chip string, offset int, holdAfter time.Duration, logger zerolog.Logger) (*Button, error) {
	b := &Button{
		holdAfter: holdAfter,
		log:       logger.With().Str("component", "button").Int("offset", offset).Logger(),
	}

	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithDebounce(debouncePeriod),
		gpiocdev.WithConsumer("plantmobile"),
		gpiocdev.WithEventHandler(b.handleEvent))
	if err != nil {
		return nil, fmt.Errorf("request button line %s:%d: %w", chip, offset, err)
	}
	b.line = line
	return b, nil
}

// SetHandlers installs the edge callbacks. Any handler may be nil.
func (b *Button) SetHandlers(onPress, onHold, onRelease func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onPress = onPress
	b.onHold = onHold
	b.onRelease = onRelease
}

// IsPressed reports the debounced button state.
func (b *Button) IsPressed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pressed
}

func (b *Button) Close() error {
	b.mu.Lock()
	if b.holdTimer != nil {
		b.holdTimer.Stop()
		b.holdTimer = nil
	}
	b.mu.Unlock()
	if b.line != nil {
		return b.line.Close()
	}
	return nil
}

func (b *Button) handleEvent(evt gpiocdev.LineEvent) {
	switch evt.Type {
	case gpiocdev.LineEventFallingEdge:
		// Pull-up wiring: pressing the button pulls the line low.
		b.edge(true)
	case gpiocdev.LineEventRisingEdge:
		b.edge(false)
	}
}

// edge advances the press/hold/release state machine. Callbacks run outside
// the lock so they may call back into IsPressed.
func (b *Button) edge(pressed bool) {
	b.mu.Lock()
	if pressed == b.pressed {
		b.mu.Unlock()
		return
	}
	b.pressed = pressed

	var fire func()
	if pressed {
		fire = b.onPress
		if b.holdAfter > 0 && b.onHold != nil {
			b.holdTimer = time.AfterFunc(b.holdAfter, b.held)
		}
	} else {
		if b.holdTimer != nil {
			b.holdTimer.Stop()
			b.holdTimer = nil
		}
		fire = b.onRelease
	}
	b.mu.Unlock()

	if fire != nil {
		b.log.Debug().Bool("pressed", pressed).Msg("button edge")
		fire()
	}
}

func (b *Button) held() {
	b.mu.Lock()
	if !b.pressed {
		b.mu.Unlock()
		return
	}
	fire := b.onHold
	b.mu.Unlock()

	if fire != nil {
		b.log.Debug().Msg("button held")
		fire()
	}
}
