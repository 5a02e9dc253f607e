package button

import "sync"

// Toggle is a latched on/off flag flipped by a button press. Wire it with
// btn.SetHandlers(toggle.Press, nil, nil).
type Toggle struct {
	mu      sync.Mutex
	enabled bool
}

func NewToggle(initial bool) *Toggle {
	return &Toggle{enabled: initial}
}

// Press flips the flag. Safe to call from the button event goroutine.
func (t *Toggle) Press() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = !t.enabled
}

func (t *Toggle) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}
