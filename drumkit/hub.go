package drumkit

import "sync"

// KeyHub fans key presses from several inputs (terminal, MIDI pads,
// MIDI keyboards) out to the registered listeners.
type KeyHub struct {
	mu        sync.RWMutex
	listeners []func(key string)
}

func NewKeyHub() *KeyHub {
	return &KeyHub{}
}

// OnKeyDown registers a listener
func (h *KeyHub) OnKeyDown(fn func(key string)) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

// Listeners returns how many listeners are registered
func (h *KeyHub) Listeners() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Dispatch delivers key to every listener in registration order
func (h *KeyHub) Dispatch(key string) {
	h.mu.RLock()
	listeners := make([]func(string), len(h.listeners))
	copy(listeners, h.listeners)
	h.mu.RUnlock()

	for _, fn := range listeners {
		fn(key)
	}
}
