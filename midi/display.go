package midi

import (
	"sync"

	"go-drumkit/debug"
	"go-drumkit/drumkit"
	"go-drumkit/kit"
)

// PadDisplay shows drums on Launchpad LEDs: every element id maps to a
// pad, lit in the active colour while its drum plays. State is kept when
// no controller is attached and painted on SetController.
type PadDisplay struct {
	mu     sync.Mutex
	pads   map[string]kit.Pad
	labels map[string]string
	active map[string]bool
	ctrl   Controller

	activeColor [3]uint8
	idleColor   [3]uint8
}

func NewPadDisplay(pads map[string]kit.Pad, activeColor, idleColor [3]uint8) *PadDisplay {
	return &PadDisplay{
		pads:        pads,
		labels:      make(map[string]string),
		active:      make(map[string]bool),
		activeColor: activeColor,
		idleColor:   idleColor,
	}
}

// SetController attaches c (nil detaches) and repaints every pad
func (d *PadDisplay) SetController(c Controller) error {
	d.mu.Lock()
	d.ctrl = c
	if c == nil {
		d.mu.Unlock()
		return nil
	}

	updates := make([]LEDUpdate, 0, len(d.pads))
	for id, pad := range d.pads {
		updates = append(updates, d.update(id, pad))
	}
	d.mu.Unlock()

	return c.SetLEDBatch(updates)
}

func (d *PadDisplay) update(id string, pad kit.Pad) LEDUpdate {
	color := d.idleColor
	if d.active[id] {
		color = d.activeColor
	}
	return LEDUpdate{Row: pad.Row, Col: pad.Col, Color: color, Channel: ChannelStatic}
}

func (d *PadDisplay) Element(id string) (drumkit.Element, bool) {
	if _, ok := d.pads[id]; !ok {
		return nil, false
	}
	return &padElement{display: d, id: id}, true
}

func (d *PadDisplay) setActive(id string, on bool) {
	d.mu.Lock()
	if d.active[id] == on {
		d.mu.Unlock()
		return
	}
	d.active[id] = on
	ctrl := d.ctrl
	u := d.update(id, d.pads[id])
	d.mu.Unlock()

	if ctrl != nil {
		if err := ctrl.SetLEDRGB(u.Row, u.Col, u.Color, u.Channel); err != nil {
			debug.Log("launchpad", "led write failed", "id", id, "err", err)
		}
	}
}

type padElement struct {
	display *PadDisplay
	id      string
}

// Text returns the last label written; LEDs cannot show it
func (el *padElement) Text() string {
	el.display.mu.Lock()
	defer el.display.mu.Unlock()
	return el.display.labels[el.id]
}

func (el *padElement) SetText(text string) {
	el.display.mu.Lock()
	el.display.labels[el.id] = text
	el.display.mu.Unlock()
}

func (el *padElement) AddClass(class string) {
	if class == drumkit.ActiveClass {
		el.display.setActive(el.id, true)
	}
}

func (el *padElement) RemoveClass(class string) {
	if class == drumkit.ActiveClass {
		el.display.setActive(el.id, false)
	}
}

func (el *padElement) HasClass(class string) bool {
	if class != drumkit.ActiveClass {
		return false
	}
	el.display.mu.Lock()
	defer el.display.mu.Unlock()
	return el.display.active[el.id]
}
