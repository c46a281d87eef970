package board

import (
	"sort"
	"sync"

	"go-drumkit/drumkit"
)

// Board is the on-screen pad surface. Audio events mutate it from
// their own goroutines; the TUI reads it and redraws on Updates.
type Board struct {
	mu       sync.RWMutex
	order    []string
	elements map[string]*Element
	updates  chan struct{}
}

// Element is one pad: a label and a set of classes
type Element struct {
	board   *Board
	id      string
	text    string
	classes map[string]bool
}

// New creates a board with one element per id, in order. Duplicate ids are ignored.
func New(ids ...string) *Board {
	b := &Board{
		elements: make(map[string]*Element),
		updates:  make(chan struct{}, 1),
	}
	for _, id := range ids {
		if _, ok := b.elements[id]; ok {
			continue
		}
		b.order = append(b.order, id)
		b.elements[id] = &Element{board: b, id: id, classes: make(map[string]bool)}
	}
	return b
}

// Updates receives a value after any change (coalesced)
func (b *Board) Updates() <-chan struct{} {
	return b.updates
}

func (b *Board) changed() {
	select {
	case b.updates <- struct{}{}:
	default:
	}
}

func (b *Board) Element(id string) (drumkit.Element, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	el, ok := b.elements[id]
	if !ok {
		return nil, false
	}
	return el, true
}

// Pad is a render snapshot of one element
type Pad struct {
	ID      string
	Text    string
	Classes []string
}

// Active reports whether the pad carries the active class
func (p Pad) Active() bool {
	for _, c := range p.Classes {
		if c == drumkit.ActiveClass {
			return true
		}
	}
	return false
}

// Snapshot returns every pad in creation order
func (b *Board) Snapshot() []Pad {
	b.mu.RLock()
	defer b.mu.RUnlock()

	pads := make([]Pad, 0, len(b.order))
	for _, id := range b.order {
		el := b.elements[id]
		pad := Pad{ID: id, Text: el.text}
		for c := range el.classes {
			pad.Classes = append(pad.Classes, c)
		}
		sort.Strings(pad.Classes)
		pads = append(pads, pad)
	}
	return pads
}

func (el *Element) ID() string {
	return el.id
}

func (el *Element) Text() string {
	el.board.mu.RLock()
	defer el.board.mu.RUnlock()
	return el.text
}

func (el *Element) SetText(text string) {
	el.board.mu.Lock()
	el.text = text
	el.board.mu.Unlock()
	el.board.changed()
}

func (el *Element) AddClass(class string) {
	el.board.mu.Lock()
	el.classes[class] = true
	el.board.mu.Unlock()
	el.board.changed()
}

func (el *Element) RemoveClass(class string) {
	el.board.mu.Lock()
	delete(el.classes, class)
	el.board.mu.Unlock()
	el.board.changed()
}

func (el *Element) HasClass(class string) bool {
	el.board.mu.RLock()
	defer el.board.mu.RUnlock()
	return el.classes[class]
}
