package midi

import (
	"context"

	"go-drumkit/kit"
)

// Pump forwards a controller's pad presses and notes as key values
// (kit.PadKey / kit.NoteKey) until the controller closes or ctx ends.
func Pump(ctx context.Context, c Controller, dispatch func(key string)) {
	pads := c.PadEvents()
	notes := c.NoteEvents()

	for pads != nil || notes != nil {
		select {
		case <-ctx.Done():
			return
		case pad, ok := <-pads:
			if !ok {
				pads = nil
				continue
			}
			dispatch(kit.PadKey(pad.Row, pad.Col))
		case note, ok := <-notes:
			if !ok {
				notes = nil
				continue
			}
			dispatch(kit.NoteKey(note.Note))
		}
	}
}
