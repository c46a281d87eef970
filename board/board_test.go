package board

import (
	"testing"

	"go-drumkit/drumkit"
)

func TestBoard(t *testing.T) {
	t.Run("ElementLookup", func(t *testing.T) {
		b := New("snare", "bass", "snare")

		if _, ok := b.Element("cowbell"); ok {
			t.Error("unknown id should not be found")
		}
		if pads := b.Snapshot(); len(pads) != 2 || pads[0].ID != "snare" || pads[1].ID != "bass" {
			t.Errorf("unexpected pads %+v", pads)
		}
	})

	t.Run("ClassesAndText", func(t *testing.T) {
		b := New("snare")
		el, _ := b.Element("snare")

		el.SetText("Snare ↑")
		el.AddClass(drumkit.ActiveClass)
		if !el.HasClass(drumkit.ActiveClass) {
			t.Error("expected active class")
		}

		pad := b.Snapshot()[0]
		if pad.Text != "Snare ↑" || !pad.Active() {
			t.Errorf("unexpected snapshot %+v", pad)
		}

		el.RemoveClass(drumkit.ActiveClass)
		el.RemoveClass(drumkit.ActiveClass)
		if b.Snapshot()[0].Active() {
			t.Error("expected inactive pad")
		}
	})

	t.Run("UpdatesCoalesce", func(t *testing.T) {
		b := New("snare")
		el, _ := b.Element("snare")

		el.AddClass("a")
		el.AddClass("b")

		select {
		case <-b.Updates():
		default:
			t.Fatal("expected an update")
		}
		select {
		case <-b.Updates():
			t.Error("updates should coalesce into one")
		default:
		}
	})
}

func TestFanout(t *testing.T) {
	screen := New("snare", "bass")
	pads := New("snare")
	f := Fanout{screen, nil, pads}

	el, ok := f.Element("snare")
	if !ok {
		t.Fatal("expected snare on the fanout")
	}
	el.SetText("Snare")
	el.AddClass(drumkit.ActiveClass)

	for name, b := range map[string]*Board{"screen": screen, "pads": pads} {
		got, _ := b.Element("snare")
		if got.Text() != "Snare" || !got.HasClass(drumkit.ActiveClass) {
			t.Errorf("%s did not receive the writes", name)
		}
	}

	el.RemoveClass(drumkit.ActiveClass)
	if el.HasClass(drumkit.ActiveClass) {
		t.Error("expected class removed everywhere")
	}

	if _, ok := f.Element("bass"); !ok {
		t.Error("bass exists on one display and should be found")
	}
	if _, ok := f.Element("cowbell"); ok {
		t.Error("cowbell exists nowhere")
	}
}
