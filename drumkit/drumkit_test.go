package drumkit

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go-drumkit/kit"
)

type fakeSound struct {
	mu      sync.Mutex
	source  string
	playing bool
	plays   int
	err     error
	on      map[Event][]func()
	once    map[Event][]func()
}

func newFakeSound(source string) *fakeSound {
	return &fakeSound{source: source, on: make(map[Event][]func()), once: make(map[Event][]func())}
}

func (s *fakeSound) Play() {
	s.mu.Lock()
	s.plays++
	s.playing = true
	s.mu.Unlock()
	s.emit(EventStart)
}

func (s *fakeSound) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *fakeSound) On(ev Event, fn func()) {
	s.mu.Lock()
	s.on[ev] = append(s.on[ev], fn)
	s.mu.Unlock()
}

func (s *fakeSound) Once(ev Event, fn func()) {
	s.mu.Lock()
	s.once[ev] = append(s.once[ev], fn)
	s.mu.Unlock()
}

func (s *fakeSound) Err() error { return s.err }

// emit fires ev. Unlike a real engine it never drops "once" handlers, so
// tests can check the controller's own at-most-once guard.
func (s *fakeSound) emit(ev Event) {
	s.mu.Lock()
	fns := append(append([]func(){}, s.on[ev]...), s.once[ev]...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *fakeSound) finish() {
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()
	s.emit(EventEnd)
}

func (s *fakeSound) playCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plays
}

type fakeEngine struct {
	sounds []*fakeSound
}

func (e *fakeEngine) NewSound(source string) Sound {
	s := newFakeSound(source)
	e.sounds = append(e.sounds, s)
	return s
}

func (e *fakeEngine) readyAll() {
	for _, s := range e.sounds {
		s.emit(EventReady)
	}
}

// slowSound widens the gap between the playing check and Play
type slowSound struct {
	*fakeSound
}

func (s slowSound) Playing() bool {
	time.Sleep(5 * time.Millisecond)
	return s.fakeSound.Playing()
}

type slowEngine struct {
	sounds []*fakeSound
}

func (e *slowEngine) NewSound(source string) Sound {
	s := newFakeSound(source)
	e.sounds = append(e.sounds, s)
	return slowSound{s}
}

type fakeElement struct {
	text    string
	classes map[string]bool
	history []string
}

func (el *fakeElement) Text() string        { return el.text }
func (el *fakeElement) SetText(text string) { el.text = text }
func (el *fakeElement) AddClass(class string) {
	el.classes[class] = true
	el.history = append(el.history, "+"+class)
}
func (el *fakeElement) RemoveClass(class string) {
	delete(el.classes, class)
	el.history = append(el.history, "-"+class)
}
func (el *fakeElement) HasClass(class string) bool { return el.classes[class] }

type fakeDisplay map[string]*fakeElement

func newFakeDisplay(ids ...string) fakeDisplay {
	d := make(fakeDisplay)
	for _, id := range ids {
		d[id] = &fakeElement{classes: make(map[string]bool)}
	}
	return d
}

func (d fakeDisplay) Element(id string) (Element, bool) {
	el, ok := d[id]
	if !ok {
		return nil, false
	}
	return el, true
}

type countingKeys struct {
	KeyHub
	installs int
}

func (c *countingKeys) OnKeyDown(fn func(key string)) {
	c.installs++
	c.KeyHub.OnKeyDown(fn)
}

func TestDrumKit(t *testing.T) {
	snare := kit.Definition{Name: "Snare", Source: "audio/snare.mp3", Key: "ArrowUp", Element: "snare"}

	t.Run("SnareScenario", func(t *testing.T) {
		engine := &fakeEngine{}
		display := newFakeDisplay("snare")
		keys := &countingKeys{}

		k, err := New([]kit.Definition{snare}, engine, display, keys, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if keys.installs != 0 {
			t.Fatal("listener installed before sounds were ready")
		}

		s := engine.sounds[0]
		s.emit(EventReady)
		if keys.installs != 1 || !k.Listening() || !k.AllLoaded() {
			t.Fatalf("expected listener after ready, installs=%d", keys.installs)
		}

		keys.Dispatch("ArrowUp")
		if s.playCount() != 1 {
			t.Errorf("expected 1 play, got %d", s.playCount())
		}
		if !display["snare"].HasClass(ActiveClass) {
			t.Error("snare should be active while playing")
		}

		keys.Dispatch("ArrowUp")
		if s.playCount() != 1 {
			t.Errorf("retrigger while playing should not play, got %d plays", s.playCount())
		}

		s.finish()
		if display["snare"].HasClass(ActiveClass) {
			t.Error("snare should not be active after end")
		}
	})

	t.Run("ListenerInstalledOnceAfterAllReady", func(t *testing.T) {
		for _, n := range []int{0, 1, 3, 7} {
			engine := &fakeEngine{}
			keys := &countingKeys{}
			var defs []kit.Definition
			for i := 0; i < n; i++ {
				defs = append(defs, kit.Definition{Name: "D", Source: "d.wav", Key: string(rune('a' + i))})
			}

			k, err := New(defs, engine, newFakeDisplay(), keys, Options{})
			if err != nil {
				t.Fatalf("n=%d: unexpected error: %v", n, err)
			}

			for i, s := range engine.sounds {
				if keys.installs != 0 {
					t.Fatalf("n=%d: listener installed after only %d ready", n, i)
				}
				s.emit(EventReady)
				// a second signal from the same handle must not count twice
				s.emit(EventReady)
			}

			if keys.installs != 1 {
				t.Errorf("n=%d: expected one install, got %d", n, keys.installs)
			}
			if k.Loaded() != n {
				t.Errorf("n=%d: expected loaded=%d, got %d", n, n, k.Loaded())
			}
			engine.readyAll()
			if keys.installs != 1 {
				t.Errorf("n=%d: listener reinstalled, installs=%d", n, keys.installs)
			}
		}
	})

	t.Run("KeysIgnoredBeforeReady", func(t *testing.T) {
		engine := &fakeEngine{}
		keys := &countingKeys{}
		other := kit.Definition{Name: "Kick", Source: "kick.wav", Key: "k"}

		if _, err := New([]kit.Definition{snare, other}, engine, newFakeDisplay("snare"), keys, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		engine.sounds[0].emit(EventReady)
		keys.Dispatch("ArrowUp")
		if engine.sounds[0].playCount() != 0 {
			t.Error("key press before all drums loaded should have no effect")
		}

		engine.sounds[1].emit(EventReady)
		keys.Dispatch("ArrowUp")
		if engine.sounds[0].playCount() != 1 {
			t.Error("key press after loading should play")
		}
	})

	t.Run("UnboundKeysDoNothing", func(t *testing.T) {
		engine := &fakeEngine{}
		keys := &countingKeys{}
		display := newFakeDisplay("snare")

		if _, err := New([]kit.Definition{snare}, engine, display, keys, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		engine.readyAll()

		for _, key := range []string{"", "a", "ArrowDown", "Enter", "pad:0:0", "note:38"} {
			keys.Dispatch(key)
		}
		if engine.sounds[0].playCount() != 0 {
			t.Errorf("unbound keys played the snare %d times", engine.sounds[0].playCount())
		}
		if len(display["snare"].history) != 0 {
			t.Errorf("unbound keys touched the display: %v", display["snare"].history)
		}
	})

	t.Run("AllowContinuous", func(t *testing.T) {
		engine := &fakeEngine{}
		keys := &countingKeys{}

		k, err := New([]kit.Definition{snare}, engine, newFakeDisplay("snare"), keys, Options{AllowContinuous: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !k.AllowContinuous() {
			t.Fatal("expected continuous policy")
		}
		engine.readyAll()

		for i := 0; i < 3; i++ {
			keys.Dispatch("ArrowUp")
		}
		if engine.sounds[0].playCount() != 3 {
			t.Errorf("expected 3 overlapping plays, got %d", engine.sounds[0].playCount())
		}
	})

	t.Run("ActiveToggledInOrder", func(t *testing.T) {
		engine := &fakeEngine{}
		keys := &countingKeys{}
		display := newFakeDisplay("snare")

		if _, err := New([]kit.Definition{snare}, engine, display, keys, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		engine.readyAll()

		s := engine.sounds[0]
		for i := 0; i < 4; i++ {
			keys.Dispatch("ArrowUp")
			s.finish()
		}

		want := []string{"+active", "-active", "+active", "-active", "+active", "-active", "+active", "-active"}
		got := display["snare"].history
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
			}
		}
	})

	t.Run("Labels", func(t *testing.T) {
		engine := &fakeEngine{}
		display := newFakeDisplay("snare", "bass", "cowbell", "plain")
		defs := []kit.Definition{
			snare,
			{Name: "Bass", Source: "bass.mp3", Key: " ", Element: "bass"},
			{Name: "Cowbell", Source: "cowbell.mp3", Key: "c", Element: "cowbell"},
			{Name: "Plain", Source: "plain.mp3", Element: "plain"},
		}

		if _, err := New(defs, engine, display, &countingKeys{}, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := map[string]string{
			"snare":   "Snare ↑",
			"bass":    "Bass (space)",
			"cowbell": "Cowbell",
			"plain":   "Plain",
		}
		for id, text := range want {
			if got := display[id].Text(); got != text {
				t.Errorf("%s: expected label %q, got %q", id, text, got)
			}
		}
	})

	t.Run("MissingElement", func(t *testing.T) {
		engine := &fakeEngine{}
		keys := &countingKeys{}

		k, err := New([]kit.Definition{snare}, engine, newFakeDisplay(), keys, Options{})
		if err != nil {
			t.Fatalf("missing element should not fail construction: %v", err)
		}
		engine.readyAll()
		keys.Dispatch("ArrowUp")
		engine.sounds[0].finish()

		if engine.sounds[0].playCount() != 1 {
			t.Error("drum without a pad should still play")
		}
		if !k.AllLoaded() {
			t.Error("expected all loaded")
		}
	})

	t.Run("DuplicateKey", func(t *testing.T) {
		defs := []kit.Definition{
			snare,
			{Name: "Rim", Source: "rim.wav", Key: "ArrowUp"},
		}
		engine := &fakeEngine{}

		_, err := New(defs, engine, newFakeDisplay(), &countingKeys{}, Options{})
		if !errors.Is(err, ErrDuplicateKey) {
			t.Fatalf("expected ErrDuplicateKey, got %v", err)
		}
		if len(engine.sounds) != 0 {
			t.Error("no sounds should be created for a rejected kit")
		}

		defs = []kit.Definition{
			{Name: "A", Source: "a.wav", Pad: &kit.Pad{Row: 0, Col: 0}},
			{Name: "B", Source: "b.wav", Pad: &kit.Pad{Row: 0, Col: 0}},
		}
		if _, err := New(defs, engine, newFakeDisplay(), &countingKeys{}, Options{}); !errors.Is(err, ErrDuplicateKey) {
			t.Errorf("expected ErrDuplicateKey for shared pad, got %v", err)
		}
	})

	t.Run("LoadError", func(t *testing.T) {
		engine := &fakeEngine{}
		keys := &countingKeys{}
		var reported []string

		k, err := New([]kit.Definition{snare}, engine, newFakeDisplay("snare"), keys, Options{
			OnLoadError: func(name string, err error) { reported = append(reported, name) },
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		s := engine.sounds[0]
		s.err = errors.New("no such file")
		s.emit(EventLoadError)

		if len(reported) != 1 || reported[0] != "Snare" {
			t.Errorf("expected Snare to be reported, got %v", reported)
		}
		failures := k.Failures()
		if len(failures) != 1 || !errors.Is(failures[0], ErrResourceLoad) {
			t.Fatalf("expected one ErrResourceLoad, got %v", failures)
		}
		if k.Listening() || k.AllLoaded() {
			t.Error("a failed load must keep the key listener off")
		}
	})

	t.Run("PadAndNoteKeys", func(t *testing.T) {
		engine := &fakeEngine{}
		keys := &countingKeys{}
		def := snare
		def.Pad = &kit.Pad{Row: 2, Col: 3}
		def.Note = 38

		k, err := New([]kit.Definition{def}, engine, newFakeDisplay("snare"), keys, Options{AllowContinuous: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		engine.readyAll()

		keys.Dispatch(kit.PadKey(2, 3))
		keys.Dispatch(kit.NoteKey(38))
		if engine.sounds[0].playCount() != 2 {
			t.Errorf("expected pad and note to play, got %d plays", engine.sounds[0].playCount())
		}
		if b, ok := k.Binding(kit.PadKey(2, 3)); !ok || b.Element != "snare" {
			t.Errorf("unexpected pad binding %+v", b)
		}
	})

	t.Run("ConcurrentRetriggerPlaysOnce", func(t *testing.T) {
		def := kit.Definition{Name: "Snare", Source: "snare.wav", Key: "ArrowUp", Pad: &kit.Pad{Row: 0, Col: 0}}
		engine := &slowEngine{}
		hub := NewKeyHub()

		if _, err := New([]kit.Definition{def}, engine, newFakeDisplay(), hub, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := engine.sounds[0]
		s.emit(EventReady)

		var wg sync.WaitGroup
		for _, key := range []string{"ArrowUp", kit.PadKey(0, 0)} {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				hub.Dispatch(key)
			}(key)
		}
		wg.Wait()

		if plays := s.playCount(); plays != 1 {
			t.Errorf("keyboard and pad hitting the same drum together should play once, got %d", plays)
		}
	})
}
