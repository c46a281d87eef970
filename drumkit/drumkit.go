package drumkit

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"go-drumkit/debug"
	"go-drumkit/kit"
)

// Drum is a definition with its sound handle attached
type Drum struct {
	kit.Definition
	Sound Sound

	el    Element // nil when the display has no such element
	ready bool
}

// Binding is what a key press resolves to
type Binding struct {
	Sound   Sound
	Element string
}

// Options tune a DrumKit
type Options struct {
	// AllowContinuous lets a drum retrigger while it is still playing
	AllowContinuous bool
	Logger          *log.Logger
	// OnLoadError is called once for each drum whose sound fails to load
	OnLoadError func(name string, err error)
}

// DrumKit plays drums on key presses and marks their pads active while they sound
type DrumKit struct {
	drums           []*Drum
	allowContinuous bool
	keys            KeySource
	log             *log.Logger
	onLoadError     func(name string, err error)

	// playMu makes the one-shot check and Play atomic across input goroutines
	playMu sync.Mutex

	mu        sync.Mutex
	loaded    int
	allLoaded bool
	listening bool
	bindings  map[string]Binding
	failures  []error
}

// New creates a sound for every definition and wires its events to the
// display. The key listener is attached to keys once every sound is ready.
func New(defs []kit.Definition, engine Engine, display Display, keys KeySource, opts Options) (*DrumKit, error) {
	if err := checkKeys(defs); err != nil {
		return nil, err
	}

	k := &DrumKit{
		drums:           make([]*Drum, 0, len(defs)),
		allowContinuous: opts.AllowContinuous,
		keys:            keys,
		log:             debug.OrDiscard(opts.Logger),
		onLoadError:     opts.OnLoadError,
		bindings:        make(map[string]Binding),
	}

	// Allocate every drum first so a ready signal delivered during
	// construction is counted against the full kit.
	for _, def := range defs {
		k.drums = append(k.drums, &Drum{Definition: def})
	}

	for _, d := range k.drums {
		k.attach(d, engine, display)
	}

	if len(k.drums) == 0 {
		k.markLoaded(nil)
	}

	return k, nil
}

func (k *DrumKit) attach(d *Drum, engine Engine, display Display) {
	d.Sound = engine.NewSound(d.Source)

	if d.Element != "" {
		if el, ok := display.Element(d.Element); ok {
			d.el = el
			el.SetText(d.Name)
		} else {
			k.log.Warn("drum has no pad", "drum", d.Name, "err", fmt.Errorf("%w: %s", ErrMissingElement, d.Element))
		}
	}

	k.mu.Lock()
	for _, key := range d.Keys() {
		k.bindings[key] = Binding{Sound: d.Sound, Element: d.Element}
	}
	k.mu.Unlock()

	if d.Key != "" && d.el != nil {
		if icon := KeyIcon(d.Key); icon != "" {
			d.el.SetText(d.el.Text() + " " + icon)
		}
	}

	d.Sound.On(EventStart, func() {
		if d.el != nil {
			d.el.AddClass(ActiveClass)
		}
	})
	d.Sound.On(EventEnd, func() {
		if d.el != nil {
			d.el.RemoveClass(ActiveClass)
		}
	})
	d.Sound.Once(EventReady, func() {
		k.markLoaded(d)
	})
	d.Sound.Once(EventLoadError, func() {
		k.markFailed(d)
	})
}

// markLoaded counts d as ready (nil only for an empty kit) and installs the
// key listener when the count reaches the kit size.
func (k *DrumKit) markLoaded(d *Drum) {
	k.mu.Lock()
	if d != nil {
		if d.ready {
			k.mu.Unlock()
			return
		}
		d.ready = true
		k.loaded++
	}

	install := k.loaded == len(k.drums) && !k.listening
	if install {
		k.allLoaded = true
		k.listening = true
	}
	loaded := k.loaded
	k.mu.Unlock()

	if d != nil {
		k.log.Debug("drum loaded", "drum", d.Name, "loaded", loaded, "total", len(k.drums))
	}

	if install {
		k.keys.OnKeyDown(k.handleKey)
		k.log.Info("all drums loaded, listening for keys", "drums", len(k.drums))
	}
}

func (k *DrumKit) markFailed(d *Drum) {
	err := fmt.Errorf("%w: %s (%s): %v", ErrResourceLoad, d.Name, d.Source, d.Sound.Err())

	k.mu.Lock()
	k.failures = append(k.failures, err)
	k.mu.Unlock()

	k.log.Error("drum failed to load", "drum", d.Name, "err", err)
	if k.onLoadError != nil {
		k.onLoadError(d.Name, err)
	}
}

func (k *DrumKit) handleKey(key string) {
	k.mu.Lock()
	b, ok := k.bindings[key]
	k.mu.Unlock()

	if !ok {
		return
	}

	if k.allowContinuous {
		b.Sound.Play()
		return
	}

	k.playMu.Lock()
	defer k.playMu.Unlock()
	if !b.Sound.Playing() {
		b.Sound.Play()
	}
}

// checkKeys rejects kits where two drums share a trigger key
func checkKeys(defs []kit.Definition) error {
	owners := make(map[string]string)
	for _, def := range defs {
		for _, key := range def.Keys() {
			if prev, ok := owners[key]; ok {
				return fmt.Errorf("%w: %q is bound to both %s and %s", ErrDuplicateKey, key, prev, def.Name)
			}
			owners[key] = def.Name
		}
	}
	return nil
}

// Drums returns the drums in definition order
func (k *DrumKit) Drums() []*Drum {
	return k.drums
}

// AllowContinuous reports the overlap policy
func (k *DrumKit) AllowContinuous() bool {
	return k.allowContinuous
}

// Loaded returns how many drums have finished loading
func (k *DrumKit) Loaded() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.loaded
}

// AllLoaded reports whether every drum is ready
func (k *DrumKit) AllLoaded() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.allLoaded
}

// Listening reports whether the key listener has been installed
func (k *DrumKit) Listening() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.listening
}

// Binding looks up what key would trigger
func (k *DrumKit) Binding(key string) (Binding, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	b, ok := k.bindings[key]
	return b, ok
}

// Failures returns the load errors seen so far
func (k *DrumKit) Failures() []error {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]error, len(k.failures))
	copy(out, k.failures)
	return out
}
