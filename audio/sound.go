package audio

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"go-drumkit/drumkit"
)

type handler struct {
	fn   func()
	once bool
}

// Sound is one decoded sample. Each Play gets its own player, so
// overlapping playback of the same sample is possible.
type Sound struct {
	engine *Engine
	source string

	mu       sync.Mutex
	pcm      []byte
	ready    bool
	err      error
	active   int
	handlers map[drumkit.Event][]handler
}

func newSound(e *Engine, source string) *Sound {
	return &Sound{
		engine:   e,
		source:   source,
		handlers: make(map[drumkit.Event][]handler),
	}
}

// Ready reports whether the sample finished decoding
func (s *Sound) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *Sound) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Playing is true while any playback of this sound is live
func (s *Sound) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active > 0
}

func (s *Sound) On(ev drumkit.Event, fn func()) {
	s.subscribe(ev, handler{fn: fn})
}

func (s *Sound) Once(ev drumkit.Event, fn func()) {
	s.subscribe(ev, handler{fn: fn, once: true})
}

// subscribe registers h. Ready and load-error fire at most once, so a
// subscriber arriving after either is called straight away and not kept.
func (s *Sound) subscribe(ev drumkit.Event, h handler) {
	s.mu.Lock()
	late := (ev == drumkit.EventReady && s.ready) || (ev == drumkit.EventLoadError && s.err != nil)
	if late {
		s.mu.Unlock()
		h.fn()
		return
	}
	s.handlers[ev] = append(s.handlers[ev], h)
	s.mu.Unlock()
}

func (s *Sound) emit(ev drumkit.Event) {
	s.mu.Lock()
	var fns []func()
	kept := s.handlers[ev][:0]
	for _, h := range s.handlers[ev] {
		fns = append(fns, h.fn)
		if !h.once {
			kept = append(kept, h)
		}
	}
	s.handlers[ev] = kept
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Sound) loaded(pcm []byte) {
	s.mu.Lock()
	s.pcm = pcm
	s.ready = true
	s.mu.Unlock()
	s.emit(drumkit.EventReady)
}

func (s *Sound) failed(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.emit(drumkit.EventLoadError)
}

// Play starts a new playback. It does nothing until the sample is ready.
func (s *Sound) Play() {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return
	}
	s.active++
	pcm := s.pcm
	s.mu.Unlock()

	e := s.engine
	p := e.newPlayer(pcm)
	p.SetVolume(e.volume)
	p.Play()

	id := uuid.NewString()
	e.log.Debug("playback start", "src", s.source, "id", id)
	s.emit(drumkit.EventStart)

	e.wg.Add(1)
	go s.watch(p, id)
}

// watch waits for p to stop, then releases it and emits EventEnd
func (s *Sound) watch(p player, id string) {
	e := s.engine
	defer e.wg.Done()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for p.IsPlaying() {
		select {
		case <-e.done:
			p.Close()
			return
		case <-ticker.C:
		}
	}
	p.Close()

	s.mu.Lock()
	s.active--
	s.mu.Unlock()

	e.log.Debug("playback end", "src", s.source, "id", id)
	s.emit(drumkit.EventEnd)
}
