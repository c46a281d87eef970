package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	eaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"go-drumkit/debug"
	"go-drumkit/drumkit"
)

const (
	DefaultSampleRate = 44100
	DefaultVolume     = 0.8

	// how often a playback watcher checks whether its player stopped
	pollInterval = 10 * time.Millisecond
)

var ErrUnsupportedFormat = fmt.Errorf("unsupported audio format")

// player is the part of *eaudio.Player a Sound drives
type player interface {
	Play()
	IsPlaying() bool
	SetVolume(volume float64)
	Close() error
}

type Options struct {
	SampleRate int
	Volume     float64 // 0-1
	BaseDir    string  // relative sources resolve against this
	Logger     *log.Logger
}

// Engine decodes samples into memory and plays them through ebiten's audio context
type Engine struct {
	sampleRate int
	volume     float64
	baseDir    string
	log        *log.Logger

	open      func(path string) (io.ReadCloser, error)
	newPlayer func(pcm []byte) player

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewEngine creates the audio context (or reuses the process-wide one)
func NewEngine(opts Options) *Engine {
	e := newEngine(opts)

	ctx := eaudio.CurrentContext()
	if ctx == nil {
		ctx = eaudio.NewContext(e.sampleRate)
	}
	// decoders must resample to whatever rate the live context runs at
	e.sampleRate = ctx.SampleRate()
	e.newPlayer = func(pcm []byte) player {
		return ctx.NewPlayerFromBytes(pcm)
	}

	return e
}

func newEngine(opts Options) *Engine {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.Volume < 0 || opts.Volume > 1 {
		opts.Volume = DefaultVolume
	}

	return &Engine{
		sampleRate: opts.SampleRate,
		volume:     opts.Volume,
		baseDir:    opts.BaseDir,
		log:        debug.OrDiscard(opts.Logger),
		open: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
		done: make(chan struct{}),
	}
}

// NewSound returns a handle immediately and loads the source in the background
func (e *Engine) NewSound(source string) drumkit.Sound {
	s := newSound(e, source)

	e.wg.Add(1)
	go e.load(s)

	return s
}

func (e *Engine) load(s *Sound) {
	defer e.wg.Done()

	start := time.Now()
	pcm, err := e.decodeFile(s.source)
	if err != nil {
		e.log.Warn("sample failed to load", "src", s.source, "err", err)
		s.failed(err)
		return
	}

	e.log.Debug("sample loaded", "src", s.source, "bytes", len(pcm), "took", time.Since(start))
	s.loaded(pcm)
}

func (e *Engine) resolve(source string) string {
	if filepath.IsAbs(source) || e.baseDir == "" {
		return source
	}
	return filepath.Join(e.baseDir, source)
}

func (e *Engine) decodeFile(source string) ([]byte, error) {
	f, err := e.open(e.resolve(source))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decode(source, f, e.sampleRate)
}

// decode picks a decoder by file extension and returns 16-bit stereo PCM
func decode(name string, r io.Reader, sampleRate int) ([]byte, error) {
	var stream io.Reader

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".mp3":
		s, err := mp3.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, fmt.Errorf("decode mp3: %w", err)
		}
		stream = s
	case ".wav":
		s, err := wav.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, fmt.Errorf("decode wav: %w", err)
		}
		stream = s
	case ".ogg":
		s, err := vorbis.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, fmt.Errorf("decode ogg: %w", err)
		}
		stream = s
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pcm: %w", err)
	}
	return pcm, nil
}

// Close stops all playback watchers and waits for loaders to finish
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
	})
	e.wg.Wait()
}
