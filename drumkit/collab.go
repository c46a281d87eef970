package drumkit

// ActiveClass marks a pad whose sound is playing
const ActiveClass = "active"

// Event names a sound lifecycle notification
type Event int

const (
	EventReady Event = iota // decoded and playable
	EventStart              // a playback instance started
	EventEnd                // a playback instance finished
	EventLoadError          // the source could not be opened or decoded
)

func (e Event) String() string {
	switch e {
	case EventReady:
		return "ready"
	case EventStart:
		return "start"
	case EventEnd:
		return "end"
	case EventLoadError:
		return "loaderror"
	}
	return "unknown"
}

// Sound is a playable audio handle. It exists as soon as it is created,
// but only becomes playable after EventReady.
type Sound interface {
	Play()
	Playing() bool

	// On registers fn for every occurrence of ev
	On(ev Event, fn func())
	// Once registers fn for the first occurrence of ev only
	Once(ev Event, fn func())

	// Err reports why loading failed (nil unless EventLoadError fired)
	Err() error
}

// Engine creates sound handles
type Engine interface {
	NewSound(source string) Sound
}

// Element is a labelled pad on some display
type Element interface {
	Text() string
	SetText(text string)
	AddClass(class string)
	RemoveClass(class string)
	HasClass(class string) bool
}

// Display looks up elements by id
type Display interface {
	Element(id string) (Element, bool)
}

// KeySource delivers key presses as raw key values ("ArrowUp", " ", "a", "pad:0:1")
type KeySource interface {
	OnKeyDown(fn func(key string))
}
