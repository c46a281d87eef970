package kit

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed default.toml
var defaultKit []byte

// DefaultName is the name reported for the embedded kit's file
const DefaultName = "default.toml"

var ErrInvalidKit = fmt.Errorf("invalid kit")

// Pad is a position on a Launchpad grid. Row 0 is the bottom row.
type Pad struct {
	Row, Col int
}

// Definition describes one drum. Only Name and Source are required.
type Definition struct {
	Name    string
	Source  string
	Key     string // raw key value, "" = no key
	Element string // display element id, "" = none
	Pad     *Pad   // Launchpad pad, nil = none
	Note    uint8  // MIDI note, 0 = none
}

// Keys returns every key value that triggers this drum
func (d Definition) Keys() []string {
	var keys []string
	if d.Key != "" {
		keys = append(keys, d.Key)
	}
	if d.Pad != nil {
		keys = append(keys, PadKey(d.Pad.Row, d.Pad.Col))
	}
	if d.Note != 0 {
		keys = append(keys, NoteKey(d.Note))
	}
	return keys
}

// PadKey is the key value a Launchpad pad press produces
func PadKey(row, col int) string {
	return fmt.Sprintf("pad:%d:%d", row, col)
}

// NoteKey is the key value a MIDI keyboard note produces
func NoteKey(note uint8) string {
	return fmt.Sprintf("note:%d", note)
}

// Kit is a named, ordered set of drums
type Kit struct {
	Name            string
	AllowContinuous bool
	Drums           []Definition
	Dir             string // sources resolve relative to this directory
}

// Elements returns the display element ids in drum order, skipping empty ones
func (k *Kit) Elements() []string {
	var ids []string
	for _, d := range k.Drums {
		if d.Element != "" {
			ids = append(ids, d.Element)
		}
	}
	return ids
}

// Pads maps element ids to Launchpad pads
func (k *Kit) Pads() map[string]Pad {
	pads := make(map[string]Pad)
	for _, d := range k.Drums {
		if d.Element != "" && d.Pad != nil {
			pads[d.Element] = *d.Pad
		}
	}
	return pads
}

type kitFile struct {
	Name            string     `toml:"name"`
	AllowContinuous bool       `toml:"allow_continuous"`
	Drums           []drumFile `toml:"drum"`
}

type drumFile struct {
	Name    string `toml:"name"`
	Src     string `toml:"src"`
	Key     string `toml:"key"`
	Element string `toml:"element"`
	Pad     []int  `toml:"pad"`
	Note    int    `toml:"note"`
}

// Load reads a kit file. Relative sources resolve against the file's directory.
func Load(path string) (*Kit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read kit file: %w", err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	return Parse(data, dir)
}

// Default returns the embedded kit, with sources relative to the working directory
func Default() *Kit {
	k, err := Parse(defaultKit, ".")
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded default kit: %v", err))
	}
	return k
}

// Parse decodes TOML kit data
func Parse(data []byte, dir string) (*Kit, error) {
	var f kitFile
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKit, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		var names []string
		for _, key := range undecoded {
			names = append(names, key.String())
		}
		return nil, fmt.Errorf("%w: unknown fields %s", ErrInvalidKit, strings.Join(names, ", "))
	}

	k := &Kit{
		Name:            f.Name,
		AllowContinuous: f.AllowContinuous,
		Dir:             dir,
	}

	for i, df := range f.Drums {
		def, err := df.definition()
		if err != nil {
			return nil, fmt.Errorf("%w: drum %d: %v", ErrInvalidKit, i+1, err)
		}
		k.Drums = append(k.Drums, def)
	}

	return k, nil
}

func (df drumFile) definition() (Definition, error) {
	def := Definition{
		Name:    strings.TrimSpace(df.Name),
		Source:  strings.TrimSpace(df.Src),
		Key:     df.Key,
		Element: strings.TrimSpace(df.Element),
	}

	if def.Name == "" {
		return def, fmt.Errorf("name is required")
	}
	if def.Source == "" {
		return def, fmt.Errorf("%s: src is required", def.Name)
	}

	if df.Pad != nil {
		if len(df.Pad) != 2 {
			return def, fmt.Errorf("%s: pad must be [row, col]", def.Name)
		}
		row, col := df.Pad[0], df.Pad[1]
		// 8x8 grid plus the scene column (col 8) and the top row (row 8)
		if row < 0 || row > 8 || col < 0 || col > 8 || (row == 8 && col == 8) {
			return def, fmt.Errorf("%s: pad [%d, %d] is off the grid", def.Name, row, col)
		}
		def.Pad = &Pad{Row: row, Col: col}
	}

	if df.Note < 0 || df.Note > 127 {
		return def, fmt.Errorf("%s: note %d out of range", def.Name, df.Note)
	}
	def.Note = uint8(df.Note)

	return def, nil
}

// WriteDefault writes the embedded kit to path, refusing to overwrite
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("kit file already exists at %s", path)
	}

	if err := os.WriteFile(path, defaultKit, 0644); err != nil {
		return fmt.Errorf("failed to write kit file: %w", err)
	}

	return nil
}

// Resolve returns the path of a drum source on disk
func (k *Kit) Resolve(source string) string {
	if filepath.IsAbs(source) || k.Dir == "" {
		return source
	}
	return filepath.Join(k.Dir, source)
}
