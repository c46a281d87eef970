package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"go-drumkit/drumkit"
	"go-drumkit/kit"
)

// keyMap defines the [key.Binding] mapping for the TUI. Drum bindings are
// only used for help; drums are triggered through the key hub.
type keyMap struct {
	help  key.Binding
	quit  key.Binding
	drums []key.Binding
}

func newKeyMap(defs []kit.Definition) keyMap {
	km := keyMap{
		help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit: key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
	for _, d := range defs {
		if d.Key == "" {
			continue
		}
		km.drums = append(km.drums, key.NewBinding(
			key.WithKeys(d.Key),
			key.WithHelp(KeyLabel(d.Key), d.Name),
		))
	}
	return km
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	groups := [][]key.Binding{{k.help, k.quit}}
	for start := 0; start < len(k.drums); start += 4 {
		end := min(start+4, len(k.drums))
		groups = append(groups, k.drums[start:end])
	}
	return groups
}

// KeyLabel is how a key value is shown in help: its icon when it has one
func KeyLabel(keyValue string) string {
	if icon := drumkit.KeyIcon(keyValue); icon != "" {
		return icon
	}
	return keyValue
}

// KeyValue translates a terminal key press into the key value drums are
// bound to ("ArrowUp", " ", "a"). Keys with no equivalent return "".
func KeyValue(msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyLeft:
		return "ArrowLeft"
	case tea.KeyRight:
		return "ArrowRight"
	case tea.KeyUp:
		return "ArrowUp"
	case tea.KeyDown:
		return "ArrowDown"
	case tea.KeySpace:
		return " "
	case tea.KeyEnter:
		return "Enter"
	case tea.KeyTab:
		return "Tab"
	case tea.KeyBackspace:
		return "Backspace"
	case tea.KeyRunes:
		if msg.Alt || msg.Paste {
			return ""
		}
		return string(msg.Runes)
	}
	return ""
}
