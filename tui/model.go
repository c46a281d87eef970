package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-drumkit/board"
	"go-drumkit/debug"
	"go-drumkit/drumkit"
	"go-drumkit/kit"
	"go-drumkit/midi"
	"go-drumkit/theme"
	"go-drumkit/widgets"
)

const (
	padWidth     = 14
	loadInterval = 100 * time.Millisecond
)

// Options wires a Model to the rest of the program. Devices and Display may
// be nil when MIDI is disabled.
type Options struct {
	Title   string
	Kit     *drumkit.DrumKit
	Board   *board.Board
	Hub     *drumkit.KeyHub
	Theme   *theme.Theme
	Pads    map[string]kit.Pad
	Devices *midi.DeviceManager
	Display *midi.PadDisplay
	Context context.Context
}

type Model struct {
	opts     Options
	keys     keyMap
	help     help.Model
	width    int
	quitting bool
	ctrl     midi.Controller // attached Launchpad (may be nil)
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

type loadTickMsg struct{}

func NewModel(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Title == "" {
		opts.Title = "go-drumkit"
	}

	var defs []kit.Definition
	if opts.Kit != nil {
		for _, d := range opts.Kit.Drums() {
			defs = append(defs, d.Definition)
		}
	}

	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(opts.Theme.Accent())
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(opts.Theme.Muted())
	h.Styles.FullKey = h.Styles.ShortKey
	h.Styles.FullDesc = h.Styles.ShortDesc

	return Model{
		opts: opts,
		keys: newKeyMap(defs),
		help: h,
	}
}

func ListenForUpdates(b *board.Board) tea.Cmd {
	return func() tea.Msg {
		<-b.Updates()
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func waitForLoad() tea.Cmd {
	return tea.Tick(loadInterval, func(time.Time) tea.Msg {
		return loadTickMsg{}
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.opts.Board),
		ListenForDevices(m.opts.Devices),
		waitForLoad(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			m.quitting = true
			return m, tea.Quit
		}

		value := KeyValue(msg)
		if value == "" {
			return m, nil
		}
		if _, bound := m.opts.Kit.Binding(value); !bound && key.Matches(msg, m.keys.help) {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		m.opts.Hub.Dispatch(value)

	case UpdateMsg:
		return m, ListenForUpdates(m.opts.Board)

	case loadTickMsg:
		if m.settled() {
			return m, nil
		}
		return m, waitForLoad()

	case DeviceEventMsg:
		m = m.handleDevice(midi.DeviceEvent(msg))
		return m, ListenForDevices(m.opts.Devices)
	}

	return m, nil
}

// settled reports whether every drum has either loaded or failed
func (m Model) settled() bool {
	total := len(m.opts.Kit.Drums())
	return m.opts.Kit.Loaded()+len(m.opts.Kit.Failures()) >= total
}

func (m Model) handleDevice(event midi.DeviceEvent) Model {
	switch event.Type {
	case midi.DeviceConnected:
		c := event.Controller
		if c == nil {
			break
		}
		if c.Type() == midi.ControllerLaunchpad && m.opts.Display != nil {
			m.ctrl = c
			if err := m.opts.Display.SetController(c); err != nil {
				debug.Log("tui", "launchpad repaint failed", "id", c.ID(), "err", err)
			}
		}
		go midi.Pump(m.opts.Context, c, m.opts.Hub.Dispatch)

	case midi.DeviceDisconnected:
		if m.ctrl != nil && m.ctrl.ID() == event.ID {
			m.ctrl = nil
			if m.opts.Display != nil {
				m.opts.Display.SetController(nil)
			}
		}
	}
	return m
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.opts.Theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.opts.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.opts.Theme.Warning())

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(m.opts.Title))
	out.WriteString("  ")
	out.WriteString(dimStyle.Render(m.status()))
	out.WriteString("\n\n")

	out.WriteString(m.renderPads())

	if m.ctrl != nil {
		out.WriteString("\n\n")
		out.WriteString(dimStyle.Render("launchpad " + m.ctrl.ID()))
		out.WriteString("\n")
		out.WriteString(m.renderGrid())
	}

	if failures := m.opts.Kit.Failures(); len(failures) > 0 {
		out.WriteString("\n")
		for _, err := range failures {
			out.WriteString("\n")
			out.WriteString(warnStyle.Render(fmt.Sprintf("%c %v", m.opts.Theme.Symbols.Failed, err)))
		}
	}

	out.WriteString("\n\n")
	out.WriteString(m.help.View(m.keys))

	return out.String()
}

func (m Model) status() string {
	dk := m.opts.Kit
	total := len(dk.Drums())
	switch {
	case dk.AllLoaded():
		mode := "one-shot"
		if dk.AllowContinuous() {
			mode = "continuous"
		}
		return fmt.Sprintf("%d drums ready  %s", total, mode)
	case len(dk.Failures()) > 0:
		return fmt.Sprintf("%d/%d loaded  %d failed", dk.Loaded(), total, len(dk.Failures()))
	default:
		return fmt.Sprintf("%c loading %d/%d", m.opts.Theme.Symbols.Loading, dk.Loaded(), total)
	}
}

func (m Model) renderPads() string {
	th := m.opts.Theme
	snapshot := m.opts.Board.Snapshot()

	pads := make([]string, 0, len(snapshot))
	for _, p := range snapshot {
		st := widgets.PadStyle{
			Border: th.Surface(),
			Text:   th.FG(),
			Symbol: th.Symbols.PadIdle,
		}
		if p.Active() {
			st = widgets.PadStyle{
				Border: th.Active(),
				Text:   th.Success(),
				Symbol: th.Symbols.PadActive,
				Bold:   true,
			}
		}
		label := p.Text
		if label == "" {
			label = p.ID
		}
		pads = append(pads, widgets.RenderDrumPad(label, st, padWidth))
	}

	perRow := 4
	if m.width > 0 {
		perRow = max(1, m.width/(padWidth+2))
	}
	return widgets.RenderPadRows(pads, perRow)
}

func (m Model) renderGrid() string {
	active, idle := m.opts.Theme.PadColors()

	cells := make(map[[2]int][3]uint8)
	for _, p := range m.opts.Board.Snapshot() {
		pad, ok := m.opts.Pads[p.ID]
		if !ok {
			continue
		}
		color := idle
		if p.Active() {
			color = active
		}
		cells[[2]int{pad.Row, pad.Col}] = color
	}
	panel := lipgloss.NewStyle().Background(m.opts.Theme.BG()).Padding(0, 1)
	return panel.Render(widgets.RenderPadGrid(cells))
}
