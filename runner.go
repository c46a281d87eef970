package main

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"go-drumkit/audio"
	"go-drumkit/board"
	"go-drumkit/config"
	"go-drumkit/debug"
	"go-drumkit/drumkit"
	"go-drumkit/kit"
	"go-drumkit/midi"
	"go-drumkit/theme"
	"go-drumkit/tui"
)

// runner holds what every command shares
type runner struct {
	cfg    *config.Config
	logger *log.Logger
}

func (r *runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := config.LoadEnv(".env"); err != nil {
		return ctx, fmt.Errorf("failed to read .env: %w", err)
	}

	var err error
	if path := cmd.String("config"); path != "" {
		r.cfg, err = config.LoadFrom(path)
	} else {
		r.cfg, err = config.Load()
	}
	if err != nil {
		return ctx, fmt.Errorf("failed to load config: %w", err)
	}
	return ctx, nil
}

// applyFlags lets command-line flags override the config file
func (r *runner) applyFlags(cmd *cli.Command) *config.Config {
	cfg := *r.cfg
	if cmd.IsSet("kit") {
		cfg.Kit = cmd.String("kit")
	}
	if cmd.Bool("continuous") {
		cfg.AllowContinuous = true
	}
	if cmd.IsSet("volume") {
		cfg.Volume = cmd.Float("volume")
	}
	if cmd.IsSet("palette") {
		cfg.Palette = cmd.String("palette")
	}
	if cmd.Bool("debug") {
		cfg.Debug = true
	}
	return &cfg
}

func loadKit(path string) (*kit.Kit, error) {
	if path == "" {
		return kit.Default(), nil
	}
	return kit.Load(path)
}

func loadPalette(path string) (*theme.Palette, error) {
	if path == "" {
		return theme.Plasma(), nil
	}
	return theme.LoadGPL(path)
}

// Play opens the kit in the terminal UI
func (r *runner) Play(ctx context.Context, cmd *cli.Command) error {
	cfg := r.applyFlags(cmd)

	if cfg.Debug {
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("failed to start debug log: %w", err)
		}
		defer debug.Disable()
	}
	logger := debug.Logger()

	k, err := loadKit(cfg.Kit)
	if err != nil {
		return err
	}
	palette, err := loadPalette(cfg.Palette)
	if err != nil {
		return err
	}
	th := theme.New(palette)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b := board.New(k.Elements()...)
	display := board.Fanout{b}

	var devices *midi.DeviceManager
	var pads *midi.PadDisplay
	if cfg.MIDI.Enabled {
		active, idle := th.PadColors()
		pads = midi.NewPadDisplay(k.Pads(), active, idle)
		display = append(display, pads)

		devices = midi.NewDeviceManager(midi.ManagerOptions{
			PollRate:  time.Duration(cfg.MIDI.PollMS) * time.Millisecond,
			Keyboards: cfg.MIDI.Keyboards,
			Logger:    logger,
		})
		go devices.Run(ctx)
	}

	engine := audio.NewEngine(audio.Options{
		SampleRate: cfg.SampleRate,
		Volume:     cfg.Volume,
		BaseDir:    k.Dir,
		Logger:     logger,
	})
	defer engine.Close()

	hub := drumkit.NewKeyHub()
	dk, err := drumkit.New(k.Drums, engine, display, hub, drumkit.Options{
		AllowContinuous: cfg.AllowContinuous || k.AllowContinuous,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	m := tui.NewModel(tui.Options{
		Title:   title(k),
		Kit:     dk,
		Board:   b,
		Hub:     hub,
		Theme:   th,
		Pads:    k.Pads(),
		Devices: devices,
		Display: pads,
		Context: ctx,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// title is the TUI header: program name and kit name
func title(k *kit.Kit) string {
	if k.Name == "" {
		return "go-drumkit"
	}
	return "go-drumkit " + k.Name
}

// Keys prints every drum with the keys, pads and notes that trigger it
func (r *runner) Keys(ctx context.Context, cmd *cli.Command) error {
	path := r.cfg.Kit
	if cmd.IsSet("kit") {
		path = cmd.String("kit")
	}

	k, err := loadKit(path)
	if err != nil {
		return err
	}

	return writeKeys(cmd.Root().Writer, k)
}

func writeKeys(w io.Writer, k *kit.Kit) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("DRUM", "KEY", "ELEMENT", "PAD", "NOTE")

	for _, d := range k.Drums {
		keyLabel := d.Key
		if icon := drumkit.KeyIcon(d.Key); icon != "" {
			keyLabel = fmt.Sprintf("%s %q", icon, d.Key)
		}
		pad := "-"
		if d.Pad != nil {
			pad = fmt.Sprintf("%d,%d", d.Pad.Row, d.Pad.Col)
		}
		note := "-"
		if d.Note > 0 {
			note = fmt.Sprint(d.Note)
		}
		t.Row(d.Name, keyLabel, d.Element, pad, note)
	}

	mode := "one-shot"
	if k.AllowContinuous {
		mode = "continuous"
	}
	_, err := fmt.Fprintf(w, "%s (%d drums, %s)\n%s\n", k.Name, len(k.Drums), mode, t.Render())
	return err
}

// InitKit writes the built-in kit so it can be edited
func (r *runner) InitKit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("kit path is required")
	}

	if err := kit.WriteDefault(path); err != nil {
		return err
	}

	r.logger.Info("wrote kit", "path", path)
	return nil
}

// Ports lists MIDI ports and how each would be used
func (r *runner) Ports(ctx context.Context, cmd *cli.Command) error {
	ins, outs, err := midi.Ports()
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	fmt.Fprintln(w, "inputs:")
	for _, name := range ins {
		fmt.Fprintf(w, "  %-40s %s\n", name, midi.Classify(name))
	}
	fmt.Fprintln(w, "outputs:")
	for _, name := range outs {
		fmt.Fprintf(w, "  %s\n", name)
	}
	return nil
}
