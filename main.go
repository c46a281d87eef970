package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "go-drumkit"})
	r := &runner{logger: logger}

	app := &cli.Command{
		Name:    "go-drumkit",
		Usage:   "Play a drum kit from the keyboard or a MIDI controller",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (default ~/.config/go-drumkit/config.json)",
			},
		},
		Before:         r.loadConfig,
		DefaultCommand: "play",
		Commands:       r.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatal("application error", "err", err)
	}
}

func (r *runner) register() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "play",
			Usage:  "Open the drum kit (default)",
			Flags:  playFlags(),
			Action: r.Play,
		},
		{
			Name:  "keys",
			Usage: "Print the kit's key bindings",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "kit", Aliases: []string{"k"}, Usage: "Kit file (TOML)"},
			},
			Action: r.Keys,
		},
		{
			Name:      "init-kit",
			Usage:     "Write the built-in kit to a file for editing",
			ArgsUsage: "PATH",
			Action:    r.InitKit,
		},
		{
			Name:   "ports",
			Usage:  "List MIDI input and output ports",
			Action: r.Ports,
		},
	}
}

func playFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "kit",
			Aliases: []string{"k"},
			Usage:   "Kit file (TOML); the built-in kit is used when empty",
		},
		&cli.BoolFlag{
			Name:  "continuous",
			Usage: "Let a drum retrigger while it is still sounding",
		},
		&cli.FloatFlag{
			Name:  "volume",
			Usage: "Playback volume, 0 to 1",
		},
		&cli.StringFlag{
			Name:  "palette",
			Usage: "GIMP palette (.gpl) for the UI and Launchpad colours",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Write a debug log to ~/.config/go-drumkit/debug.log",
		},
	}
}
