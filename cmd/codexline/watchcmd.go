package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"

	"codexline/reader/codex"
	"codexline/sound"
	"codexline/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Continuously refresh the status line",
		Description: `Re-reads the newest sessions on an interval (waking early when a
rollout file changes) and repaints the status lines. Keyboard toggles
adjust sound settings live: m mutes, r cycles reverb, +/- adjust
volume, q quits.`,
		Flags: append(statusFlags(),
			&cli.IntFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Refresh interval in seconds",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}

			renderer, err := newStatusRenderer(cfg)
			if err != nil {
				return err
			}

			mode, _ := sound.ParseMode(cfg.Sound)
			reverb, _ := sound.ParseReverb(cfg.SoundReverb)

			driver := &watch.Driver{
				Reader:   &codex.Reader{Dir: cfg.Dir},
				Renderer: renderer,
				Notifier: &sound.Bell{W: os.Stdout},
				Out:      os.Stdout,
				In:       os.Stdin,
				Interval: time.Duration(cfg.IntervalSeconds) * time.Second,
				Limit:    cfg.Limit,
				Settings: watch.Settings{
					Mode:   mode,
					Volume: cfg.SoundVolume,
					Reverb: reverb,
				},
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			return driver.Run(ctx)
		},
	}
}
