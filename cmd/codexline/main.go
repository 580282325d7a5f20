package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:  "codexline",
		Usage: "Show a compact status line for the newest Codex CLI sessions",
		Description: `Tails Codex CLI rollout logs under ~/.codex/sessions/, folds each into
its latest state (model, tokens, rate limits, activity, review results),
and prints one configurable, width-bounded status line per session.

Run without arguments for a one-shot render, or use the watch command
for continuous refresh with keyboard toggles and sound alerts.`,
		Flags: append(statusFlags(),
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log level: debug, info, warn, error",
				Value: "error",
			},
		),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := log.ParseLevel(cmd.String("log"))
			if err != nil {
				return ctx, err
			}
			log.SetLevel(level)
			return ctx, nil
		},
		Action: runStatus,
		Commands: []*cli.Command{
			watchCmd(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
