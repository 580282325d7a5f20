package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"codexline/reader/codex"
)

// runStatus is the root action: one discover→read→render pass.
func runStatus(ctx context.Context, cmd *cli.Command) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	renderer, err := newRenderer(cfg, cmd.String("o"))
	if err != nil {
		return err
	}

	reader := &codex.Reader{Dir: cfg.Dir}
	refs, err := reader.Sessions(cfg.Limit)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		log.Debug("no sessions found")
		return nil
	}

	for _, ref := range refs {
		s := reader.ReadSession(ref)
		if err := renderer.Render(os.Stdout, s); err != nil {
			return err
		}
	}
	return nil
}
