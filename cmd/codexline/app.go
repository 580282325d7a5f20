package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"codexline/config"
	"codexline/render"
	jsonrender "codexline/render/json"
	"codexline/render/statusline"
	"codexline/render/terminal"
)

// statusFlags are the rendering flags shared by the root command and
// the watch command. Flags override the config file, which overrides
// the defaults.
func statusFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "dir",
			Usage: "Session directory (default ~/.codex/sessions)",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Number of sessions to show, newest first",
		},
		&cli.BoolFlag{
			Name:  "minimal",
			Usage: "Hide approval, sandbox, activity, and directory fields",
		},
		&cli.StringSliceFlag{
			Name:  "format",
			Usage: "Explicit field order. Example: --format=recent,model,dir",
		},
		&cli.StringSliceFlag{
			Name:  "label",
			Usage: "Per-field label override as field=LABEL (empty LABEL drops the label)",
		},
		&cli.IntFlag{
			Name:  "width",
			Usage: "Column budget (0 auto-detects, negative disables truncation)",
		},
		&cli.StringFlag{
			Name:  "o",
			Usage: "Output format: statusline, terminal, json",
			Value: "statusline",
		},
		&cli.StringFlag{
			Name:  "sound",
			Usage: "Sound mode: off, all, some, assistant",
		},
		&cli.IntFlag{
			Name:  "sound-volume",
			Usage: "Sound volume, 1-100",
		},
		&cli.StringFlag{
			Name:  "sound-reverb",
			Usage: "Reverb preset: none, subtle, default, lush",
		},
	}
}

// buildConfig merges the config file with CLI flags and validates the
// result. Configuration errors surface here, before any rendering.
func buildConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	if cmd.IsSet("dir") {
		cfg.Dir = cmd.String("dir")
	}
	if cmd.IsSet("limit") {
		cfg.Limit = int(cmd.Int("limit"))
	}
	if cmd.IsSet("minimal") {
		cfg.Minimal = cmd.Bool("minimal")
	}
	if cmd.IsSet("format") {
		cfg.Format = splitFields(cmd.StringSlice("format"))
	}
	if cmd.IsSet("width") {
		cfg.Width = int(cmd.Int("width"))
	}
	if cmd.IsSet("sound") {
		cfg.Sound = cmd.String("sound")
	}
	if cmd.IsSet("sound-volume") {
		cfg.SoundVolume = int(cmd.Int("sound-volume"))
	}
	if cmd.IsSet("sound-reverb") {
		cfg.SoundReverb = cmd.String("sound-reverb")
	}
	if cmd.IsSet("interval") {
		cfg.IntervalSeconds = int(cmd.Int("interval"))
	}
	if cmd.IsSet("label") {
		if cfg.Labels == nil {
			cfg.Labels = make(map[string]string)
		}
		for _, pair := range cmd.StringSlice("label") {
			field, label, ok := strings.Cut(pair, "=")
			if !ok {
				return cfg, fmt.Errorf("invalid label override %q, want field=LABEL", pair)
			}
			cfg.Labels[field] = label
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// splitFields flattens comma-separated field lists so both
// --format=a,b and repeated --format flags work.
func splitFields(values []string) []string {
	var fields []string
	for _, v := range values {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
	}
	return fields
}

// newStatusRenderer builds the statusline renderer, resolving field
// order and label overrides up front.
func newStatusRenderer(cfg config.Config) (*statusline.Renderer, error) {
	order, err := statusline.ResolveOrder(cfg.Format)
	if err != nil {
		return nil, err
	}
	labels, err := statusline.ResolveLabels(cfg.Labels)
	if err != nil {
		return nil, err
	}
	return &statusline.Renderer{
		Width: cfg.Width,
		Order: order,
		Options: statusline.Options{
			Minimal: cfg.Minimal,
			Labels:  labels,
		},
	}, nil
}

// newRenderer picks the output renderer for the -o flag.
func newRenderer(cfg config.Config, output string) (render.Renderer, error) {
	switch output {
	case "statusline":
		return newStatusRenderer(cfg)
	case "terminal":
		r := terminal.New()
		if cfg.Width > 0 {
			r.Width = cfg.Width
		}
		return r, nil
	case "json":
		return jsonrender.New(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", output)
	}
}
