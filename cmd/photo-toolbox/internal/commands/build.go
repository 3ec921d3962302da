package commands

import (
	"context"
	"fmt"

	"github.com/goliatone/go-navigator/build"
	"github.com/goliatone/go-navigator/config"
	"github.com/goliatone/go-navigator/toolbox"
)

type BuildCmd struct {
	Root         string `help:"project directory copy sources are relative to, overrides build.root" type:"path"`
	Out          string `help:"bundled output directory, overrides build.out" type:"path"`
	SkipManifest bool   `help:"do not write the web app manifest"`
}

func (c *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}
	if c.Root != "" {
		cfg.Build.Root = c.Root
	}
	if c.Out != "" {
		cfg.Build.Out = c.Out
	}

	// a table that cannot be built must not ship
	if _, err := cfg.RouteTable(toolbox.Views()); err != nil {
		return fmt.Errorf("invalid route table: %w", err)
	}

	logger, err := globals.logger("build")
	if err != nil {
		return err
	}
	defer logger.Sync()

	res, err := build.New(pipelineConfig(cfg, c.SkipManifest), logger).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("built %s: %d files, %d copied\n", res.Stamp.Version, res.Stamp.Files, len(res.Copied))
	return nil
}

func pipelineConfig(cfg config.Config, skipManifest bool) build.Config {
	pc := build.Config{
		Root:   cfg.Build.Root,
		Out:    cfg.Build.Out,
		Ignore: cfg.Build.Ignore,
	}
	for _, t := range cfg.Build.Copy {
		pc.Targets = append(pc.Targets, build.CopyTarget{Src: t.Src, Dest: t.Dest})
	}

	if skipManifest || cfg.Build.SkipManifest {
		return pc
	}

	m := build.NewManifest(cfg.App.Name, cfg.App.ShortName, cfg.App.Description, cfg.App.ThemeColor, cfg.Base)
	if len(cfg.Build.Icons) > 0 {
		m.Icons = m.Icons[:0]
		for _, icon := range cfg.Build.Icons {
			m.Icons = append(m.Icons, build.Icon{Src: icon.Src, Sizes: icon.Sizes, Type: icon.Type})
		}
	}
	pc.Manifest = &m
	return pc
}
