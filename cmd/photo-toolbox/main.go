package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/goliatone/go-navigator/cmd/photo-toolbox/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Serve   commands.ServeCmd   `cmd:"" help:"Serve the built application"`
		Build   commands.BuildCmd   `cmd:"" help:"Package the bundled output: copy workers, write the manifest and stamp the version"`
		Routes  commands.RoutesCmd  `cmd:"" help:"List the route table"`
		Resolve commands.ResolveCmd `cmd:"" help:"Resolve a location against the route table"`
		Config  string              `help:"Path to a YAML or TOML config file." type:"path" env:"PHOTO_TOOLBOX_CONFIG"`
		Debug   bool                `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("photo-toolbox"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, Config: cli.Config})
	cmd.FatalIfErrorf(err)
}
