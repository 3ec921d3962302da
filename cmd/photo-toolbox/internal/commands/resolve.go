package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	navigator "github.com/goliatone/go-navigator"
	"github.com/goliatone/go-navigator/config"
	"github.com/goliatone/go-navigator/toolbox"
)

type ResolveCmd struct {
	Location string `arg:"" help:"location as the browser reports it, e.g. /vue-photo-toolbox/#/compress"`
	Render   bool   `help:"render the resolved view"`
}

func (c *ResolveCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}

	logger, err := globals.logger("resolve")
	if err != nil {
		return err
	}
	defer logger.Sync()

	state, err := resolve(ctx, cfg, c.Location, logger)
	if err != nil {
		return err
	}
	return printState(os.Stdout, state, c.Render)
}

// resolve drives a navigator over an in-memory history seeded with location
// and returns the settled state.
func resolve(ctx context.Context, cfg config.Config, location string, logger navigator.Logger) (navigator.State, error) {
	table, err := cfg.RouteTable(toolbox.Views())
	if err != nil {
		return navigator.State{}, fmt.Errorf("invalid route table: %w", err)
	}
	codec, err := cfg.Codec()
	if err != nil {
		return navigator.State{}, err
	}

	opts := []navigator.Option{navigator.WithCodec(codec), navigator.WithLogger(logger)}
	if cfg.NotFound != "" {
		opts = append(opts, navigator.WithNotFoundRedirect(cfg.NotFound))
	}

	nav := navigator.NewNavigator(table, navigator.NewMemoryHistory(location), opts...)
	defer nav.Close()

	if err := nav.Start(ctx); err != nil {
		return navigator.State{}, err
	}
	nav.Wait()

	state := nav.State()
	if !state.Matched() {
		return state, state.Err
	}
	if state.Status == navigator.StatusFailed {
		return state, state.Err
	}
	return state, nil
}

func printState(w io.Writer, state navigator.State, render bool) error {
	fmt.Fprintf(w, "route:    %s\n", state.Route.Name)
	fmt.Fprintf(w, "path:     %s\n", state.Location.Path)
	if len(state.Location.Query) > 0 {
		fmt.Fprintf(w, "query:    %s\n", state.Location.Query.Encode())
	}
	fmt.Fprintf(w, "status:   %s\n", state.Status)

	if render && state.View != nil {
		if err := state.View.Render(w, state.Location); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}
