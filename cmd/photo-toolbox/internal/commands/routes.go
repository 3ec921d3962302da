package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	navigator "github.com/goliatone/go-navigator"
	"github.com/goliatone/go-navigator/toolbox"
)

type RoutesCmd struct {
	Check bool `help:"verify every release of the table only adds routes"`
}

func (c *RoutesCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}

	table, err := cfg.RouteTable(toolbox.Views())
	if err != nil {
		return fmt.Errorf("invalid route table: %w", err)
	}
	codec, err := cfg.Codec()
	if err != nil {
		return err
	}

	if err := printRoutes(os.Stdout, table, codec); err != nil {
		return err
	}

	if c.Check {
		return checkReleases(table)
	}
	return nil
}

func printRoutes(w io.Writer, table *navigator.Table, codec navigator.Codec) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPATH\tLOCATION")
	for _, r := range table.Routes() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.Path, codec.Encode(navigator.Location{Path: r.Path}))
	}
	return tw.Flush()
}

// checkReleases walks the toolbox releases and then the configured table,
// failing on the first release that drops or moves a route.
func checkReleases(configured *navigator.Table) error {
	var prev *navigator.Table
	for i, routes := range toolbox.Releases() {
		next, err := navigator.NewTable(routes...)
		if err != nil {
			return fmt.Errorf("release %d: %w", i+1, err)
		}
		if prev != nil {
			if err := navigator.CheckAdditive(prev, next); err != nil {
				return fmt.Errorf("release %d: %w", i+1, err)
			}
		}
		prev = next
	}
	if err := navigator.CheckAdditive(prev, configured); err != nil {
		return fmt.Errorf("configured table: %w", err)
	}
	return nil
}
