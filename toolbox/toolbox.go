// Package toolbox declares the routes of the photo toolbox application.
//
// The table only ever grows: each release appends routes to the previous
// one, so bookmarked locations keep resolving to the same views.
package toolbox

import (
	"context"
	"fmt"
	"html"
	"io"

	navigator "github.com/goliatone/go-navigator"
)

// Route names.
const (
	Home            = "Home"
	Compressor      = "Compressor"
	LongExposure    = "LongExposure"
	Timelapse       = "Timelapse"
	TimelapseViewer = "TimelapseViewer"
)

// View identifiers used by configuration files.
const (
	ViewHomePage        = "HomePage"
	ViewImageCompressor = "ImageCompressor"
	ViewLongExposure    = "LongExposure"
	ViewTimelapse       = "Timelapse"
	ViewTimelapseViewer = "TimelapseViewer"
)

// DefaultBase is the sub path the application is deployed under.
const DefaultBase = "/vue-photo-toolbox/"

type declaration struct {
	path  string
	name  string
	view  string
	title string
}

// releases lists the routes added by each release, in order.
var releases = [][]declaration{
	{
		{"/", Home, ViewHomePage, "Photo Toolbox"},
	},
	{
		{"/compress", Compressor, ViewImageCompressor, "Image Compressor"},
	},
	{
		{"/longExposure", LongExposure, ViewLongExposure, "Long Exposure"},
		{"/timelapse", Timelapse, ViewTimelapse, "Timelapse"},
	},
	{
		{"/timelapseViewer", TimelapseViewer, ViewTimelapseViewer, "Timelapse Viewer"},
	},
}

// mountView renders the mount point the client side view attaches to.
type mountView struct {
	id    string
	title string
}

func (v mountView) Render(w io.Writer, loc navigator.Location) error {
	_, err := fmt.Fprintf(w, `<section data-view="%s" data-path="%s"><h1>%s</h1></section>`,
		html.EscapeString(v.id), html.EscapeString(loc.Path), html.EscapeString(v.title))
	return err
}

// Views returns the view registry keyed by view identifier. Views are
// resolved lazily on first navigation.
func Views() navigator.Registry {
	reg := navigator.Registry{}
	for _, release := range releases {
		for _, decl := range release {
			v := mountView{id: decl.view, title: decl.title}
			reg[decl.view] = func(context.Context) (navigator.View, error) {
				return v, nil
			}
		}
	}
	return reg
}

// Releases returns the declared route sets of every release. Each entry
// holds the full table as of that release.
func Releases() [][]navigator.Route {
	reg := Views()
	out := make([][]navigator.Route, 0, len(releases))
	var current []navigator.Route
	for _, release := range releases {
		for _, decl := range release {
			current = append(current, navigator.Route{
				Path:   decl.path,
				Name:   decl.name,
				Loader: reg[decl.view],
			})
		}
		snapshot := make([]navigator.Route, len(current))
		copy(snapshot, current)
		out = append(out, snapshot)
	}
	return out
}

// Routes returns the declarations of the latest release.
func Routes() []navigator.Route {
	all := Releases()
	return all[len(all)-1]
}

// Table builds the route table of the latest release.
func Table() (*navigator.Table, error) {
	return navigator.NewTable(Routes()...)
}
