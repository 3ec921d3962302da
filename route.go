package navigator

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// View is a renderable unit bound to a route.
type View interface {
	Render(w io.Writer, loc Location) error
}

// ViewFunc adapts a function to the View interface.
type ViewFunc func(w io.Writer, loc Location) error

func (f ViewFunc) Render(w io.Writer, loc Location) error {
	return f(w, loc)
}

// Loader resolves the view of a route. It is called on the first navigation
// to the route and its result is cached for the rest of the session.
type Loader func(ctx context.Context) (View, error)

// Static wraps an already constructed view in a Loader.
func Static(v View) Loader {
	return func(context.Context) (View, error) {
		return v, nil
	}
}

// Registry maps view identifiers used in configuration to loaders.
type Registry map[string]Loader

// Route binds an exact path to a name and a view loader.
type Route struct {
	Path   string
	Name   string
	Loader Loader

	cache *viewCache
}

type viewCache struct {
	mu      sync.Mutex
	view    View
	loading *inflight
}

// inflight is a loader call shared by every caller that asks for the view
// while it runs.
type inflight struct {
	done chan struct{}
	view View
	err  error
}

var errNilView = errors.New("loader returned a nil view")

// Load returns the route view, invoking the loader only when the view has
// not been resolved yet. Concurrent callers for the same route share one
// loader call. The cache lock is never held while the loader runs.
func (r *Route) Load(ctx context.Context) (View, error) {
	if r.cache == nil {
		return r.load(ctx)
	}

	r.cache.mu.Lock()
	if view := r.cache.view; view != nil {
		r.cache.mu.Unlock()
		return view, nil
	}
	if call := r.cache.loading; call != nil {
		r.cache.mu.Unlock()
		select {
		case <-call.done:
			return call.view, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflight{done: make(chan struct{})}
	r.cache.loading = call
	r.cache.mu.Unlock()

	call.view, call.err = r.load(ctx)

	r.cache.mu.Lock()
	if call.err == nil {
		r.cache.view = call.view
	}
	r.cache.loading = nil
	r.cache.mu.Unlock()
	close(call.done)

	return call.view, call.err
}

func (r *Route) load(ctx context.Context) (View, error) {
	view, err := r.Loader(ctx)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, errNilView
	}
	return view, nil
}

// Loaded reports whether the view has already been resolved.
func (r *Route) Loaded() bool {
	_, ok := r.cachedView()
	return ok
}

func (r *Route) cachedView() (View, bool) {
	if r.cache == nil {
		return nil, false
	}
	r.cache.mu.Lock()
	defer r.cache.mu.Unlock()
	return r.cache.view, r.cache.view != nil
}

func (r Route) String() string {
	return r.Name + " " + r.Path
}

func validateRoute(route Route) error {
	if strings.TrimSpace(route.Name) == "" {
		return newInvalidRouteError(route, "name is required")
	}
	if route.Loader == nil {
		return newInvalidRouteError(route, "view loader is required")
	}
	if !strings.HasPrefix(route.Path, "/") {
		return newInvalidRouteError(route, "path must start with /")
	}
	if strings.ContainsAny(route.Path, "?#") {
		return newInvalidRouteError(route, "path must not contain a query or fragment")
	}
	for _, segment := range splitPathSegments(route.Path) {
		if segment == "" {
			return newInvalidRouteError(route, "path contains an empty segment")
		}
		if strings.HasPrefix(segment, ":") || strings.HasPrefix(segment, "*") {
			return newInvalidRouteError(route, "parameter segments are not supported")
		}
	}
	return nil
}

func splitPathSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
