package navigator

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Table is an ordered, immutable set of routes. Names and paths are unique.
type Table struct {
	routes []*Route
	byPath map[string]*Route
	byName map[string]*Route
}

// NewTable validates the declarations and builds a table. Every invalid or
// duplicate declaration is reported, joined into a single error.
func NewTable(routes ...Route) (*Table, error) {
	if len(routes) == 0 {
		return nil, errors.New("route table is empty")
	}

	t := &Table{
		routes: make([]*Route, 0, len(routes)),
		byPath: make(map[string]*Route, len(routes)),
		byName: make(map[string]*Route, len(routes)),
	}

	var errs []error
	for _, decl := range routes {
		if err := validateRoute(decl); err != nil {
			errs = append(errs, err)
			continue
		}

		if existing, ok := t.byName[decl.Name]; ok {
			errs = append(errs, newDuplicateRouteError("name", decl.Name, *existing, decl))
			continue
		}
		if existing, ok := t.byPath[decl.Path]; ok {
			errs = append(errs, newDuplicateRouteError("path", decl.Path, *existing, decl))
			continue
		}

		route := decl
		if route.cache == nil {
			route.cache = &viewCache{}
		}
		t.routes = append(t.routes, &route)
		t.byName[route.Name] = &route
		t.byPath[route.Path] = &route
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

// MustTable is like NewTable but panics on invalid declarations.
func MustTable(routes ...Route) *Table {
	t, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Resolve returns the route whose path equals path.
func (t *Table) Resolve(path string) (*Route, error) {
	if route, ok := t.byPath[path]; ok {
		return route, nil
	}
	return nil, newNotFoundError("path", path)
}

// Lookup is the boolean form of Resolve.
func (t *Table) Lookup(path string) (*Route, bool) {
	route, ok := t.byPath[path]
	return route, ok
}

// Named returns the route declared with name.
func (t *Table) Named(name string) (*Route, error) {
	if route, ok := t.byName[name]; ok {
		return route, nil
	}
	return nil, newNotFoundError("name", name)
}

// Routes returns the routes in declaration order.
func (t *Table) Routes() []*Route {
	out := make([]*Route, len(t.routes))
	copy(out, t.routes)
	return out
}

func (t *Table) Len() int {
	return len(t.routes)
}

// Extend returns a new table holding the current routes followed by routes.
// Existing routes keep their resolved views.
func (t *Table) Extend(routes ...Route) (*Table, error) {
	all := make([]Route, 0, len(t.routes)+len(routes))
	for _, route := range t.routes {
		all = append(all, *route)
	}
	all = append(all, routes...)
	return NewTable(all...)
}

// CheckAdditive verifies that next only adds routes to prev: every route of
// prev must still be declared in next under the same name and path, so saved
// locations keep resolving.
func CheckAdditive(prev, next *Table) error {
	var errs []error
	for _, old := range prev.routes {
		current, ok := next.byName[old.Name]
		switch {
		case !ok:
			if renamed, found := next.byPath[old.Path]; found {
				errs = append(errs, newRegressionError(old, fmt.Sprintf("renamed to %s", renamed.Name)))
				continue
			}
			errs = append(errs, newRegressionError(old, "removed"))
		case current.Path != old.Path:
			errs = append(errs, newRegressionError(old, fmt.Sprintf("moved to %s", current.Path)))
		}
	}
	return errors.Join(errs...)
}

func newRegressionError(route *Route, reason string) error {
	message := fmt.Sprintf("route %s (%s) was %s", route.Name, route.Path, reason)
	return goerrors.New(message, goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode(TextCodeRouteConflict).
		WithMetadata(map[string]any{
			"name":   route.Name,
			"path":   route.Path,
			"reason": reason,
		})
}
