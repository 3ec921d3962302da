package navigator

import (
	"fmt"
	"net/url"
	"strings"
)

// Mode selects how app paths are encoded in the externally visible location.
type Mode string

const (
	// ModeHash keeps the app path in the fragment, e.g. /base/#/compress.
	// Any static file server can host it.
	ModeHash Mode = "hash"
	// ModePath keeps the app path in the URL path, e.g. /base/compress.
	// The host must answer unknown paths under base with the entry document.
	ModePath Mode = "path"
)

// ParseMode parses a history mode flag. An empty value selects ModeHash.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeHash:
		return ModeHash, nil
	case ModePath:
		return ModePath, nil
	default:
		return "", fmt.Errorf("unknown history mode %q (expected %q or %q)", s, ModeHash, ModePath)
	}
}

func (m Mode) String() string {
	return string(m)
}

// RequiresServerFallback reports whether the hosting server has to serve the
// entry document for unrecognized paths.
func (m Mode) RequiresServerFallback() bool {
	return m == ModePath
}

// Location is an app level location: the path matched against the route
// table plus an optional query.
type Location struct {
	Path  string
	Query url.Values
}

func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

// History stores the externally visible location record.
type History interface {
	Location() string
	Push(location string)
	Replace(location string)
	Go(delta int)
	// Listen registers fn for location changes not caused by Push or Replace.
	Listen(fn func(location string)) (cancel func())
}

// Codec translates between app locations and external locations under a
// base prefix.
type Codec struct {
	Mode Mode
	Base string
}

// NewCodec returns a codec with a normalized base.
func NewCodec(mode Mode, base string) Codec {
	return Codec{Mode: mode, Base: NormalizeBase(base)}
}

// NormalizeBase returns base with a leading and trailing slash.
func NormalizeBase(base string) string {
	base = strings.TrimSpace(base)
	base = strings.Trim(base, "/")
	if base == "" {
		return "/"
	}
	return "/" + base + "/"
}

func (c Codec) base() string {
	return NormalizeBase(c.Base)
}

// Encode renders loc as an external location.
func (c Codec) Encode(loc Location) string {
	path := loc.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	query := ""
	if len(loc.Query) > 0 {
		query = "?" + loc.Query.Encode()
	}

	if c.Mode == ModePath {
		return c.base() + strings.TrimPrefix(path, "/") + query
	}
	return c.base() + "#" + path + query
}

// Decode extracts the app location from an external location. Absolute URLs
// are accepted, their scheme and host are ignored. ok is false when the
// location is not under the base prefix.
func (c Codec) Decode(raw string) (loc Location, ok bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, false
	}

	base := c.base()
	pathname := u.Path
	if pathname == "" {
		pathname = "/"
	}

	if c.Mode == ModePath {
		rest, ok := trimBase(pathname, base)
		if !ok {
			return Location{}, false
		}
		return Location{Path: "/" + rest, Query: parseQuery(u.RawQuery)}, true
	}

	rest, ok := trimBase(pathname, base)
	if !ok || (rest != "" && rest != "index.html") {
		return Location{}, false
	}

	// the query keeps its escapes so values holding & = + or % survive
	escaped, rawQuery, _ := strings.Cut(u.EscapedFragment(), "?")
	fragment, err := url.PathUnescape(escaped)
	if err != nil {
		return Location{}, false
	}
	if fragment == "" {
		fragment = "/"
	}
	if !strings.HasPrefix(fragment, "/") {
		fragment = "/" + fragment
	}
	return Location{Path: fragment, Query: parseQuery(rawQuery)}, true
}

func trimBase(pathname, base string) (string, bool) {
	if pathname+"/" == base {
		return "", true
	}
	if !strings.HasPrefix(pathname, base) {
		return "", false
	}
	return strings.TrimPrefix(pathname, base), true
}

func parseQuery(raw string) url.Values {
	if raw == "" {
		return nil
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil
	}
	return values
}
