package navigator_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	navigator "github.com/goliatone/go-navigator"
)

func namedView(name string) navigator.Loader {
	return navigator.Static(navigator.ViewFunc(func(w io.Writer, _ navigator.Location) error {
		_, err := io.WriteString(w, name)
		return err
	}))
}

func route(path, name string) navigator.Route {
	return navigator.Route{Path: path, Name: name, Loader: namedView(name)}
}

func TestTable_ResolvesEveryDeclaredPath(t *testing.T) {
	decls := []navigator.Route{
		route("/", "Home"),
		route("/compress", "Compressor"),
		route("/longExposure", "LongExposure"),
		route("/timelapse", "Timelapse"),
		route("/timelapseViewer", "TimelapseViewer"),
	}

	table, err := navigator.NewTable(decls...)
	require.NoError(t, err)
	require.Equal(t, len(decls), table.Len())

	for i, decl := range decls {
		got, err := table.Resolve(decl.Path)
		require.NoError(t, err, decl.Path)
		assert.Equal(t, decl.Name, got.Name)
		assert.Equal(t, decl.Path, got.Path)
		assert.Same(t, table.Routes()[i], got)
	}
}

func TestTable_ResolveUnknownPathIsNotFound(t *testing.T) {
	table := navigator.MustTable(route("/", "Home"), route("/compress", "Compressor"))

	got, err := table.Resolve("/compress")
	require.NoError(t, err)
	assert.Equal(t, "Compressor", got.Name)

	for _, path := range []string{"/missing", "", "/compress/", "/Compress", "compress", "/compress?x=1"} {
		_, err := table.Resolve(path)
		assert.True(t, navigator.IsNotFound(err), "expected not found for %q, got %v", path, err)

		_, ok := table.Lookup(path)
		assert.False(t, ok, path)
	}
}

func TestTable_Named(t *testing.T) {
	table := navigator.MustTable(route("/", "Home"), route("/compress", "Compressor"))

	got, err := table.Named("Compressor")
	require.NoError(t, err)
	assert.Equal(t, "/compress", got.Path)

	_, err = table.Named("compressor")
	assert.True(t, navigator.IsNotFound(err))
}

func TestNewTable_RejectsDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		decls []navigator.Route
	}{
		{
			name:  "duplicate name",
			decls: []navigator.Route{route("/", "Home"), route("/home", "Home")},
		},
		{
			name:  "duplicate path",
			decls: []navigator.Route{route("/", "Home"), route("/", "Index")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := navigator.NewTable(tt.decls...)
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, navigator.IsConflict(err), "unexpected error: %v", err)
		})
	}
}

func TestNewTable_ReportsEveryProblem(t *testing.T) {
	_, err := navigator.NewTable(
		route("/", "Home"),
		route("/", "Index"),
		route("/compress", "Home"),
		route("no-slash", "Broken"),
	)
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok, "expected joined errors, got %T", err)
	assert.Len(t, joined.Unwrap(), 3)
}

func TestNewTable_RejectsInvalidDeclarations(t *testing.T) {
	tests := []struct {
		name string
		decl navigator.Route
	}{
		{"relative path", route("compress", "Compressor")},
		{"param segment", route("/photos/:id", "Photo")},
		{"catch-all segment", route("/files/*path", "Files")},
		{"empty segment", route("/a//b", "AB")},
		{"query", route("/compress?q=1", "Compressor")},
		{"fragment", route("/compress#top", "Compressor")},
		{"missing name", route("/compress", "")},
		{"missing loader", navigator.Route{Path: "/compress", Name: "Compressor"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := navigator.NewTable(tt.decl)
			require.Error(t, err)
			assert.True(t, navigator.IsInvalidRoute(err), "unexpected error: %v", err)
		})
	}
}

func TestNewTable_Empty(t *testing.T) {
	_, err := navigator.NewTable()
	assert.Error(t, err)

	assert.Panics(t, func() { navigator.MustTable() })
}

func TestTable_ExtendKeepsExistingRoutes(t *testing.T) {
	base := navigator.MustTable(route("/", "Home"), route("/compress", "Compressor"))

	home, err := base.Named("Home")
	require.NoError(t, err)
	_, err = home.Load(context.Background())
	require.NoError(t, err)

	grown, err := base.Extend(route("/timelapse", "Timelapse"))
	require.NoError(t, err)
	assert.Equal(t, 2, base.Len(), "extend must not mutate the original table")
	assert.Equal(t, 3, grown.Len())

	for _, r := range base.Routes() {
		got, err := grown.Resolve(r.Path)
		require.NoError(t, err)
		assert.Equal(t, r.Name, got.Name)
	}

	got, err := grown.Resolve("/timelapse")
	require.NoError(t, err)
	assert.Equal(t, "Timelapse", got.Name)

	grownHome, err := grown.Named("Home")
	require.NoError(t, err)
	assert.True(t, grownHome.Loaded(), "resolved views survive Extend")

	require.NoError(t, navigator.CheckAdditive(base, grown))

	_, err = base.Extend(route("/compress", "Compress2"))
	assert.True(t, navigator.IsConflict(err))
}

func TestCheckAdditive_DetectsRegressions(t *testing.T) {
	prev := navigator.MustTable(route("/", "Home"), route("/compress", "Compressor"), route("/longExposure", "LongExposure"))

	next := navigator.MustTable(
		route("/", "Home"),
		route("/compress", "ImageCompressor"),
		route("/long-exposure", "LongExposure"),
	)

	err := navigator.CheckAdditive(prev, next)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Compressor (/compress) was renamed to ImageCompressor")
	assert.Contains(t, err.Error(), "LongExposure (/longExposure) was moved to /long-exposure")

	removed := navigator.MustTable(route("/", "Home"))
	err = navigator.CheckAdditive(prev, removed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "was removed")
}

func TestRoute_LoadCachesView(t *testing.T) {
	calls := 0
	table := navigator.MustTable(navigator.Route{
		Path: "/",
		Name: "Home",
		Loader: func(context.Context) (navigator.View, error) {
			calls++
			return navigator.ViewFunc(func(io.Writer, navigator.Location) error { return nil }), nil
		},
	})

	home, err := table.Named("Home")
	require.NoError(t, err)
	assert.False(t, home.Loaded())

	first, err := home.Load(context.Background())
	require.NoError(t, err)
	second, err := home.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.True(t, home.Loaded())
	assert.NotNil(t, first)
	assert.NotNil(t, second)
}

func TestRoute_LoadErrorsAreNotCached(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	table := navigator.MustTable(navigator.Route{
		Path: "/",
		Name: "Home",
		Loader: func(context.Context) (navigator.View, error) {
			calls++
			if calls == 1 {
				return nil, boom
			}
			return navigator.ViewFunc(func(io.Writer, navigator.Location) error { return nil }), nil
		},
	})

	home, _ := table.Named("Home")
	_, err := home.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, home.Loaded())

	_, err = home.Load(context.Background())
	assert.NoError(t, err)
	assert.True(t, home.Loaded())
}

func TestRoute_ConcurrentLoadsShareOneCall(t *testing.T) {
	calls := atomic.NewInt32(0)
	started := make(chan struct{})
	release := make(chan struct{})
	table := navigator.MustTable(navigator.Route{
		Path: "/timelapse",
		Name: "Timelapse",
		Loader: func(context.Context) (navigator.View, error) {
			if calls.Inc() == 1 {
				close(started)
			}
			<-release
			return navigator.ViewFunc(func(io.Writer, navigator.Location) error { return nil }), nil
		},
	})
	timelapse, err := table.Named("Timelapse")
	require.NoError(t, err)

	results := make(chan navigator.View, 2)
	for i := 0; i < 2; i++ {
		go func() {
			view, err := timelapse.Load(context.Background())
			assert.NoError(t, err)
			results <- view
		}()
	}

	<-started
	assert.False(t, timelapse.Loaded(), "Loaded does not wait for a load in flight")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = timelapse.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled, "a waiter gives up when its context ends")

	close(release)
	first, second := <-results, <-results
	assert.NotNil(t, first)
	assert.NotNil(t, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, timelapse.Loaded())
}
