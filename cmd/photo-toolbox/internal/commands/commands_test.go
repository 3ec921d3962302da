package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	navigator "github.com/goliatone/go-navigator"
	"github.com/goliatone/go-navigator/config"
	"github.com/goliatone/go-navigator/toolbox"
)

func TestGlobals_Load(t *testing.T) {
	cfg, err := (&Globals{}).load()
	require.NoError(t, err)
	assert.Equal(t, toolbox.DefaultBase, cfg.Base)

	path := filepath.Join(t.TempDir(), "toolbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base: /tools/\nhistory: path\n"), 0o644))
	cfg, err = (&Globals{Config: path}).load()
	require.NoError(t, err)
	assert.Equal(t, "/tools/", cfg.Base)
	assert.Equal(t, "path", cfg.History)

	require.NoError(t, os.WriteFile(path, []byte("history: memory\n"), 0o644))
	_, err = (&Globals{Config: path}).load()
	assert.ErrorContains(t, err, "invalid config")

	_, err = (&Globals{Config: filepath.Join(t.TempDir(), "missing.yaml")}).load()
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()

	state, err := resolve(ctx, cfg, "/vue-photo-toolbox/#/compress?quality=70", nil)
	require.NoError(t, err)
	assert.Equal(t, toolbox.Compressor, state.Route.Name)
	assert.Equal(t, navigator.StatusReady, state.Status)

	var out bytes.Buffer
	require.NoError(t, printState(&out, state, true))
	assert.Contains(t, out.String(), "route:    Compressor")
	assert.Contains(t, out.String(), "query:    quality=70")
	assert.Contains(t, out.String(), `data-view="ImageCompressor"`)

	_, err = resolve(ctx, cfg, "/vue-photo-toolbox/#/missing", nil)
	assert.True(t, navigator.IsNotFound(err))

	cfg.NotFound = toolbox.Home
	state, err = resolve(ctx, cfg, "/vue-photo-toolbox/#/missing", nil)
	require.NoError(t, err)
	assert.Equal(t, toolbox.Home, state.Route.Name)

	cfg = config.Default()
	cfg.History = "path"
	state, err = resolve(ctx, cfg, "/vue-photo-toolbox/longExposure", nil)
	require.NoError(t, err)
	assert.Equal(t, toolbox.LongExposure, state.Route.Name)
}

func TestPrintRoutes(t *testing.T) {
	cfg := config.Default()
	table, err := cfg.RouteTable(toolbox.Views())
	require.NoError(t, err)
	codec, err := cfg.Codec()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printRoutes(&out, table, codec))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 6)
	assert.Contains(t, string(lines[0]), "LOCATION")
	assert.Contains(t, string(lines[2]), "/vue-photo-toolbox/#/compress")
	assert.Contains(t, string(lines[5]), "TimelapseViewer")
}

func TestCheckReleases(t *testing.T) {
	table, err := toolbox.Table()
	require.NoError(t, err)
	assert.NoError(t, checkReleases(table))

	shrunk := navigator.MustTable(toolbox.Routes()[:3]...)
	err = checkReleases(shrunk)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "was removed")
}

func TestPipelineConfig(t *testing.T) {
	cfg := config.Default()

	pc := pipelineConfig(cfg, false)
	assert.Equal(t, cfg.Build.Out, pc.Out)
	require.Len(t, pc.Targets, 1)
	assert.Equal(t, "node_modules/gif.js.optimized/dist/gif.worker.js", pc.Targets[0].Src)
	require.NotNil(t, pc.Manifest)
	assert.Equal(t, "Photo Toolbox", pc.Manifest.Name)
	assert.Equal(t, toolbox.DefaultBase, pc.Manifest.StartURL)
	assert.Len(t, pc.Manifest.Icons, 2)
	assert.Equal(t, cfg.Build.Ignore, pc.Ignore)

	assert.Nil(t, pipelineConfig(cfg, true).Manifest)

	cfg.Build.SkipManifest = true
	assert.Nil(t, pipelineConfig(cfg, false).Manifest)
}

func TestServeCmd_Override(t *testing.T) {
	cfg := config.Default()
	(&ServeCmd{Listen: ":9000", Engine: "fiber"}).override(&cfg)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "fiber", cfg.Server.Engine)
	assert.Equal(t, "dist", cfg.Server.Dist)
}

func TestNewHost(t *testing.T) {
	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, "version.json"), []byte(`{"version":"abc"}`), 0o644))

	cfg := config.Default()
	cfg.Server.Dist = dist

	host, err := newHost(cfg, navigator.DefaultLogger())
	require.NoError(t, err)
	assert.Equal(t, toolbox.DefaultBase, host.Base())

	var doc bytes.Buffer
	require.NoError(t, host.RenderDocument(&doc))
	assert.Contains(t, doc.String(), `content="abc"`)
	assert.Contains(t, doc.String(), "<title>Photo Toolbox</title>")
}
