// Package spa hosts the built single page application under a base path.
//
// Files that exist in the filesystem are served as is. The entry document is
// rendered for the base root and, in path history mode, for any other
// extensionless path under the base so that direct loads of deep links reach
// the navigator.
package spa

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"dario.cat/mergo"
	"github.com/flosch/pongo2/v6"
	cfs "github.com/goliatone/go-composite-fs"

	navigator "github.com/goliatone/go-navigator"
)

//go:embed document.html
var defaultDocument []byte

const (
	HeaderRequestID = "X-Request-ID"
	noCache         = "no-cache"
)

// Config configures a Host.
type Config struct {
	FS   fs.FS
	Base string
	Mode navigator.Mode
	// Index is the entry document template inside FS. The embedded default
	// document is used when it does not exist.
	Index       string
	Manifest    string
	Title       string
	Description string
	ThemeColor  string
	Version     string
	// MaxAge is the Cache-Control max-age for assets, in seconds.
	MaxAge int
	Logger navigator.Logger
}

var defaultConfig = Config{
	Base:     "/",
	Mode:     navigator.ModeHash,
	Index:    "index.html",
	Manifest: "manifest.webmanifest",
	Title:    "App",
}

// Kind is the outcome of matching a request path.
type Kind int

const (
	KindNotFound Kind = iota
	KindFile
	KindDocument
	KindRedirect
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDocument:
		return "document"
	case KindRedirect:
		return "redirect"
	default:
		return "not_found"
	}
}

// Result tells an adapter how to answer a request.
type Result struct {
	Kind Kind
	// File is the FS path for KindFile.
	File string
	// Location is the target for KindRedirect.
	Location string
}

// Host decides what to serve for a request path.
type Host struct {
	cfg      Config
	base     string
	document *pongo2.Template
	logger   navigator.Logger
}

// New validates cfg and compiles the entry document.
func New(cfg Config) (*Host, error) {
	if cfg.FS == nil {
		return nil, errors.New("spa: filesystem is required")
	}
	if err := mergo.Merge(&cfg, defaultConfig); err != nil {
		return nil, fmt.Errorf("spa: merge config: %w", err)
	}
	if _, err := navigator.ParseMode(string(cfg.Mode)); err != nil {
		return nil, fmt.Errorf("spa: %w", err)
	}

	source, err := fs.ReadFile(cfg.FS, cfg.Index)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		source = defaultDocument
	case err != nil:
		return nil, fmt.Errorf("spa: read entry document: %w", err)
	}

	document, err := pongo2.FromBytes(source)
	if err != nil {
		return nil, fmt.Errorf("spa: compile entry document: %w", err)
	}

	h := &Host{
		cfg:      cfg,
		base:     navigator.NormalizeBase(cfg.Base),
		document: document,
		logger:   navigator.DefaultLogger(cfg.Logger),
	}
	h.logger.Debug("spa host under %s in %s mode", h.base, cfg.Mode)
	return h, nil
}

// Base returns the normalized base path.
func (h *Host) Base() string {
	return h.base
}

// Match resolves a request path.
func (h *Host) Match(requestPath string) Result {
	if requestPath == "" {
		requestPath = "/"
	}

	if h.base != "/" && requestPath+"/" == h.base {
		return Result{Kind: KindRedirect, Location: h.base}
	}
	if !strings.HasPrefix(requestPath, h.base) {
		return Result{Kind: KindNotFound}
	}

	rel := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(requestPath, h.base)), "/")
	if rel == "" || rel == h.cfg.Index {
		return Result{Kind: KindDocument}
	}

	deepLink := h.cfg.Mode.RequiresServerFallback() && path.Ext(rel) == ""

	// route paths never end in a slash, send the client to the declared form
	if deepLink && strings.HasSuffix(requestPath, "/") {
		return Result{Kind: KindRedirect, Location: h.base + rel}
	}

	if info, err := fs.Stat(h.cfg.FS, rel); err == nil && !info.IsDir() {
		return Result{Kind: KindFile, File: rel}
	}

	if deepLink {
		return Result{Kind: KindDocument}
	}
	return Result{Kind: KindNotFound}
}

// RenderDocument writes the entry document.
func (h *Host) RenderDocument(w io.Writer) error {
	manifest := ""
	if h.cfg.Manifest != "" {
		manifest = h.base + h.cfg.Manifest
	}

	var buf bytes.Buffer
	err := h.document.ExecuteWriter(pongo2.Context{
		"base":        h.base,
		"mode":        h.cfg.Mode.String(),
		"title":       h.cfg.Title,
		"description": h.cfg.Description,
		"theme_color": h.cfg.ThemeColor,
		"manifest":    manifest,
		"version":     h.cfg.Version,
	}, &buf)
	if err != nil {
		return fmt.Errorf("spa: render entry document: %w", err)
	}

	_, err = buf.WriteTo(w)
	return err
}

// CacheControl returns the Cache-Control value for a match.
func (h *Host) CacheControl(res Result) string {
	switch res.Kind {
	case KindDocument:
		return noCache
	case KindFile:
		if res.File == h.cfg.Manifest || path.Base(res.File) == "version.json" {
			return noCache
		}
		if h.cfg.MaxAge > 0 {
			return fmt.Sprintf("public, max-age=%d", h.cfg.MaxAge)
		}
	}
	return ""
}

// Overlay stacks filesystems so that earlier layers win.
func Overlay(layers ...fs.FS) fs.FS {
	if len(layers) == 1 {
		return layers[0]
	}
	return cfs.NewOverlayFS(layers...)
}
