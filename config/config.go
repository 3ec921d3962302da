// Package config loads the application configuration from YAML or TOML
// files and turns route declarations into a navigator table.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/ettle/strcase"
	"gopkg.in/yaml.v2"

	navigator "github.com/goliatone/go-navigator"
	"github.com/goliatone/go-navigator/toolbox"
)

type Config struct {
	App      App     `yaml:"app" toml:"app"`
	Base     string  `yaml:"base" toml:"base"`
	History  string  `yaml:"history" toml:"history"`
	NotFound string  `yaml:"not_found" toml:"not_found"`
	Routes   []Route `yaml:"routes" toml:"routes"`
	Server   Server  `yaml:"server" toml:"server"`
	Build    Build   `yaml:"build" toml:"build"`
}

// App holds the identity used by the entry document and the manifest.
type App struct {
	Name        string `yaml:"name" toml:"name"`
	ShortName   string `yaml:"short_name" toml:"short_name"`
	Description string `yaml:"description" toml:"description"`
	ThemeColor  string `yaml:"theme_color" toml:"theme_color"`
}

// Route declares a route. Path defaults to the lower camel case name.
type Route struct {
	Path string `yaml:"path" toml:"path"`
	Name string `yaml:"name" toml:"name"`
	View string `yaml:"view" toml:"view"`
}

type Server struct {
	Addr     string   `yaml:"addr" toml:"addr"`
	Engine   string   `yaml:"engine" toml:"engine"`
	Dist     string   `yaml:"dist" toml:"dist"`
	Overlays []string `yaml:"overlays" toml:"overlays"`
	MaxAge   int      `yaml:"max_age" toml:"max_age"`
}

type Build struct {
	Root         string       `yaml:"root" toml:"root"`
	Out          string       `yaml:"out" toml:"out"`
	Copy         []CopyTarget `yaml:"copy" toml:"copy"`
	Ignore       []string     `yaml:"ignore" toml:"ignore"`
	SkipManifest bool         `yaml:"skip_manifest" toml:"skip_manifest"`
	Icons        []Icon       `yaml:"icons" toml:"icons"`
}

type CopyTarget struct {
	Src  string `yaml:"src" toml:"src"`
	Dest string `yaml:"dest" toml:"dest"`
}

type Icon struct {
	Src   string `yaml:"src" toml:"src"`
	Sizes string `yaml:"sizes" toml:"sizes"`
	Type  string `yaml:"type" toml:"type"`
}

// Default returns the configuration of the photo toolbox deployment.
func Default() Config {
	cfg := Config{
		App: App{
			Name:        "Photo Toolbox",
			ShortName:   "Toolbox",
			Description: "Image compression, long exposure and timelapse tools in the browser",
			ThemeColor:  "#42b883",
		},
		Base:    toolbox.DefaultBase,
		History: string(navigator.ModeHash),
		Server: Server{
			Addr:   ":8080",
			Engine: "http",
			Dist:   "dist",
			MaxAge: 3600,
		},
		Build: Build{
			Root: ".",
			Out:  "dist",
			Copy: []CopyTarget{
				{Src: "node_modules/gif.js.optimized/dist/gif.worker.js", Dest: ""},
			},
			Ignore: []string{
				"**/node_modules/**",
				"**/dist/**",
				"**/.git/**",
				"**/.idea/**",
				"**/.vscode/**",
			},
			Icons: []Icon{
				{Src: "pwa-192x192.png", Sizes: "192x192", Type: "image/png"},
				{Src: "pwa-512x512.png", Sizes: "512x512", Type: "image/png"},
			},
		},
	}

	for _, r := range toolbox.Routes() {
		cfg.Routes = append(cfg.Routes, Route{Path: r.Path, Name: r.Name, View: viewID(r.Name)})
	}
	return cfg
}

func viewID(name string) string {
	switch name {
	case toolbox.Home:
		return toolbox.ViewHomePage
	case toolbox.Compressor:
		return toolbox.ViewImageCompressor
	default:
		return name
	}
}

// Load reads path, decoding by extension, and fills unset values from
// Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		_, err = toml.Decode(string(data), &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := cfg.ApplyDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyDefaults fills zero values from Default.
func (c *Config) ApplyDefaults() error {
	if err := mergo.Merge(c, Default()); err != nil {
		return fmt.Errorf("merge config defaults: %w", err)
	}
	return nil
}

// Validate checks the values that cannot be defaulted.
func (c Config) Validate() error {
	var errs []error
	if _, err := navigator.ParseMode(c.History); err != nil {
		errs = append(errs, err)
	}
	if !strings.HasPrefix(c.Base, "/") {
		errs = append(errs, fmt.Errorf("base %q must start with /", c.Base))
	}
	switch c.Server.Engine {
	case "", "http", "fiber":
	default:
		errs = append(errs, fmt.Errorf("unknown server engine %q", c.Server.Engine))
	}
	for i, r := range c.Routes {
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("route %d: name is required", i))
		}
	}
	return errors.Join(errs...)
}

// Mode returns the configured history mode.
func (c Config) Mode() (navigator.Mode, error) {
	return navigator.ParseMode(c.History)
}

// Codec returns the codec for the configured mode and base.
func (c Config) Codec() (navigator.Codec, error) {
	mode, err := c.Mode()
	if err != nil {
		return navigator.Codec{}, err
	}
	return navigator.NewCodec(mode, c.Base), nil
}

// RouteTable binds the declared routes to loaders from reg.
func (c Config) RouteTable(reg navigator.Registry) (*navigator.Table, error) {
	routes := make([]navigator.Route, 0, len(c.Routes))
	var errs []error
	for _, r := range c.Routes {
		view := r.View
		if view == "" {
			view = r.Name
		}
		loader, ok := reg[view]
		if !ok {
			errs = append(errs, fmt.Errorf("route %s: unknown view %q", r.Name, view))
			continue
		}
		routes = append(routes, navigator.Route{
			Path:   RoutePath(r),
			Name:   r.Name,
			Loader: loader,
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return navigator.NewTable(routes...)
}

// RoutePath returns the declared path or one derived from the route name,
// e.g. LongExposure becomes /longExposure.
func RoutePath(r Route) string {
	if r.Path != "" {
		return r.Path
	}
	return "/" + strcase.ToCamel(r.Name)
}
