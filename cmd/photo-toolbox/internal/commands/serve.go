package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	navigator "github.com/goliatone/go-navigator"
	"github.com/goliatone/go-navigator/build"
	"github.com/goliatone/go-navigator/config"
	"github.com/goliatone/go-navigator/spa"
	"github.com/goliatone/go-navigator/toolbox"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct {
	Listen string `help:"HTTP server listen address, overrides server.addr" env:"PHOTO_TOOLBOX_LISTEN"`
	Engine string `help:"HTTP engine (http or fiber), overrides server.engine" env:"PHOTO_TOOLBOX_ENGINE"`
	Dist   string `help:"built output directory, overrides server.dist" type:"path"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}
	c.override(&cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := globals.logger("serve")
	if err != nil {
		return err
	}
	defer logger.Sync()

	table, err := cfg.RouteTable(toolbox.Views())
	if err != nil {
		return fmt.Errorf("invalid route table: %w", err)
	}

	host, err := newHost(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("serving %d routes under %s from %s with %s history on %s",
		table.Len(), host.Base(), cfg.Server.Dist, cfg.History, cfg.Server.Addr)

	if cfg.Server.Engine == "fiber" {
		return serveFiber(ctx, cfg.Server.Addr, host)
	}
	return serveHTTP(ctx, cfg.Server.Addr, host)
}

func (c *ServeCmd) override(cfg *config.Config) {
	if c.Listen != "" {
		cfg.Server.Addr = c.Listen
	}
	if c.Engine != "" {
		cfg.Server.Engine = c.Engine
	}
	if c.Dist != "" {
		cfg.Server.Dist = c.Dist
	}
}

func newHost(cfg config.Config, logger navigator.Logger) (*spa.Host, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}

	// overlays shadow the build output
	layers := make([]fs.FS, 0, len(cfg.Server.Overlays)+1)
	for _, dir := range cfg.Server.Overlays {
		layers = append(layers, os.DirFS(dir))
	}
	layers = append(layers, os.DirFS(cfg.Server.Dist))
	fsys := spa.Overlay(layers...)

	stamp, err := build.ReadStamp(fsys)
	if err != nil {
		return nil, fmt.Errorf("read build stamp: %w", err)
	}
	if stamp.Version == "" {
		logger.Warn("no %s in %s, update checks are disabled", build.StampFile, cfg.Server.Dist)
	}

	return spa.New(spa.Config{
		FS:          fsys,
		Base:        cfg.Base,
		Mode:        mode,
		Manifest:    build.ManifestFile,
		Title:       cfg.App.Name,
		Description: cfg.App.Description,
		ThemeColor:  cfg.App.ThemeColor,
		Version:     stamp.Version,
		MaxAge:      cfg.Server.MaxAge,
		Logger:      logger,
	})
}

func serveHTTP(ctx context.Context, addr string, host *spa.Host) error {
	srv := configureHTTPServer(addr, spa.RequestID(spa.NewHTTPHandler(host)))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func serveFiber(ctx context.Context, addr string, host *spa.Host) error {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           time.Minute,
		WriteTimeout:          time.Minute,
		IdleTimeout:           5 * time.Minute,
	})
	app.Use(spa.FiberRequestID())
	spa.RegisterFiber(app, host)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return app.ShutdownWithTimeout(shutdownTimeout)
	}
}
