package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-navigator/cmd/photo-toolbox/internal/logging"
	"github.com/goliatone/go-navigator/config"
)

type Globals struct {
	Debug   bool
	Version string
	Config  string
}

// load reads the config file, or the built in defaults when none is given,
// and validates it.
func (g *Globals) load() (config.Config, error) {
	cfg := config.Default()
	if g.Config != "" {
		var err error
		if cfg, err = config.Load(g.Config); err != nil {
			return config.Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (g *Globals) logger(name string) (*logging.Logger, error) {
	logger, err := logging.New(g.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger.Named(name), nil
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
