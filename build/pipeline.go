// Package build packages an already bundled application: it copies third
// party files such as web workers into the output, writes the web app
// manifest and stamps the build with a version the client polls for updates.
package build

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	navigator "github.com/goliatone/go-navigator"
)

type Config struct {
	// Root is the project directory copy sources are relative to.
	Root    string
	Out     string
	Targets []CopyTarget
	// Manifest is written when set.
	Manifest *Manifest
	// Ignore lists globs excluded from the fingerprint.
	Ignore []string
}

// Result reports what a run produced.
type Result struct {
	Copied       []string
	ManifestPath string
	Stamp        Stamp
}

type Pipeline struct {
	config Config
	logger navigator.Logger
	now    func() time.Time
	mu     sync.Mutex
}

func New(config Config, lgrs ...navigator.Logger) *Pipeline {
	return &Pipeline{
		config: config,
		logger: navigator.DefaultLogger(lgrs...),
		now:    time.Now,
	}
}

// Run executes copy, manifest and stamp in order. Runs are serialized.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var res Result
	if p.config.Out == "" {
		return res, fmt.Errorf("build: output directory is required")
	}
	if err := os.MkdirAll(p.config.Out, 0o755); err != nil {
		return res, fmt.Errorf("build: create output: %w", err)
	}

	if len(p.config.Targets) > 0 {
		copier := &Copier{Root: p.config.Root, Out: p.config.Out}
		copied, err := copier.Copy(ctx, p.config.Targets...)
		if err != nil {
			return res, fmt.Errorf("build: %w", err)
		}
		for _, file := range copied {
			p.logger.Info("copied %s", file)
		}
		res.Copied = copied
	}

	if p.config.Manifest != nil {
		target, err := p.config.Manifest.Write(p.config.Out)
		if err != nil {
			return res, fmt.Errorf("build: manifest: %w", err)
		}
		p.logger.Info("wrote %s", target)
		res.ManifestPath = target
	}

	stamp, err := Fingerprint(ctx, p.config.Out, p.config.Ignore)
	if err != nil {
		return res, fmt.Errorf("build: %w", err)
	}
	stamp.BuiltAt = p.now().UTC()
	if _, err := stamp.Write(p.config.Out); err != nil {
		return res, fmt.Errorf("build: stamp: %w", err)
	}
	p.logger.Info("build %s stamped over %d files", stamp.Version, stamp.Files)
	res.Stamp = stamp

	return res, nil
}
