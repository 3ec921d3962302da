package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"
	"github.com/goliatone/hashid/pkg/hashid"
)

// StampFile holds the build fingerprint polled by the update check.
const StampFile = "version.json"

// Stamp identifies a build. Version changes whenever any shipped file changes.
type Stamp struct {
	Version string    `json:"version"`
	Digest  string    `json:"digest"`
	Files   int       `json:"files"`
	BuiltAt time.Time `json:"built_at"`
}

// Fingerprint hashes every file under dir, skipping paths that match one of
// the ignore globs and the stamp file itself.
func Fingerprint(ctx context.Context, dir string, ignore []string) (Stamp, error) {
	matchers := make([]glob.Glob, 0, len(ignore))
	for _, pattern := range ignore {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return Stamp{}, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		matchers = append(matchers, g)
	}

	h := sha256.New()
	files := 0
	root := os.DirFS(dir)
	err := fs.WalkDir(root, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == "." || p == StampFile {
			return nil
		}
		if ignored(matchers, p) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		f, err := root.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		io.WriteString(h, p)
		h.Write([]byte{0})
		if _, err := io.Copy(h, f); err != nil {
			return err
		}
		h.Write([]byte{0})
		files++
		return nil
	})
	if err != nil {
		return Stamp{}, fmt.Errorf("fingerprint %s: %w", dir, err)
	}

	digest := hex.EncodeToString(h.Sum(nil))
	version, err := hashid.New(digest)
	if err != nil {
		return Stamp{}, fmt.Errorf("encode build version: %w", err)
	}

	return Stamp{Version: version, Digest: digest, Files: files}, nil
}

// ignored matches p with and without leading and trailing slashes so that
// patterns like **/node_modules/** also cover top level directories.
func ignored(matchers []glob.Glob, p string) bool {
	candidates := [...]string{p, "/" + p, p + "/", "/" + p + "/"}
	for _, g := range matchers {
		for _, c := range candidates {
			if g.Match(c) {
				return true
			}
		}
	}
	return false
}

// Write stores the stamp in dir.
func (s Stamp) Write(dir string) (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, StampFile)
	if err := os.WriteFile(target, append(data, '\n'), 0o644); err != nil {
		return "", err
	}
	return target, nil
}

// ReadStamp loads the stamp from fsys. A missing stamp is not an error and
// yields a zero Stamp.
func ReadStamp(fsys fs.FS) (Stamp, error) {
	data, err := fs.ReadFile(fsys, StampFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stamp{}, nil
		}
		return Stamp{}, err
	}
	var s Stamp
	if err := json.Unmarshal(data, &s); err != nil {
		return Stamp{}, fmt.Errorf("decode %s: %w", StampFile, err)
	}
	return s, nil
}
