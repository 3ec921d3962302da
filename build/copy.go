package build

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// CopyTarget copies Src, a path or glob relative to the project root, into
// Dest, a directory relative to the output directory. An empty Dest means
// the output root.
type CopyTarget struct {
	Src  string
	Dest string
}

// Copier copies third party files into the output directory.
type Copier struct {
	Root string
	Out  string
}

// Copy runs every target and returns the written files relative to Out.
// A target that matches nothing is an error, and so are two sources that
// would land on the same destination.
func (c *Copier) Copy(ctx context.Context, targets ...CopyTarget) ([]string, error) {
	var written []string
	sourceOf := make(map[string]string)
	for _, target := range targets {
		sources, err := c.expand(target.Src)
		if err != nil {
			return written, err
		}
		if len(sources) == 0 {
			return written, fmt.Errorf("copy target %q matched no files", target.Src)
		}

		for _, src := range sources {
			if err := ctx.Err(); err != nil {
				return written, err
			}

			rel := path.Join(filepath.ToSlash(target.Dest), path.Base(src))
			if prev, ok := sourceOf[rel]; ok {
				return written, fmt.Errorf("copy %s and %s both write %s", prev, src, rel)
			}
			sourceOf[rel] = src

			if err := copyFile(filepath.Join(c.Root, filepath.FromSlash(src)), filepath.Join(c.Out, filepath.FromSlash(rel))); err != nil {
				return written, fmt.Errorf("copy %s: %w", src, err)
			}
			written = append(written, rel)
		}
	}
	return written, nil
}

func (c *Copier) expand(pattern string) ([]string, error) {
	pattern = filepath.ToSlash(path.Clean(pattern))
	if !hasMeta(pattern) {
		info, err := os.Stat(filepath.Join(c.Root, filepath.FromSlash(pattern)))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("copy target %q is a directory", pattern)
		}
		return []string{pattern}, nil
	}

	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid copy pattern %q: %w", pattern, err)
	}

	start := staticPrefix(pattern)
	root := os.DirFS(c.Root)
	if _, err := fs.Stat(root, start); err != nil {
		return nil, nil
	}

	var matches []string
	err = fs.WalkDir(root, start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && g.Match(p) {
			matches = append(matches, p)
		}
		return nil
	})
	return matches, err
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// staticPrefix returns the leading directories of pattern without glob
// metacharacters, so walks skip unrelated trees.
func staticPrefix(pattern string) string {
	parts := strings.Split(pattern, "/")
	var prefix []string
	for _, part := range parts[:len(parts)-1] {
		if hasMeta(part) {
			break
		}
		prefix = append(prefix, part)
	}
	if len(prefix) == 0 {
		return "."
	}
	return strings.Join(prefix, "/")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
