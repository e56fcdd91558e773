// Package discovery finds the build files to audit below a set of workspace targets.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-zglob"

	"github.com/scan-io-git/dfaudit/pkg/shared/files"
)

// Candidate is a discovered file.
type Candidate struct {
	// Absolute filesystem path.
	Path string
	// Workspace-relative path using forward slashes (e.g. "fks/api/Dockerfile").
	RelPath string
}

// Options configures a Finder.
type Options struct {
	// Root is the absolute workspace root.
	Root string
	// Targets are directories relative to Root.
	Targets []string
	// FileName is matched exactly against every file name.
	FileName string
	// Ignore holds workspace-relative paths or glob patterns to exclude.
	Ignore []string
}

// Finder walks the configured targets sequentially.
type Finder struct {
	opts   Options
	logger hclog.Logger
}

// New validates the ignore patterns and returns a Finder.
func New(opts Options, logger hclog.Logger) (*Finder, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("workspace root is not set")
	}
	if opts.FileName == "" {
		return nil, fmt.Errorf("file name is not set")
	}
	for _, pattern := range opts.Ignore {
		if _, err := zglob.Match(pattern, opts.FileName); err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Finder{opts: opts, logger: logger}, nil
}

// Find returns every matching file in discovery order.
// A target that is missing, unreadable or not a directory contributes nothing.
// A target that is a symlink to a directory is followed; links below it are not.
// Errors from directories below a target abort the walk.
func (f *Finder) Find() ([]Candidate, error) {
	var found []Candidate
	seen := make(map[string]struct{})

	for _, target := range f.opts.Targets {
		base := filepath.Join(f.opts.Root, filepath.FromSlash(target))
		baseRel, err := files.RelativeSlashPath(f.opts.Root, base)
		if err != nil {
			return nil, fmt.Errorf("invalid target %q: %w", target, err)
		}

		walkRoot, ok := f.resolveTarget(target, base)
		if !ok {
			continue
		}

		err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == walkRoot {
					f.logger.Warn("target is unreadable, skipping", "target", target, "error", err)
					return nil
				}
				return fmt.Errorf("failed to access %q: %w", path, err)
			}

			sub, err := filepath.Rel(walkRoot, path)
			if err != nil {
				return err
			}
			rel := baseRel
			if sub != "." {
				rel = pathpkg.Join(baseRel, filepath.ToSlash(sub))
			}
			if HasHiddenSegment(rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || d.Name() != f.opts.FileName {
				return nil
			}
			if f.ignored(rel) {
				f.logger.Debug("ignoring file", "path", rel)
				return nil
			}
			if _, ok := seen[path]; ok {
				return nil
			}
			seen[path] = struct{}{}

			found = append(found, Candidate{Path: filepath.Join(base, sub), RelPath: rel})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk target %q: %w", target, err)
		}
	}

	f.logger.Debug("discovery finished", "targets", len(f.opts.Targets), "found", len(found))
	return found, nil
}

// resolveTarget returns the directory to walk for a target, following a symlinked target.
func (f *Finder) resolveTarget(target, base string) (string, bool) {
	info, err := os.Stat(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.logger.Debug("target does not exist, skipping", "target", target)
		} else {
			f.logger.Warn("target is inaccessible, skipping", "target", target, "error", err)
		}
		return "", false
	}
	if !info.IsDir() {
		f.logger.Warn("target is not a directory, skipping", "target", target)
		return "", false
	}

	resolved, err := filepath.EvalSymlinks(base)
	if err != nil {
		f.logger.Warn("target is inaccessible, skipping", "target", target, "error", err)
		return "", false
	}
	return resolved, true
}

func (f *Finder) ignored(rel string) bool {
	for _, pattern := range f.opts.Ignore {
		if pattern == rel {
			return true
		}
		if ok, _ := zglob.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// HasHiddenSegment reports whether any segment of a slash-separated relative path starts with a dot.
// The "." path denoting the root itself is not hidden.
func HasHiddenSegment(rel string) bool {
	if rel == "." {
		return false
	}
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
