// Package workspace resolves the directory every scan target and reported path is relative to.
package workspace

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/scan-io-git/dfaudit/pkg/shared/files"
)

// ErrNoWorkspace is returned when the workspace root cannot be used as a directory.
var ErrNoWorkspace = errors.New("workspace root is not an accessible directory")

// Resolve returns the absolute workspace root.
// An explicit root wins; otherwise the top level of the git worktree enclosing start is used,
// and outside of any repository start itself is the workspace.
func Resolve(explicit, start string) (string, error) {
	if explicit != "" {
		return resolveExplicit(explicit)
	}

	absStart, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start folder %q: %w", start, err)
	}
	if err := files.ValidateDir(absStart); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoWorkspace, err)
	}

	root, err := findWorktreeRoot(absStart)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return absStart, nil
		}
		return "", fmt.Errorf("detect git worktree for %q: %w", absStart, err)
	}
	return root, nil
}

func resolveExplicit(explicit string) (string, error) {
	expanded, err := files.ExpandPath(explicit)
	if err != nil {
		return "", fmt.Errorf("expand workspace root %q: %w", explicit, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve workspace root %q: %w", explicit, err)
	}
	if err := files.ValidateDir(abs); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoWorkspace, err)
	}
	return abs, nil
}

// findWorktreeRoot walks up from folder until it finds a .git entry.
func findWorktreeRoot(folder string) (string, error) {
	repo, err := git.PlainOpenWithOptions(folder, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("open worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}
