// Package manifest rewrites per-ecosystem version declarations in place:
// package.json for Node workspaces, pyproject.toml / setup.py / __init__.py
// for Python ones.
package manifest

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"
)

var (
	ErrManifestBump   = errors.New("manifest bump failed")
	ErrNoVersionFiles = errors.New("no version files found")
)

// skippedSegments are path components that never hold project manifests. The
// check runs on paths relative to the repository root so a root that happens
// to live under a "build" directory is not skipped.
var skippedSegments = []string{"node_modules", "dist", "build", ".git", "vendor"}

func skipped(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	for _, segment := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, skip := range skippedSegments {
			if segment == skip {
				return true
			}
		}
	}

	return false
}

// WorkspaceDirs expands the configured workspace globs into concrete
// directories under root. Globs may use ** (doublestar). Order follows the
// workspace declaration order, duplicates removed.
func WorkspaceDirs(root string, workspaces []string) ([]string, error) {
	var dirs []string
	for _, ws := range workspaces {
		pattern := filepath.Join(root, filepath.FromSlash(ws))

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, err
		}

		// A literal path ("." or "packages/api") has no matches to expand.
		if len(matches) == 0 && !strings.ContainsAny(ws, "*?[") {
			matches = []string{pattern}
		}

		for _, match := range matches {
			if !skipped(root, match) {
				dirs = append(dirs, filepath.Clean(match))
			}
		}
	}

	return lo.Uniq(dirs), nil
}
