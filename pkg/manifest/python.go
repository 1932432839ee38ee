package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

// The bumper edits version declarations textually instead of parsing TOML or
// Python. That keeps files format-preserving; the cost is that a line not
// matching the expected quoting style is skipped silently.
var (
	pyprojectVersionPattern = regexp.MustCompile(`(?m)^version\s*=\s*["']([^"']*)["']`)
	setupVersionPattern     = regexp.MustCompile(`(?m)^\s*version\s*=\s*["']([^"']*)["']`)
	initVersionPattern      = regexp.MustCompile(`(?m)^__version__\s*=\s*["']([^"']*)["']`)
	pyprojectNamePattern    = regexp.MustCompile(`(?m)^name\s*=\s*["']([^"']*)["']`)
)

// BumpPython rewrites the version declaration in pyproject.toml, setup.py and
// __init__.py files under every workspace. Each workspace must yield at least
// one version file or the whole batch fails. Returns the paths that were
// written.
func BumpPython(_ context.Context, root string, workspaces []string, newVersion string) ([]string, error) {
	dirs, err := WorkspaceDirs(root, workspaces)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestBump, err)
	}

	var written []string
	for _, dir := range dirs {
		paths, err := pythonVersionFiles(dir)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("%w: no pyproject.toml, setup.py or __init__.py under %s", ErrNoVersionFiles, dir)
		}

		for _, path := range paths {
			if err := bumpPythonFile(path, newVersion); err != nil {
				return nil, err
			}
			written = append(written, path)
		}
	}

	return written, nil
}

func pythonVersionFiles(dir string) ([]string, error) {
	var paths []string
	for _, name := range []string{"pyproject.toml", "setup.py", "__init__.py"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			paths = append(paths, path)
		}
	}

	// Package layout: <workspace>/<package>/__init__.py.
	nested, err := doublestar.FilepathGlob(filepath.Join(dir, "*", "__init__.py"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestBump, err)
	}
	for _, path := range nested {
		if !skipped(dir, path) {
			paths = append(paths, path)
		}
	}

	return paths, nil
}

func bumpPythonFile(path, newVersion string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrManifestBump, path, err)
	}

	var pattern *regexp.Regexp
	switch filepath.Base(path) {
	case "pyproject.toml":
		pattern = pyprojectVersionPattern
	case "setup.py":
		pattern = setupVersionPattern
	default:
		pattern = initVersionPattern
	}

	loc := pattern.FindSubmatchIndex(data)
	if loc == nil {
		// No matching declaration line; leave the file untouched.
		return nil
	}

	// Splice the new version into the quoted value only, keeping the rest of
	// the line byte-for-byte.
	out := make([]byte, 0, len(data)+len(newVersion))
	out = append(out, data[:loc[2]]...)
	out = append(out, newVersion...)
	out = append(out, data[loc[3]:]...)

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrManifestBump, path, err)
	}

	return nil
}

// PythonPackageInfo reads the project name and version from a workspace
// pyproject.toml, with the same directory-name and 0.0.0 fallbacks as the
// Node path.
func PythonPackageInfo(dir string) (name, ver string, err error) {
	name = filepath.Base(dir)
	ver = "0.0.0"

	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		if os.IsNotExist(err) {
			return name, ver, nil
		}
		return "", "", fmt.Errorf("%w: reading %s: %w", ErrManifestBump, dir, err)
	}

	if m := pyprojectNamePattern.FindSubmatch(data); m != nil {
		name = string(m[1])
	}
	if m := pyprojectVersionPattern.FindSubmatch(data); m != nil {
		ver = string(m[1])
	}

	return name, ver, nil
}
