package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

const nodeManifest = "package.json"

// maxParallelBumps bounds the manifest write fan-out.
const maxParallelBumps = 4

// ResolveNodeManifests lists every package.json under the configured
// workspaces, ignoring build and vendor directories.
func ResolveNodeManifests(root string, workspaces []string) ([]string, error) {
	dirs, err := WorkspaceDirs(root, workspaces)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestBump, err)
	}

	var paths []string
	for _, dir := range dirs {
		path := filepath.Join(dir, nodeManifest)
		if _, statErr := os.Stat(path); statErr == nil {
			paths = append(paths, path)
		}
	}

	return paths, nil
}

// BumpNode sets the version field of every workspace package.json to
// newVersion. Files are rewritten in parallel with all-or-nothing failure:
// one bad file fails the whole batch. Returns the paths that were written.
func BumpNode(ctx context.Context, root string, workspaces []string, newVersion string) ([]string, error) {
	paths, err := ResolveNodeManifests(root, workspaces)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no %s under workspaces %v", ErrNoVersionFiles, nodeManifest, workspaces)
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelBumps)

	for _, path := range paths {
		g.Go(func() error {
			return bumpNodeFile(path, newVersion)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return paths, nil
}

func bumpNodeFile(path, newVersion string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrManifestBump, path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: parsing %s: %w", ErrManifestBump, path, err)
	}

	doc["version"] = newVersion

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrManifestBump, path, err)
	}
	out = append(out, '\n')

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrManifestBump, path, err)
	}

	return nil
}

// NodePackageInfo reads the name and version from a workspace package.json.
// A missing manifest is not an error: the name falls back to the directory
// name and the version to 0.0.0, the first-release default.
func NodePackageInfo(dir string) (name, ver string, err error) {
	name = filepath.Base(dir)
	ver = "0.0.0"

	data, err := os.ReadFile(filepath.Join(dir, nodeManifest))
	if err != nil {
		if os.IsNotExist(err) {
			return name, ver, nil
		}
		return "", "", fmt.Errorf("%w: reading %s: %w", ErrManifestBump, dir, err)
	}

	var doc struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", "", fmt.Errorf("%w: parsing %s: %w", ErrManifestBump, dir, err)
	}

	if doc.Name != "" {
		name = doc.Name
	}
	if doc.Version != "" {
		ver = doc.Version
	}

	return name, ver, nil
}
