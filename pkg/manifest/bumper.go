package manifest

import "context"

// NodeBumper and PythonBumper adapt the package-level functions to the
// orchestrator's ManifestBumper interface.

type NodeBumper struct{}

func (NodeBumper) Bump(ctx context.Context, root string, workspaces []string, newVersion string) ([]string, error) {
	return BumpNode(ctx, root, workspaces, newVersion)
}

func (NodeBumper) PackageInfo(dir string) (name, version string, err error) {
	return NodePackageInfo(dir)
}

type PythonBumper struct{}

func (PythonBumper) Bump(ctx context.Context, root string, workspaces []string, newVersion string) ([]string, error) {
	return BumpPython(ctx, root, workspaces, newVersion)
}

func (PythonBumper) PackageInfo(dir string) (name, version string, err error) {
	return PythonPackageInfo(dir)
}
