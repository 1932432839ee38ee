package release

import (
	"context"

	"github.com/user/release-tools/pkg/github"
	"github.com/user/release-tools/pkg/gitrepo"
)

// VersioningStrategy decides whether every workspace shares one version or
// each changed package releases on its own.
type VersioningStrategy string

const (
	StrategyFixed       VersioningStrategy = "fixed"
	StrategyIndependent VersioningStrategy = "independent"
)

// Environment selects the manifest ecosystem.
type Environment string

const (
	EnvironmentNode   Environment = "nodejs"
	EnvironmentPython Environment = "python"
)

// Config is the slice of project configuration the orchestrator needs,
// passed in explicitly; the orchestrator never loads or caches config
// itself.
type Config struct {
	Environment          Environment
	Workspaces           []string
	Version              string
	Strategy             VersioningStrategy
	PreReleaseIdentifier string
}

// ChangedPackage is a workspace affected by commits since the last tag,
// used only by the independent strategy.
type ChangedPackage struct {
	Name        string
	Version     string
	PackagePath string
}

// Result is the terminal artifact of one published (or dry-run) release.
type Result struct {
	Version      string
	TagName      string
	ReleaseNotes string
	// PackageName is set for independent-strategy releases only.
	PackageName string
	Prerelease  bool
	Draft       bool
	DryRun      bool
}

// GitRepository is the local version-control collaborator.
type GitRepository interface {
	RepoInfo() (gitrepo.RepoInfo, error)
	Tags() (gitrepo.Tags, error)
	CommitsSince(from string) ([]gitrepo.Commit, error)
	CommitFiles(hash string) ([]string, error)
	CreateTag(name, message string) error
	AddFiles(paths []string) error
	Commit(message string) error
	Push(ctx context.Context) error
	PushTags(ctx context.Context) error
}

// Publisher is the remote hosting collaborator.
type Publisher interface {
	GetAuthenticatedUser(ctx context.Context) (*github.User, error)
	CreateRelease(ctx context.Context, owner, repo string, request github.ReleaseRequest) (*github.Release, error)
}

// ManifestBumper rewrites workspace version declarations on disk.
type ManifestBumper interface {
	Bump(ctx context.Context, root string, workspaces []string, newVersion string) ([]string, error)
	PackageInfo(dir string) (name, version string, err error)
}
