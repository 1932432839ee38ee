// Package release sequences a semantic-version release run: inspect
// repository state, classify commits, derive the next version, bump
// manifests, tag, and publish a GitHub release.
package release

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/user/release-tools/internal/logger"
	"github.com/user/release-tools/pkg/conventional"
	"github.com/user/release-tools/pkg/github"
	"github.com/user/release-tools/pkg/gitrepo"
	"github.com/user/release-tools/pkg/manifest"
	"github.com/user/release-tools/pkg/notes"
	"github.com/user/release-tools/pkg/version"
)

// maxParallelLogReads bounds the per-commit changed-file fan-out in the
// independent strategy.
const maxParallelLogReads = 4

// Options are the per-invocation release parameters.
type Options struct {
	// Type is the requested bump. Empty means infer it from the commits
	// since the last tag: any feat commit promotes the bump to minor,
	// otherwise patch.
	Type   version.ReleaseType
	Draft  bool
	DryRun bool
}

// Orchestrator runs one release end to end. It executes exactly once per
// invocation; partial side effects of a failed run are not rolled back.
type Orchestrator struct {
	cfg       Config
	repo      GitRepository
	publisher Publisher
	bumper    ManifestBumper
	root      string
}

// New wires the orchestrator with its collaborators. cfg is read-only for
// the duration of a run.
func New(cfg Config, repo GitRepository, publisher Publisher, bumper ManifestBumper, root string) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		repo:      repo,
		publisher: publisher,
		bumper:    bumper,
		root:      root,
	}
}

// Run performs the release. The fixed strategy yields one Result; the
// independent strategy yields one per changed package. On failure the
// returned error is always a *Error.
func (o *Orchestrator) Run(ctx context.Context, opts Options) ([]Result, error) {
	runID := uuid.NewString()
	log := logger.Get().With().Str("run_id", runID).Logger()

	user, err := o.publisher.GetAuthenticatedUser(ctx)
	if err != nil {
		return nil, newError(KindAuthentication, "GitHub authentication failed", err,
			"set GITHUB_TOKEN to a token with repo scope",
			"check that the token has not expired")
	}
	log.Debug().Str("user", user.Login).Msg("authenticated against GitHub")

	info, err := o.repo.RepoInfo()
	if err != nil {
		return nil, repoInfoError(err)
	}
	log.Info().
		Str("owner", info.Owner).
		Str("repo", info.Repo).
		Str("environment", string(o.cfg.Environment)).
		Str("strategy", string(o.cfg.Strategy)).
		Bool("dry_run", opts.DryRun).
		Msg("starting release run")

	switch o.cfg.Strategy {
	case StrategyIndependent:
		return o.runIndependent(ctx, log, info, opts)
	default:
		return o.runFixed(ctx, log, info, opts)
	}
}

func (o *Orchestrator) runFixed(ctx context.Context, log zerolog.Logger, info gitrepo.RepoInfo, opts Options) ([]Result, error) {
	commits, err := o.commitsSinceLatestTag()
	if err != nil {
		return nil, err
	}

	bump := o.resolveBump(opts, commits)
	next, err := version.Next(o.cfg.Version, bump, o.cfg.PreReleaseIdentifier)
	if err != nil {
		return nil, newError(KindInvalidVersion,
			fmt.Sprintf("current version %q is not valid semver", o.cfg.Version), err,
			"fix the version field in the project configuration")
	}

	tagName := version.TagName(next)
	releaseNotes := notes.Generate(tagName, commits)

	result := Result{
		Version:      next,
		TagName:      tagName,
		ReleaseNotes: releaseNotes,
		Prerelease:   version.IsPrerelease(next),
		Draft:        opts.Draft,
		DryRun:       opts.DryRun,
	}

	if opts.DryRun {
		log.Info().Str("version", next).Msg("dry run, skipping all writes")
		return []Result{result}, nil
	}

	bumped, err := o.bumper.Bump(ctx, o.root, o.cfg.Workspaces, next)
	if err != nil {
		return nil, bumpError(err)
	}
	log.Info().Int("manifests", len(bumped)).Str("version", next).Msg("manifests bumped")

	if err := o.commitManifests(bumped, tagName); err != nil {
		return nil, err
	}

	if err := o.repo.CreateTag(tagName, "Release "+tagName); err != nil {
		return nil, tagError(tagName, err)
	}

	if err := o.publish(ctx, info, tagName, releaseNotes, result); err != nil {
		return nil, err
	}

	if err := o.pushAll(ctx); err != nil {
		return nil, err
	}

	log.Info().Str("tag", tagName).Msg("release published")
	return []Result{result}, nil
}

func (o *Orchestrator) runIndependent(ctx context.Context, log zerolog.Logger, info gitrepo.RepoInfo, opts Options) ([]Result, error) {
	commits, err := o.commitsSinceLatestTag()
	if err != nil {
		return nil, err
	}

	changedFiles, err := o.changedFiles(ctx, commits)
	if err != nil {
		return nil, err
	}

	packages, err := o.affectedPackages(changedFiles)
	if err != nil {
		return nil, err
	}
	if len(packages) == 0 {
		return nil, newError(KindNoPackagesChanged, "no configured workspace was touched by the commits since the last tag", nil,
			"check the workspaces globs in the project configuration",
			"run with the fixed versioning strategy to release everything together")
	}
	log.Info().Int("packages", len(packages)).Msg("changed packages resolved")

	bump := o.resolveBump(opts, commits)

	var results []Result
	for _, pkg := range packages {
		next, err := version.Next(pkg.Version, bump, o.cfg.PreReleaseIdentifier)
		if err != nil {
			return nil, newError(KindInvalidVersion,
				fmt.Sprintf("package %s has invalid version %q", pkg.Name, pkg.Version), err,
				"fix the version declared in the package manifest")
		}

		tagName := version.PackageTagName(pkg.Name, next)
		results = append(results, Result{
			Version: next,
			TagName: tagName,
			// Notes cover every commit since the last tag, not only the ones
			// touching this package.
			ReleaseNotes: notes.Generate(tagName, commits),
			PackageName:  pkg.Name,
			Prerelease:   version.IsPrerelease(next),
			Draft:        opts.Draft,
			DryRun:       opts.DryRun,
		})
	}

	if opts.DryRun {
		log.Info().Int("releases", len(results)).Msg("dry run, skipping all writes")
		return results, nil
	}

	var allBumped []string
	for i, pkg := range packages {
		bumped, err := o.bumper.Bump(ctx, o.root, []string{pkg.PackagePath}, results[i].Version)
		if err != nil {
			return nil, bumpError(err)
		}
		allBumped = append(allBumped, bumped...)
	}

	if err := o.commitManifests(allBumped, "publish "+joinTags(results)); err != nil {
		return nil, err
	}

	for _, result := range results {
		if err := o.repo.CreateTag(result.TagName, "Release "+result.TagName); err != nil {
			return nil, tagError(result.TagName, err)
		}

		if err := o.publish(ctx, info, result.TagName, result.ReleaseNotes, result); err != nil {
			return nil, err
		}
		log.Info().Str("tag", result.TagName).Msg("package release published")
	}

	if err := o.pushAll(ctx); err != nil {
		return nil, err
	}

	return results, nil
}

// commitsSinceLatestTag lists commits since the most recent tag. An empty tag
// set is the first-release state, not an error; zero commits ends the run.
func (o *Orchestrator) commitsSinceLatestTag() ([]gitrepo.Commit, error) {
	tags, err := o.repo.Tags()
	if err != nil {
		return nil, newError(KindRepository, "listing tags failed", err,
			"check that the directory is a git repository")
	}

	commits, err := o.repo.CommitsSince(tags.Latest)
	if err != nil {
		return nil, newError(KindRepository, "reading commit history failed", err,
			"check that the repository has at least one commit")
	}
	if len(commits) == 0 {
		return nil, newError(KindNoCommits,
			fmt.Sprintf("no commits since %s, nothing to release", tags.Latest), nil,
			"commit your changes before releasing")
	}

	return commits, nil
}

// resolveBump applies the auto-inference rule when no explicit type was
// requested: a feat commit promotes the bump to minor, anything else is a
// patch.
func (o *Orchestrator) resolveBump(opts Options, commits []gitrepo.Commit) version.ReleaseType {
	if opts.Type != "" {
		return opts.Type
	}

	for _, commit := range commits {
		if conventional.Classify(commit.Message) == conventional.TypeFeat {
			return version.ReleaseMinor
		}
	}

	return version.ReleasePatch
}

// changedFiles fetches the paths touched by every commit as one bounded
// parallel batch with all-or-nothing failure.
func (o *Orchestrator) changedFiles(ctx context.Context, commits []gitrepo.Commit) ([]string, error) {
	perCommit := make([][]string, len(commits))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLogReads)

	for i, commit := range commits {
		g.Go(func() error {
			files, err := o.repo.CommitFiles(commit.Hash)
			if err != nil {
				return err
			}
			perCommit[i] = files
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, newError(KindRepository, "listing changed files failed", err)
	}

	return lo.Uniq(lo.Flatten(perCommit)), nil
}

// affectedPackages correlates changed file paths against the configured
// workspaces, in workspace declaration order.
func (o *Orchestrator) affectedPackages(changedFiles []string) ([]ChangedPackage, error) {
	dirs, err := manifest.WorkspaceDirs(o.root, o.cfg.Workspaces)
	if err != nil {
		return nil, newError(KindRepository, "resolving workspaces failed", err,
			"check the workspaces globs in the project configuration")
	}

	var packages []ChangedPackage
	for _, dir := range dirs {
		rel, err := filepath.Rel(o.root, dir)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		if !touchesPath(changedFiles, rel) {
			continue
		}

		name, ver, err := o.bumper.PackageInfo(dir)
		if err != nil {
			return nil, bumpError(err)
		}

		packages = append(packages, ChangedPackage{
			Name:        name,
			Version:     ver,
			PackagePath: rel,
		})
	}

	return packages, nil
}

func touchesPath(files []string, dir string) bool {
	if dir == "." {
		return len(files) > 0
	}

	for _, file := range files {
		if file == dir || strings.HasPrefix(file, dir+"/") {
			return true
		}
	}

	return false
}

// commitManifests stages and commits the bumped manifest files.
func (o *Orchestrator) commitManifests(bumped []string, subject string) error {
	if len(bumped) == 0 {
		return nil
	}

	rels := make([]string, 0, len(bumped))
	for _, path := range bumped {
		rel, err := filepath.Rel(o.root, path)
		if err != nil {
			rel = path
		}
		rels = append(rels, filepath.ToSlash(rel))
	}

	if err := o.repo.AddFiles(rels); err != nil {
		return newError(KindRepository, "staging bumped manifests failed", err)
	}

	if err := o.repo.Commit("chore(release): " + subject); err != nil {
		return newError(KindRepository, "committing bumped manifests failed", err)
	}

	return nil
}

func (o *Orchestrator) publish(ctx context.Context, info gitrepo.RepoInfo, tagName, body string, result Result) error {
	_, err := o.publisher.CreateRelease(ctx, info.Owner, info.Repo, github.ReleaseRequest{
		TagName:    tagName,
		Name:       tagName,
		Body:       body,
		Draft:      result.Draft,
		Prerelease: result.Prerelease,
	})
	if err != nil {
		return newError(KindPublish, fmt.Sprintf("creating the GitHub release for %s failed", tagName), err,
			"the local tag and manifest changes were kept; delete the tag before retrying",
			"check the token's permissions on the repository")
	}

	return nil
}

func (o *Orchestrator) pushAll(ctx context.Context) error {
	if err := o.repo.PushTags(ctx); err != nil {
		return newError(KindRepository, "pushing tags failed", err,
			"push the tags manually with: git push --tags")
	}

	if err := o.repo.Push(ctx); err != nil {
		return newError(KindRepository, "pushing the release commit failed", err,
			"push the branch manually with: git push")
	}

	return nil
}

func repoInfoError(err error) *Error {
	switch {
	case errors.Is(err, gitrepo.ErrNoRemote):
		return newError(KindRepository, "no git remote is configured", err,
			"add a GitHub remote with: git remote add origin <url>")
	case errors.Is(err, gitrepo.ErrInvalidRemoteFormat):
		return newError(KindRepository, "the remote URL is not a GitHub repository", err,
			"only github.com remotes are supported")
	default:
		return newError(KindRepository, "resolving the repository failed", err)
	}
}

func bumpError(err error) *Error {
	if errors.Is(err, manifest.ErrNoVersionFiles) {
		return newError(KindNoVersionFiles, "no version files found in the configured workspaces", err,
			"check the workspaces globs in the project configuration",
			"for Python projects add a pyproject.toml, setup.py or __init__.py")
	}

	return newError(KindManifestBump, "bumping manifest files failed", err)
}

func tagError(tagName string, err error) *Error {
	if errors.Is(err, gitrepo.ErrTagExists) {
		return newError(KindRepository, fmt.Sprintf("tag %s already exists", tagName), err,
			"delete the stale tag with: git tag -d "+tagName,
			"a previous run may have failed after tagging; clean up before retrying")
	}

	return newError(KindRepository, fmt.Sprintf("creating tag %s failed", tagName), err)
}

func joinTags(results []Result) string {
	names := lo.Map(results, func(r Result, _ int) string { return r.TagName })
	return strings.Join(names, ", ")
}
