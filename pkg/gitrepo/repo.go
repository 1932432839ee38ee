package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
)

// githubRemotePattern accepts the https, ssh and scp-like remote forms for
// github.com, with an optional trailing ".git".
var githubRemotePattern = regexp.MustCompile(`^(?:https?://|ssh://git@|git@)github\.com[:/]([^/]+)/([^/]+?)(?:\.git)?/?$`)

// Repository wraps a local git repository and exposes the read and write
// operations a release run needs.
type Repository struct {
	repo *git.Repository
	path string
}

// Open opens the repository at path.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepositoryNotFound, err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// RemoteURL returns the first URL of the "origin" remote, falling back to the
// first configured remote when origin is absent.
func (r *Repository) RemoteURL() (string, error) {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoRemote, err)
	}
	if len(remotes) == 0 {
		return "", ErrNoRemote
	}

	selected := remotes[0]
	for _, remote := range remotes {
		if remote.Config().Name == "origin" {
			selected = remote
			break
		}
	}

	urls := selected.Config().URLs
	if len(urls) == 0 {
		return "", ErrNoRemote
	}

	return urls[0], nil
}

// RepoInfo parses the GitHub owner and repository name out of the remote URL.
// Non-GitHub hosts are rejected.
func (r *Repository) RepoInfo() (RepoInfo, error) {
	url, err := r.RemoteURL()
	if err != nil {
		return RepoInfo{}, err
	}

	matches := githubRemotePattern.FindStringSubmatch(url)
	if matches == nil || matches[1] == "" || matches[2] == "" {
		return RepoInfo{}, fmt.Errorf("%w: %s", ErrInvalidRemoteFormat, url)
	}

	return RepoInfo{Owner: matches[1], Repo: matches[2]}, nil
}

// Tags lists every tag plus the most recently created one. An empty result is
// valid and signals a first release.
func (r *Repository) Tags() (Tags, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return Tags{}, fmt.Errorf("%w: %w", ErrTagFailed, err)
	}

	var (
		result     Tags
		latestTime time.Time
	)

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()

		var when time.Time
		if tagObj, tagErr := r.repo.TagObject(ref.Hash()); tagErr == nil {
			when = tagObj.Tagger.When
		} else {
			commit, commitErr := r.repo.CommitObject(ref.Hash())
			if commitErr != nil {
				// Tag pointing at a non-commit object, skip it.
				return nil
			}
			when = commit.Committer.When
		}

		result.All = append(result.All, name)
		if result.Latest == "" || when.After(latestTime) {
			result.Latest = name
			latestTime = when
		}

		return nil
	})
	if err != nil {
		return Tags{}, fmt.Errorf("%w: %w", ErrTagFailed, err)
	}

	return result, nil
}

// CommitsSince returns commits reachable from HEAD, newest first. When from
// names an existing revision, history stops there exclusively. An empty
// result with a valid from is the "nothing to release" state; the caller
// decides whether that is an error.
func (r *Repository) CommitsSince(from string) ([]Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogFailed, err)
	}

	var stopAt plumbing.Hash
	if from != "" {
		rev, revErr := r.repo.ResolveRevision(plumbing.Revision(from))
		if revErr != nil {
			return nil, fmt.Errorf("%w: resolving %q: %w", ErrLogFailed, from, revErr)
		}
		stopAt = *rev
	}

	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogFailed, err)
	}
	defer iter.Close()

	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if from != "" && c.Hash == stopAt {
			return errStopIteration
		}

		commits = append(commits, Commit{
			Hash:        c.Hash.String(),
			Message:     c.Message,
			AuthorName:  c.Author.Name,
			AuthorEmail: c.Author.Email,
			Date:        c.Author.When,
		})
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, fmt.Errorf("%w: %w", ErrLogFailed, err)
	}

	return commits, nil
}

var errStopIteration = errors.New("stop iteration")

// CommitFiles lists the paths touched by one commit, diffed against its first
// parent. A root commit reports every path in its tree.
func (r *Repository) CommitFiles(hash string) ([]string, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogFailed, err)
	}

	stats, err := commit.Stats()
	if err != nil {
		return nil, fmt.Errorf("%w: stats for %s: %w", ErrLogFailed, hash, err)
	}

	files := make([]string, 0, len(stats))
	for _, stat := range stats {
		files = append(files, stat.Name)
	}

	return files, nil
}

// TagExists reports whether a tag with the given name already exists.
func (r *Repository) TagExists(name string) (bool, error) {
	_, err := r.repo.Tag(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, git.ErrTagNotFound) {
		return false, nil
	}

	return false, fmt.Errorf("%w: %w", ErrTagFailed, err)
}

// CreateTag creates an annotated tag at HEAD when a message is given, a
// lightweight one otherwise. Creating a tag that already exists is an error;
// callers are expected to check first so a re-run fails before mutating
// anything else.
func (r *Repository) CreateTag(name, message string) error {
	exists, err := r.TagExists(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrTagExists, name)
	}

	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTagFailed, err)
	}

	var opts *git.CreateTagOptions
	if message != "" {
		opts = &git.CreateTagOptions{Message: message}
	}

	if _, err := r.repo.CreateTag(name, head.Hash(), opts); err != nil {
		return fmt.Errorf("%w: %w", ErrTagFailed, err)
	}

	return nil
}

// AddFiles stages the given paths.
func (r *Repository) AddFiles(paths []string) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWorktreeFailed, err)
	}

	for _, path := range paths {
		if _, err := worktree.Add(path); err != nil {
			return fmt.Errorf("%w: adding %s: %w", ErrWorktreeFailed, path, err)
		}
	}

	return nil
}

// Commit records staged changes.
func (r *Repository) Commit(message string) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWorktreeFailed, err)
	}

	if _, err := worktree.Commit(message, &git.CommitOptions{}); err != nil {
		return fmt.Errorf("%w: %w", ErrWorktreeFailed, err)
	}

	return nil
}

// Push pushes the current branch to origin.
func (r *Repository) Push(ctx context.Context) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{RemoteName: "origin"})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("%w: %w", ErrPushFailed, err)
	}

	return nil
}

// PushTags pushes all local tags to origin.
func (r *Repository) PushTags(ctx context.Context) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{"refs/tags/*:refs/tags/*"},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("%w: %w", ErrPushFailed, err)
	}

	return nil
}
