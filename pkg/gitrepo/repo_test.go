package gitrepo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v6"
	gitconfig "github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/user/release-tools/pkg/gitrepo"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func signature(when time.Time) *object.Signature {
	return &object.Signature{
		Name:  "Test Author",
		Email: "test@example.com",
		When:  when,
	}
}

func initRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()

	path := t.TempDir()
	repo, err := gogit.PlainInit(path, false)
	require.NoError(t, err)

	// A committer identity so worktree commits work without global config.
	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.User.Name = "Test Author"
	cfg.User.Email = "test@example.com"
	require.NoError(t, repo.SetConfig(cfg))

	return path, repo
}

func commitFile(t *testing.T, path string, repo *gogit.Repository, name, content, message string, when time.Time) plumbing.Hash {
	t.Helper()

	worktree, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(path, name)), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, name), []byte(content), 0644))

	_, err = worktree.Add(name)
	require.NoError(t, err)

	hash, err := worktree.Commit(message, &gogit.CommitOptions{
		Author:    signature(when),
		Committer: signature(when),
	})
	require.NoError(t, err)

	return hash
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := gitrepo.Open(t.TempDir())

	require.ErrorIs(t, err, gitrepo.ErrRepositoryNotFound)
}

func TestRepoInfo(t *testing.T) {
	cases := []struct {
		name      string
		remoteURL string
		wantOwner string
		wantRepo  string
		wantErr   error
	}{
		{name: "https with .git", remoteURL: "https://github.com/acme/widget.git", wantOwner: "acme", wantRepo: "widget"},
		{name: "https without .git", remoteURL: "https://github.com/acme/widget", wantOwner: "acme", wantRepo: "widget"},
		{name: "scp-like ssh", remoteURL: "git@github.com:acme/widget.git", wantOwner: "acme", wantRepo: "widget"},
		{name: "ssh scheme", remoteURL: "ssh://git@github.com/acme/widget.git", wantOwner: "acme", wantRepo: "widget"},
		{name: "non-github host", remoteURL: "https://gitlab.com/acme/widget.git", wantErr: gitrepo.ErrInvalidRemoteFormat},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path, raw := initRepo(t)
			_, err := raw.CreateRemote(&gitconfig.RemoteConfig{
				Name: "origin",
				URLs: []string{c.remoteURL},
			})
			require.NoError(t, err)

			repo, err := gitrepo.Open(path)
			require.NoError(t, err)

			info, err := repo.RepoInfo()
			if c.wantErr != nil {
				require.ErrorIs(t, err, c.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, c.wantOwner, info.Owner)
			require.Equal(t, c.wantRepo, info.Repo)
		})
	}
}

func TestRepoInfo_NoRemote(t *testing.T) {
	path, _ := initRepo(t)

	repo, err := gitrepo.Open(path)
	require.NoError(t, err)

	_, err = repo.RepoInfo()
	require.ErrorIs(t, err, gitrepo.ErrNoRemote)
}

func TestTags_EmptyIsFirstRelease(t *testing.T) {
	path, raw := initRepo(t)
	commitFile(t, path, raw, "file.txt", "one", "feat: initial", baseTime)

	repo, err := gitrepo.Open(path)
	require.NoError(t, err)

	tags, err := repo.Tags()
	require.NoError(t, err)
	require.Empty(t, tags.All)
	require.Empty(t, tags.Latest)
}

func TestTags_LatestByCreationTime(t *testing.T) {
	path, raw := initRepo(t)
	first := commitFile(t, path, raw, "a.txt", "one", "feat: first", baseTime)
	second := commitFile(t, path, raw, "b.txt", "two", "feat: second", baseTime.Add(time.Hour))

	_, err := raw.CreateTag("v1.0.0", first, nil)
	require.NoError(t, err)
	_, err = raw.CreateTag("v1.1.0", second, nil)
	require.NoError(t, err)

	repo, err := gitrepo.Open(path)
	require.NoError(t, err)

	tags, err := repo.Tags()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"v1.0.0", "v1.1.0"}, tags.All)
	require.Equal(t, "v1.1.0", tags.Latest)
}

func TestCommitsSince(t *testing.T) {
	path, raw := initRepo(t)
	first := commitFile(t, path, raw, "a.txt", "one", "feat: first", baseTime)
	commitFile(t, path, raw, "b.txt", "two", "fix: second", baseTime.Add(time.Hour))
	commitFile(t, path, raw, "c.txt", "three", "chore: third", baseTime.Add(2*time.Hour))

	_, err := raw.CreateTag("v1.0.0", first, nil)
	require.NoError(t, err)

	repo, err := gitrepo.Open(path)
	require.NoError(t, err)

	t.Run("bounded by tag, exclusive", func(t *testing.T) {
		commits, err := repo.CommitsSince("v1.0.0")
		require.NoError(t, err)
		require.Len(t, commits, 2)
		require.Equal(t, "chore: third", commits[0].Message)
		require.Equal(t, "fix: second", commits[1].Message)
		require.Equal(t, "Test Author", commits[0].AuthorName)
		require.Equal(t, "test@example.com", commits[0].AuthorEmail)
	})

	t.Run("unbounded returns full history", func(t *testing.T) {
		commits, err := repo.CommitsSince("")
		require.NoError(t, err)
		require.Len(t, commits, 3)
	})

	t.Run("unknown ref fails", func(t *testing.T) {
		_, err := repo.CommitsSince("does-not-exist")
		require.ErrorIs(t, err, gitrepo.ErrLogFailed)
	})
}

func TestCommitsSince_EmptyResultIsValid(t *testing.T) {
	path, raw := initRepo(t)
	head := commitFile(t, path, raw, "a.txt", "one", "feat: first", baseTime)

	_, err := raw.CreateTag("v1.0.0", head, nil)
	require.NoError(t, err)

	repo, err := gitrepo.Open(path)
	require.NoError(t, err)

	commits, err := repo.CommitsSince("v1.0.0")
	require.NoError(t, err)
	require.Empty(t, commits)
}

func TestCommitFiles(t *testing.T) {
	path, raw := initRepo(t)
	root := commitFile(t, path, raw, "a.txt", "one", "feat: first", baseTime)
	second := commitFile(t, path, raw, filepath.Join("packages", "api", "index.js"), "code", "feat: api", baseTime.Add(time.Hour))

	repo, err := gitrepo.Open(path)
	require.NoError(t, err)

	files, err := repo.CommitFiles(second.String())
	require.NoError(t, err)
	require.Equal(t, []string{"packages/api/index.js"}, files)

	rootFiles, err := repo.CommitFiles(root.String())
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt"}, rootFiles)
}

func TestCreateTag_CheckThenCreate(t *testing.T) {
	path, raw := initRepo(t)
	commitFile(t, path, raw, "a.txt", "one", "feat: first", baseTime)

	repo, err := gitrepo.Open(path)
	require.NoError(t, err)

	require.NoError(t, repo.CreateTag("v1.0.0", ""))

	exists, err := repo.TagExists("v1.0.0")
	require.NoError(t, err)
	require.True(t, exists)

	err = repo.CreateTag("v1.0.0", "")
	require.ErrorIs(t, err, gitrepo.ErrTagExists)
}

func TestAddFilesAndCommit(t *testing.T) {
	path, raw := initRepo(t)
	commitFile(t, path, raw, "package.json", `{"version": "1.0.0"}`, "feat: initial", baseTime)

	require.NoError(t, os.WriteFile(filepath.Join(path, "package.json"), []byte(`{"version": "1.1.0"}`), 0644))

	repo, err := gitrepo.Open(path)
	require.NoError(t, err)

	require.NoError(t, repo.AddFiles([]string{"package.json"}))
	require.NoError(t, repo.Commit("chore(release): v1.1.0"))

	commits, err := repo.CommitsSince("")
	require.NoError(t, err)
	require.Len(t, commits, 2)
	require.Equal(t, "chore(release): v1.1.0", commits[0].Message)
}

func TestPush_NoRemoteFails(t *testing.T) {
	path, raw := initRepo(t)
	commitFile(t, path, raw, "a.txt", "one", "feat: first", baseTime)

	repo, err := gitrepo.Open(path)
	require.NoError(t, err)

	require.ErrorIs(t, repo.PushTags(context.Background()), gitrepo.ErrPushFailed)
}
