package gitrepo

import "time"

// Commit is a single commit read from repository history. Commits are never
// constructed by this tool, only read.
type Commit struct {
	Hash        string
	Message     string
	AuthorName  string
	AuthorEmail string
	Date        time.Time
}

// RepoInfo identifies a repository on GitHub.
type RepoInfo struct {
	Owner string
	Repo  string
}

// Tags holds every tag name in the repository plus the most recently created
// one. Latest is empty when the repository has no tags yet, which is the
// normal first-release state.
type Tags struct {
	All    []string
	Latest string
}
