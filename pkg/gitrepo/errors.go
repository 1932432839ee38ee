package gitrepo

import "errors"

var (
	ErrRepositoryNotFound  = errors.New("repository not found")
	ErrNoRemote            = errors.New("no git remote configured")
	ErrInvalidRemoteFormat = errors.New("remote URL is not a GitHub repository")
	ErrTagExists           = errors.New("tag already exists")
	ErrLogFailed           = errors.New("reading commit log failed")
	ErrTagFailed           = errors.New("tag operation failed")
	ErrWorktreeFailed      = errors.New("worktree operation failed")
	ErrPushFailed          = errors.New("push failed")
)
