package release

import (
	"fmt"
	"strings"
)

// Kind is the closed set of failure categories a release run can end in.
// Every core operation surfaces exactly one of these; nothing is retried.
type Kind string

const (
	KindAuthentication    Kind = "authentication"
	KindRepository        Kind = "repository"
	KindInvalidVersion    Kind = "invalid_version"
	KindManifestBump      Kind = "manifest_bump"
	KindNoVersionFiles    Kind = "no_version_files"
	KindPublish           Kind = "publish"
	KindNoCommits         Kind = "no_commits"
	KindNoPackagesChanged Kind = "no_packages_changed"
)

// Error is the single error shape of the release core: a machine-readable
// kind, a short message, and remediation hints the CLI renders for humans.
type Error struct {
	Kind    Kind
	Message string
	Hints   []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Remediation renders the hints as a bulleted block, empty when there are
// none.
func (e *Error) Remediation() string {
	if len(e.Hints) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, hint := range e.Hints {
		sb.WriteString("  - ")
		sb.WriteString(hint)
		sb.WriteString("\n")
	}

	return sb.String()
}

func newError(kind Kind, message string, err error, hints ...string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Hints:   hints,
		Err:     err,
	}
}
