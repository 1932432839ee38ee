// Package conventional classifies commit messages by their conventional
// commit prefix and groups commits into changelog buckets.
package conventional

import (
	"regexp"

	"github.com/user/release-tools/pkg/gitrepo"
)

// Type is a conventional-commit category.
type Type string

const (
	TypeFeat     Type = "feat"
	TypeFix      Type = "fix"
	TypeDocs     Type = "docs"
	TypeStyle    Type = "style"
	TypeRefactor Type = "refactor"
	TypePerf     Type = "perf"
	TypeTest     Type = "test"
	TypeChore    Type = "chore"
	TypeRevert   Type = "revert"
	TypeOther    Type = "other"
)

// typePattern matches a conventional prefix at the start of the subject,
// case-sensitively, with an optional scope. Anything else classifies as
// "other".
var typePattern = regexp.MustCompile(`^(feat|fix|docs|style|refactor|perf|test|chore|revert)(\([^)]*\))?:`)

// Types returns every category in the fixed enumeration order used for
// rendering release notes.
func Types() []Type {
	return []Type{
		TypeFeat,
		TypeFix,
		TypeDocs,
		TypeStyle,
		TypeRefactor,
		TypePerf,
		TypeTest,
		TypeChore,
		TypeRevert,
		TypeOther,
	}
}

// Classify maps a commit message to its category.
func Classify(message string) Type {
	matches := typePattern.FindStringSubmatch(message)
	if matches == nil {
		return TypeOther
	}

	return Type(matches[1])
}

// GroupByType buckets commits by category. Every category key is present in
// the result even when its bucket is empty, and commits keep their input
// order within each bucket.
func GroupByType(commits []gitrepo.Commit) map[Type][]gitrepo.Commit {
	grouped := make(map[Type][]gitrepo.Commit, len(Types()))
	for _, t := range Types() {
		grouped[t] = []gitrepo.Commit{}
	}

	for _, commit := range commits {
		t := Classify(commit.Message)
		grouped[t] = append(grouped[t], commit)
	}

	return grouped
}
