// Package notes renders a Markdown changelog from classified commits.
package notes

import (
	"fmt"
	"strings"

	"github.com/user/release-tools/pkg/conventional"
	"github.com/user/release-tools/pkg/gitrepo"
)

var sectionTitles = map[conventional.Type]string{
	conventional.TypeFeat:     "Features",
	conventional.TypeFix:      "Bug Fixes",
	conventional.TypeDocs:     "Documentation",
	conventional.TypeStyle:    "Styles",
	conventional.TypeRefactor: "Code Refactoring",
	conventional.TypePerf:     "Performance Improvements",
	conventional.TypeTest:     "Tests",
	conventional.TypeChore:    "Chores",
	conventional.TypeRevert:   "Reverts",
	conventional.TypeOther:    "Other Changes",
}

// Generate renders the release notes for one tag. Sections follow the fixed
// category order, empty sections are omitted, and commits keep their input
// order within a section.
func Generate(tagName string, commits []gitrepo.Commit) string {
	grouped := conventional.GroupByType(commits)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n", tagName))

	for _, t := range conventional.Types() {
		bucket := grouped[t]
		if len(bucket) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("\n### %s\n\n", sectionTitles[t]))
		for _, commit := range bucket {
			sb.WriteString(fmt.Sprintf("- %s by @%s\n", subject(commit.Message), author(commit)))
		}
	}

	return sb.String()
}

// subject is the first line of the commit message.
func subject(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return strings.TrimSpace(message[:i])
	}

	return strings.TrimSpace(message)
}

func author(c gitrepo.Commit) string {
	if c.AuthorName != "" {
		return c.AuthorName
	}

	return c.AuthorEmail
}
