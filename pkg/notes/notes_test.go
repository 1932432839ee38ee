package notes_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/release-tools/pkg/gitrepo"
	"github.com/user/release-tools/pkg/notes"
)

func TestGenerate_SectionsAndOrder(t *testing.T) {
	commits := []gitrepo.Commit{
		{Message: "feat: x", AuthorName: "alice"},
		{Message: "fix: y", AuthorName: "bob"},
		{Message: "feat(cli): z", AuthorName: "alice"},
	}

	got := notes.Generate("v1.1.0", commits)

	require.True(t, strings.HasPrefix(got, "## v1.1.0\n"))
	require.Contains(t, got, "### Features\n\n- feat: x by @alice\n- feat(cli): z by @alice\n")
	require.Contains(t, got, "### Bug Fixes\n\n- fix: y by @bob\n")

	// Features renders before Bug Fixes, matching the category order.
	require.Less(t, strings.Index(got, "### Features"), strings.Index(got, "### Bug Fixes"))
}

func TestGenerate_OmitsEmptySections(t *testing.T) {
	commits := []gitrepo.Commit{
		{Message: "fix: y", AuthorName: "bob"},
	}

	got := notes.Generate("v1.0.1", commits)

	require.Contains(t, got, "### Bug Fixes")
	require.NotContains(t, got, "### Features")
	require.NotContains(t, got, "### Chores")
	require.NotContains(t, got, "### Other Changes")
}

func TestGenerate_UnclassifiedFallsIntoOtherChanges(t *testing.T) {
	commits := []gitrepo.Commit{
		{Message: "tweak things", AuthorName: "carol"},
	}

	got := notes.Generate("v1.0.1", commits)

	require.Contains(t, got, "### Other Changes\n\n- tweak things by @carol\n")
}

func TestGenerate_AuthorFallsBackToEmail(t *testing.T) {
	commits := []gitrepo.Commit{
		{Message: "fix: y", AuthorEmail: "bob@example.com"},
	}

	got := notes.Generate("v1.0.1", commits)

	require.Contains(t, got, "- fix: y by @bob@example.com")
}

func TestGenerate_UsesSubjectLineOnly(t *testing.T) {
	commits := []gitrepo.Commit{
		{Message: "feat: x\n\nlong body describing the change", AuthorName: "alice"},
	}

	got := notes.Generate("v1.1.0", commits)

	require.Contains(t, got, "- feat: x by @alice\n")
	require.NotContains(t, got, "long body")
}
