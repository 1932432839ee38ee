package conventional_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/release-tools/pkg/conventional"
	"github.com/user/release-tools/pkg/gitrepo"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    conventional.Type
	}{
		{name: "feat", message: "feat: add flag", want: conventional.TypeFeat},
		{name: "feat with scope", message: "feat(cli): add flag", want: conventional.TypeFeat},
		{name: "fix", message: "fix: handle empty input", want: conventional.TypeFix},
		{name: "docs", message: "docs: update readme", want: conventional.TypeDocs},
		{name: "style", message: "style: gofmt", want: conventional.TypeStyle},
		{name: "refactor", message: "refactor(core): split parser", want: conventional.TypeRefactor},
		{name: "perf", message: "perf: cache lookups", want: conventional.TypePerf},
		{name: "test", message: "test: cover edge cases", want: conventional.TypeTest},
		{name: "chore", message: "chore: bump deps", want: conventional.TypeChore},
		// The revert prefix was historically declared but never matched;
		// the pattern recognizes it now.
		{name: "revert", message: "revert: feat: add flag", want: conventional.TypeRevert},
		{name: "revert with scope", message: "revert(cli): feat: add flag", want: conventional.TypeRevert},
		{name: "no prefix", message: "oops no prefix", want: conventional.TypeOther},
		{name: "unknown prefix", message: "feature: looks close but is not", want: conventional.TypeOther},
		{name: "uppercase is not matched", message: "Feat: add flag", want: conventional.TypeOther},
		{name: "prefix not at start", message: "my feat: thing", want: conventional.TypeOther},
		{name: "missing colon", message: "feat add flag", want: conventional.TypeOther},
		{name: "empty scope", message: "fix(): patch", want: conventional.TypeFix},
		{name: "empty message", message: "", want: conventional.TypeOther},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, conventional.Classify(c.message))
		})
	}
}

func TestGroupByType_AllKeysPresentWhenEmpty(t *testing.T) {
	grouped := conventional.GroupByType(nil)

	require.Len(t, grouped, 10)
	for _, typ := range conventional.Types() {
		bucket, ok := grouped[typ]
		require.True(t, ok, "missing bucket for %s", typ)
		require.Empty(t, bucket)
	}
}

func TestGroupByType_PreservesInputOrder(t *testing.T) {
	commits := []gitrepo.Commit{
		{Hash: "a", Message: "feat: first"},
		{Hash: "b", Message: "fix: broken"},
		{Hash: "c", Message: "feat(cli): second"},
		{Hash: "d", Message: "no prefix here"},
	}

	grouped := conventional.GroupByType(commits)

	require.Len(t, grouped[conventional.TypeFeat], 2)
	require.Equal(t, "a", grouped[conventional.TypeFeat][0].Hash)
	require.Equal(t, "c", grouped[conventional.TypeFeat][1].Hash)
	require.Len(t, grouped[conventional.TypeFix], 1)
	require.Len(t, grouped[conventional.TypeOther], 1)
	require.Empty(t, grouped[conventional.TypeChore])
}
