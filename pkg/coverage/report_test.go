package coverage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/orgmatch/pkg/alias"
	"github.com/otherjamesbrown/orgmatch/pkg/directory"
	"github.com/otherjamesbrown/orgmatch/pkg/logging"
	"github.com/otherjamesbrown/orgmatch/pkg/match"
)

func testDirectory(t *testing.T) *directory.Directory {
	t.Helper()
	root := &directory.OrgNode{
		Name: "Olivia Chen",
		Children: []*directory.OrgNode{
			{
				Name:          "Robert Smith",
				DirectReports: 1,
				Children:      []*directory.OrgNode{{Name: "Priya Nair"}},
			},
		},
	}
	b := directory.NewBuilder("x.com", directory.WithBuilderLogger(logging.NewNopLogger()))
	dir, err := b.Build(context.Background(), root)
	require.NoError(t, err)
	return dir
}

func TestBuild_NoDirectory(t *testing.T) {
	_, err := Build(nil, nil, alias.NewStore())
	assert.ErrorIs(t, err, match.ErrNoDirectory)
}

func TestBuild_DistinguishesAliasMissingFromAliasWrong(t *testing.T) {
	dir := testDirectory(t)
	store := alias.NewStore()
	store.Set("bob@vendor.com", "rsmith@x.com")     // good alias
	store.Set("carol@vendor.com", "departed@x.com") // stale alias

	report, err := Build([]match.ExternalIdentity{
		{ID: "RSmith@X.com", DisplayName: "Robert Smith"}, // matched directly
		{ID: "bob@vendor.com", DisplayName: "Bob Smith"},  // matched via alias
		{ID: "carol@vendor.com", DisplayName: "Carol Ng"}, // alias wrong
		{ID: "dave@vendor.com", DisplayName: "Dave Hall"}, // alias missing
	}, dir, store)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Matched)
	assert.Equal(t, 2, report.Unmatched)
	assert.Equal(t, 50, report.Percent)
	require.Len(t, report.Gaps, 2)

	carol := report.Gaps[0]
	assert.Equal(t, "carol@vendor.com", carol.ExternalID)
	assert.Equal(t, "departed@x.com", carol.Resolved)
	assert.True(t, carol.Aliased)
	assert.False(t, carol.InDirectory)

	dave := report.Gaps[1]
	assert.Equal(t, "dave@vendor.com", dave.ExternalID)
	assert.Equal(t, "dave@vendor.com", dave.Resolved)
	assert.False(t, dave.Aliased)
}

func TestBuild_EmptyInputIsFullCoverage(t *testing.T) {
	report, err := Build(nil, testDirectory(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 100, report.Percent)
	assert.Empty(t, report.Gaps)
	assert.NotEmpty(t, report.RunID)
}

func TestReport_String(t *testing.T) {
	dir := testDirectory(t)
	report, err := Build([]match.ExternalIdentity{
		{ID: "ghost@vendor.com", DisplayName: "Ghost Writer"},
	}, dir, nil)
	require.NoError(t, err)

	out := report.String()
	assert.True(t, strings.Contains(out, "ghost@vendor.com"), "gap identifier should be listed: %s", out)
	assert.True(t, strings.Contains(out, "no alias recorded"), "gap reason should be listed: %s", out)
}

func TestAliasStore_IsKnownAgainstDirectory(t *testing.T) {
	dir := testDirectory(t)
	store := alias.NewStore()
	store.Set("bob@vendor.com", "rsmith@x.com")

	assert.True(t, store.IsKnown("RSmith@X.com", dir))
	assert.True(t, store.IsKnown("bob@vendor.com", dir))
	assert.False(t, store.IsKnown("nobody@vendor.com", dir))
	assert.False(t, store.IsKnown("bob@vendor.com", nil))
}
