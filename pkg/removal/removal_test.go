// pkg/removal/removal_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test prefix removal, accounting and batching

package removal_test

import (
	"testing"

	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/ledger"
	"github.com/arthur-debert/drivepool/pkg/removal"
	"github.com/arthur-debert/drivepool/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_ScenarioE_OnlyMatchingPrefix(t *testing.T) {
	l := testutil.NewLedger(t).
		Account("A", 100).File("A", "a/b/x", 10).
		Account("B", 100).File("B", "a/c/y", 20).
		Build()

	res, err := removal.Plan(l, "a/b")
	require.NoError(t, err)

	assert.Equal(t, []removal.Batch{{AccountID: "A", Paths: []string{"a/b/x"}, Bytes: 10}}, res.Batches)
	assert.False(t, l.Contains("a/b/x"))
	assert.True(t, l.Contains("a/c/y"))

	b, _ := l.Account("B")
	assert.Equal(t, int64(20), b.UsedSpace)
	assert.Equal(t, int64(80), b.RemainingSpace)
	testutil.AssertConserved(t, l, map[string]int64{"A": 100, "B": 100})
}

func TestPlan_PrefixIsNotSegmentAware(t *testing.T) {
	l := testutil.NewLedger(t).
		Account("A", 100).File("A", "a/b/x", 1).File("A", "a/bc", 2).File("A", "a/d", 3).
		Build()

	res, err := removal.Plan(l, "a/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b/x", "a/bc"}, res.Batches[0].Paths)

	l2 := testutil.NewLedger(t).Account("A", 100).File("A", "a/b/x", 1).File("A", "a/bc", 2).Build()
	res, err = removal.Plan(l2, "a/b/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b/x"}, res.Batches[0].Paths)
}

func TestPlan_NothingToRemove(t *testing.T) {
	l := testutil.NewLedger(t).Account("A", 100).File("A", "keep", 5).Build()
	before := l.Clone()

	res, err := removal.Plan(l, "missing/")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNothingToRemove))
	require.NotNil(t, res)
	assert.Empty(t, res.Batches)
	assert.Equal(t, before.Entries(), l.Entries())
}

func TestPlan_BatchesSortedAcrossAccounts(t *testing.T) {
	l := testutil.NewLedger(t).
		Account("zeta", 100).File("zeta", "m/2", 2).File("zeta", "m/1", 1).
		Account("alpha", 100).File("alpha", "m/9", 9).
		Build()

	res, err := removal.Plan(l, "m/")
	require.NoError(t, err)

	assert.Equal(t, []removal.Batch{
		{AccountID: "alpha", Paths: []string{"m/9"}, Bytes: 9},
		{AccountID: "zeta", Paths: []string{"m/1", "m/2"}, Bytes: 3},
	}, res.Batches)
	assert.Equal(t, 3, res.Files())
	assert.Equal(t, int64(12), res.Bytes())
	assert.Empty(t, l.Entries())
}

func TestPlan_EmptyPrefixRemovesEverything(t *testing.T) {
	l := testutil.NewLedger(t).Account("A", 10).File("A", "x", 4).Build()
	res, err := removal.Plan(l, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Files())
}

func TestPlaceThenRemove_RestoresUsage(t *testing.T) {
	l := testutil.NewLedger(t).Account("A", 100).File("A", "pre", 30).Build()
	a, _ := l.Account("A")
	used, remaining := a.UsedSpace, a.RemainingSpace

	require.NoError(t, l.Place("A", "dst/new.bin", ledger.FileRecord{Size: 45}))
	_, err := removal.Plan(l, "dst/new.bin")
	require.NoError(t, err)

	assert.Equal(t, used, a.UsedSpace)
	assert.Equal(t, remaining, a.RemainingSpace)
}

func TestSelect_DoesNotMutate(t *testing.T) {
	l := testutil.NewLedger(t).Account("A", 10).File("A", "x/1", 4).Build()
	batches := removal.Select(l, "x/")
	require.Len(t, batches, 1)
	assert.True(t, l.Contains("x/1"))
}
