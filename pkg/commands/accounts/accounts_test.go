// pkg/commands/accounts/accounts_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: In-memory filesystem
// PURPOSE: Test per-account usage rows, totals and consistency problems

package accounts_test

import (
	"strings"
	"testing"

	"github.com/arthur-debert/drivepool/pkg/commands/accounts"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccounts_RowsAndTotals(t *testing.T) {
	env := testutil.NewTestEngine(t, 100, []string{"A", "B"}, nil)
	env.Upload(t, map[string]string{"/src/f.bin": strings.Repeat("f", 25)}, "d")

	// C is discovered after the ledger was saved
	testutil.WriteFiles(t, env.FS, map[string]string{env.Paths.AccountsDir() + "/C.json": "{}"})

	result, err := accounts.Accounts(accounts.AccountsOptions{Engine: env.Engine})
	require.NoError(t, err)

	require.Len(t, result.Rows, 3)
	assert.Equal(t, accounts.Row{ID: "A", Capacity: 100, Used: 25, Remaining: 75, Files: 1}, result.Rows[0])
	assert.Equal(t, accounts.Row{ID: "C", Capacity: 100, Remaining: 100, New: true}, result.Rows[2])
	assert.InDelta(t, 25.0, result.Rows[0].Percent(), 0.001)

	assert.Equal(t, int64(300), result.Total.Capacity)
	assert.Equal(t, int64(25), result.Total.Used)
	assert.Equal(t, 1, result.Total.Files)
	assert.Empty(t, result.Problems)
}

func TestAccounts_ReportsProblemsInsteadOfFailing(t *testing.T) {
	env := testutil.NewTestEngine(t, 100, nil, nil)
	testutil.WriteFiles(t, env.FS, map[string]string{
		env.Paths.LedgerFile(): `{"accounts": {"A": {"used_space": 9, "remaining_space": 1, "files": {"f": {"size": 3}}}}}`,
	})

	result, err := accounts.Accounts(accounts.AccountsOptions{Engine: env.Engine})
	require.NoError(t, err)
	require.Len(t, result.Problems, 1)
	assert.Contains(t, result.Problems[0], "used space 9")
}

func TestAccounts_UnparseableLedgerFails(t *testing.T) {
	env := testutil.NewTestEngine(t, 100, nil, nil)
	testutil.WriteFiles(t, env.FS, map[string]string{env.Paths.LedgerFile(): "nope"})

	_, err := accounts.Accounts(accounts.AccountsOptions{Engine: env.Engine})
	assert.True(t, errors.IsErrorCode(err, errors.ErrLedgerUnreadable))
}

func TestRow_PercentOfEmptyCapacity(t *testing.T) {
	assert.Equal(t, 0.0, accounts.Row{}.Percent())
}
