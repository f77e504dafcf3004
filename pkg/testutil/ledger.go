package testutil

import (
	"testing"

	"github.com/arthur-debert/drivepool/pkg/ledger"
	"github.com/stretchr/testify/require"
)

// LedgerBuilder builds ledgers declaratively:
//
//	l := testutil.NewLedger(t).
//	    Account("sa-1", 100).
//	    File("sa-1", "movies/a.mkv", 40).
//	    Build()
type LedgerBuilder struct {
	t *testing.T
	l *ledger.Ledger
}

// NewLedger starts an empty ledger
func NewLedger(t *testing.T) *LedgerBuilder {
	t.Helper()
	return &LedgerBuilder{t: t, l: ledger.New()}
}

// Account adds an empty account with the given capacity
func (b *LedgerBuilder) Account(id string, capacity int64) *LedgerBuilder {
	b.t.Helper()
	added, err := b.l.AddAccount(id, capacity)
	require.NoError(b.t, err)
	require.True(b.t, added, "account %s added twice", id)
	return b
}

// File places a file without a content hash
func (b *LedgerBuilder) File(accountID, path string, size int64) *LedgerBuilder {
	return b.HashedFile(accountID, path, size, "")
}

// HashedFile places a file with a content hash
func (b *LedgerBuilder) HashedFile(accountID, path string, size int64, hash string) *LedgerBuilder {
	b.t.Helper()
	require.NoError(b.t, b.l.Place(accountID, path, ledger.FileRecord{Size: size, ContentHash: hash}))
	return b
}

// Build returns the ledger
func (b *LedgerBuilder) Build() *ledger.Ledger {
	return b.l
}

// AssertConserved checks that every account's used + remaining still equals
// the capacity it was created with, and that the ledger validates.
func AssertConserved(t *testing.T, l *ledger.Ledger, capacities map[string]int64) {
	t.Helper()
	require.Empty(t, l.Validate())
	for id, capacity := range capacities {
		a, ok := l.Account(id)
		require.True(t, ok, "account %s missing", id)
		require.Equal(t, capacity, a.UsedSpace+a.RemainingSpace, "account %s capacity drifted", id)
	}
}
