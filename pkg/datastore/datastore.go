package datastore

import (
	"github.com/arthur-debert/drivepool/pkg/ledger"
	"github.com/arthur-debert/drivepool/pkg/registry"
)

// LedgerStore loads and saves the ledger document
type LedgerStore interface {
	// Load reads the ledger. A missing file is an empty ledger; a file that
	// cannot be parsed or breaks the accounting invariants is
	// ErrLedgerUnreadable and must abort the run.
	Load() (*ledger.Ledger, error)

	// Inspect reads the ledger like Load but returns invariant violations
	// instead of failing on them. Nothing built from an inspected ledger
	// may be saved.
	Inspect() (*ledger.Ledger, []error, error)

	// EnsureAccounts adds a zero-usage account for every spec whose id the
	// ledger does not know yet and returns the ids it added.
	EnsureAccounts(l *ledger.Ledger, specs []registry.AccountSpec) ([]string, error)

	// Save backs up the current file, then replaces it atomically. It
	// returns the backup path, empty when there was no prior file.
	Save(l *ledger.Ledger) (backupPath string, err error)

	// Path returns the ledger file location
	Path() string
}
