package ledger

import (
	"encoding/json"
	"sort"

	"github.com/arthur-debert/drivepool/pkg/errors"
)

// FileRecord is what the ledger remembers about a placed file. Records are
// never mutated in place; a size change means release and place again.
type FileRecord struct {
	Size        int64  `json:"size"`
	ContentHash string `json:"md5,omitempty"`
}

// Account is a fixed-capacity destination.
type Account struct {
	ID             string                `json:"-"`
	UsedSpace      int64                 `json:"used_space"`
	RemainingSpace int64                 `json:"remaining_space"`
	Files          map[string]FileRecord `json:"files"`
}

// Capacity is the account's total size. It is not stored separately: the
// ledger keeps used and remaining in step so their sum never changes.
func (a *Account) Capacity() int64 {
	return a.UsedSpace + a.RemainingSpace
}

// FileCount returns the number of files placed on the account
func (a *Account) FileCount() int {
	return len(a.Files)
}

// Paths returns the account's destination paths in sorted order
func (a *Account) Paths() []string {
	paths := make([]string, 0, len(a.Files))
	for p := range a.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (a *Account) clone() *Account {
	files := make(map[string]FileRecord, len(a.Files))
	for p, rec := range a.Files {
		files[p] = rec
	}
	return &Account{
		ID:             a.ID,
		UsedSpace:      a.UsedSpace,
		RemainingSpace: a.RemainingSpace,
		Files:          files,
	}
}

// Ledger is the root aggregate: account id -> Account.
type Ledger struct {
	accounts map[string]*Account
}

// New returns an empty ledger
func New() *Ledger {
	return &Ledger{accounts: make(map[string]*Account)}
}

// Len returns the number of accounts
func (l *Ledger) Len() int {
	return len(l.accounts)
}

// Account looks up an account by id
func (l *Ledger) Account(id string) (*Account, bool) {
	a, ok := l.accounts[id]
	return a, ok
}

// AccountIDs returns every account id in ascending order
func (l *Ledger) AccountIDs() []string {
	ids := make([]string, 0, len(l.accounts))
	for id := range l.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Accounts returns every account ordered by id
func (l *Ledger) Accounts() []*Account {
	ids := l.AccountIDs()
	out := make([]*Account, len(ids))
	for i, id := range ids {
		out[i] = l.accounts[id]
	}
	return out
}

// AddAccount inserts a fresh, empty account. It reports false and leaves the
// ledger untouched when the id is already present.
func (l *Ledger) AddAccount(id string, capacity int64) (bool, error) {
	if id == "" {
		return false, errors.New(errors.ErrInvalidInput, "account id cannot be empty")
	}
	if capacity < 0 {
		return false, errors.Newf(errors.ErrInvalidInput, "account %s: capacity cannot be negative", id)
	}
	if _, exists := l.accounts[id]; exists {
		return false, nil
	}
	l.accounts[id] = &Account{
		ID:             id,
		UsedSpace:      0,
		RemainingSpace: capacity,
		Files:          make(map[string]FileRecord),
	}
	return true, nil
}

// Owner finds the account holding a destination path
func (l *Ledger) Owner(path string) (string, FileRecord, bool) {
	for id, a := range l.accounts {
		if rec, ok := a.Files[path]; ok {
			return id, rec, true
		}
	}
	return "", FileRecord{}, false
}

// Contains reports whether any account holds the destination path
func (l *Ledger) Contains(path string) bool {
	_, _, ok := l.Owner(path)
	return ok
}

// Place records a file on an account and moves its size from remaining to
// used. Nothing changes when an error is returned.
func (l *Ledger) Place(accountID, path string, rec FileRecord) error {
	if rec.Size < 0 {
		return errors.Newf(errors.ErrInvalidInput, "file %s: size cannot be negative", path).
			WithDetail("size", rec.Size)
	}
	a, ok := l.accounts[accountID]
	if !ok {
		return errors.Newf(errors.ErrAccountNotFound, "account %s not found in ledger", accountID)
	}
	if owner, _, exists := l.Owner(path); exists {
		return errors.Newf(errors.ErrDestinationConflict, "destination %s already placed on %s", path, owner).
			WithDetail("account", owner)
	}
	if a.RemainingSpace < rec.Size {
		return errors.Newf(errors.ErrInsufficientSpace, "account %s has %d bytes left, need %d", accountID, a.RemainingSpace, rec.Size)
	}

	a.Files[path] = rec
	a.UsedSpace += rec.Size
	a.RemainingSpace -= rec.Size
	return nil
}

// Release deletes a file record and gives its size back to the account.
func (l *Ledger) Release(accountID, path string) (FileRecord, error) {
	a, ok := l.accounts[accountID]
	if !ok {
		return FileRecord{}, errors.Newf(errors.ErrAccountNotFound, "account %s not found in ledger", accountID)
	}
	rec, ok := a.Files[path]
	if !ok {
		return FileRecord{}, errors.Newf(errors.ErrNotFound, "destination %s is not placed on %s", path, accountID)
	}

	delete(a.Files, path)
	a.UsedSpace -= rec.Size
	a.RemainingSpace += rec.Size
	return rec, nil
}

// Clone returns a deep copy; planners work on clones so the original stays
// available as the "before" snapshot.
func (l *Ledger) Clone() *Ledger {
	c := New()
	for id, a := range l.accounts {
		c.accounts[id] = a.clone()
	}
	return c
}

// Entry is one placed file, flattened for iteration.
type Entry struct {
	AccountID string
	Path      string
	Record    FileRecord
}

// Entries returns every placed file ordered by path
func (l *Ledger) Entries() []Entry {
	var entries []Entry
	for id, a := range l.accounts {
		for p, rec := range a.Files {
			entries = append(entries, Entry{AccountID: id, Path: p, Record: rec})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Path != entries[j].Path {
			return entries[i].Path < entries[j].Path
		}
		return entries[i].AccountID < entries[j].AccountID
	})
	return entries
}

// Validate checks the invariants that can be derived from the document
// itself. Drift between used space and file sizes is reported, not fixed.
func (l *Ledger) Validate() []error {
	var problems []error
	seen := make(map[string]string)

	for _, id := range l.AccountIDs() {
		a := l.accounts[id]
		var sum int64
		for _, p := range a.Paths() {
			rec := a.Files[p]
			sum += rec.Size
			if rec.Size < 0 {
				problems = append(problems, errors.Newf(errors.ErrInvariantViolated, "account %s: %s has negative size %d", id, p, rec.Size))
			}
			if other, dup := seen[p]; dup {
				problems = append(problems, errors.Newf(errors.ErrInvariantViolated, "destination %s claimed by both %s and %s", p, other, id))
				continue
			}
			seen[p] = id
		}
		if sum != a.UsedSpace {
			problems = append(problems, errors.Newf(errors.ErrInvariantViolated, "account %s: used space %d differs from file total %d", id, a.UsedSpace, sum).
				WithDetail("account", id))
		}
		if a.RemainingSpace < 0 {
			problems = append(problems, errors.Newf(errors.ErrInvariantViolated, "account %s: remaining space is negative (%d)", id, a.RemainingSpace))
		}
	}
	return problems
}

type document struct {
	Accounts map[string]*Account `json:"accounts"`
}

// MarshalJSON writes the ledger document
func (l *Ledger) MarshalJSON() ([]byte, error) {
	accounts := l.accounts
	if accounts == nil {
		accounts = map[string]*Account{}
	}
	return json.Marshal(document{Accounts: accounts})
}

// UnmarshalJSON reads the ledger document. A missing "accounts" key or a
// missing "files" map decode as empty.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	l.accounts = make(map[string]*Account, len(doc.Accounts))
	for id, a := range doc.Accounts {
		if a == nil {
			a = &Account{}
		}
		a.ID = id
		if a.Files == nil {
			a.Files = make(map[string]FileRecord)
		}
		l.accounts[id] = a
	}
	return nil
}
