// Package removal releases every ledger entry under a destination prefix.
//
// Matching is a plain string prefix: "a/b" also matches "a/bc". Callers
// that want a whole directory should end the prefix with a slash.
package removal

import (
	"sort"
	"strings"

	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/ledger"
	"github.com/arthur-debert/drivepool/pkg/logging"
)

// Batch lists one account's paths to delete
type Batch struct {
	AccountID string
	Paths     []string
	Bytes     int64
}

// Result is the output of Plan
type Result struct {
	Ledger  *ledger.Ledger
	Batches []Batch
}

// Files returns the number of released files
func (r *Result) Files() int {
	n := 0
	for _, b := range r.Batches {
		n += len(b.Paths)
	}
	return n
}

// Bytes returns the total released size
func (r *Result) Bytes() int64 {
	var n int64
	for _, b := range r.Batches {
		n += b.Bytes
	}
	return n
}

// Select returns the matching entries per account without changing l.
// Accounts are sorted by id and paths within an account are sorted.
func Select(l *ledger.Ledger, prefix string) []Batch {
	var batches []Batch
	for _, acct := range l.Accounts() {
		var b Batch
		for _, p := range acct.Paths() {
			if strings.HasPrefix(p, prefix) {
				b.Paths = append(b.Paths, p)
				b.Bytes += acct.Files[p].Size
			}
		}
		if len(b.Paths) > 0 {
			b.AccountID = acct.ID
			batches = append(batches, b)
		}
	}
	sort.SliceStable(batches, func(i, j int) bool { return batches[i].AccountID < batches[j].AccountID })
	return batches
}

// Plan releases every entry whose destination starts with prefix, mutating
// l in place. An empty match is ErrNothingToRemove and leaves l untouched.
func Plan(l *ledger.Ledger, prefix string) (*Result, error) {
	logger := logging.GetLogger("removal")

	batches := Select(l, prefix)
	if len(batches) == 0 {
		return &Result{Ledger: l}, errors.Newf(errors.ErrNothingToRemove, "no placed files start with %q", prefix).
			WithDetail("prefix", prefix)
	}

	for _, b := range batches {
		for _, p := range b.Paths {
			if _, err := l.Release(b.AccountID, p); err != nil {
				// Select only returns entries present in l
				return nil, errors.Wrapf(err, errors.ErrInternal, "failed to release %s", p)
			}
			logger.Debug().Str("account", b.AccountID).Str("path", p).Msg("Released")
		}
	}

	res := &Result{Ledger: l, Batches: batches}
	logger.Info().Str("prefix", prefix).Int("files", res.Files()).Int64("bytes", res.Bytes()).Int("accounts", len(batches)).Msg("Removal planned")
	return res, nil
}
