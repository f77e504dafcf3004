package registry

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/drivepool/pkg/config"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/logging"
	"github.com/arthur-debert/drivepool/pkg/types"
)

// AccountSpec is an account the ledger should know about
type AccountSpec struct {
	ID       string
	Capacity int64
}

// AccountSource yields account ids from somewhere
type AccountSource interface {
	AccountIDs() ([]string, error)
}

// DirSource treats every <id>.json credential file in a directory as an
// account. A missing directory yields no accounts.
type DirSource struct {
	FS  types.FS
	Dir string
}

// AccountIDs implements AccountSource
func (d DirSource) AccountIDs() ([]string, error) {
	logger := logging.GetLogger("registry.accounts")

	entries, err := d.FS.ReadDir(d.Dir)
	if err != nil {
		if _, statErr := d.FS.Stat(d.Dir); statErr != nil {
			logger.Debug().Str("dir", d.Dir).Msg("Accounts directory does not exist")
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read accounts directory %s", d.Dir)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	logger.Debug().Str("dir", d.Dir).Int("count", len(ids)).Msg("Discovered credential files")
	return ids, nil
}

// StaticSource is a fixed list of ids, typically from accounts.static
type StaticSource []string

// AccountIDs implements AccountSource
func (s StaticSource) AccountIDs() ([]string, error) {
	return []string(s), nil
}

// Accounts merges the ids from every source, drops duplicates and assigns
// capacities from the accounts config section. The result is sorted by id.
func Accounts(cfg config.Accounts, sources ...AccountSource) ([]AccountSpec, error) {
	seen := make(map[string]bool)
	var specs []AccountSpec

	for _, source := range sources {
		ids, err := source.AccountIDs()
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			specs = append(specs, AccountSpec{ID: id, Capacity: cfg.CapacityFor(id)})
		}
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs, nil
}
