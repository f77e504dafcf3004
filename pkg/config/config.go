package config

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/drivepool/pkg/errors"
)

// Allocation orders understood by the allocator
const (
	OrderFullest  = "fullest"
	OrderEmptiest = "emptiest"
)

// Dedup strategies understood by the planner
const (
	DedupPath    = "path"
	DedupContent = "content"
)

// Include list line encodings
const (
	EncodingRclone  = "rclone"
	EncodingLiteral = "literal"
)

// Config is the resolved drivepool configuration
type Config struct {
	Paths      Paths      `koanf:"paths" toml:"paths"`
	Accounts   Accounts   `koanf:"accounts" toml:"accounts"`
	Placement  Placement  `koanf:"placement" toml:"placement"`
	Directives Directives `koanf:"directives" toml:"directives"`
}

// Paths holds the on-disk layout. Relative entries are resolved against
// DataDir by the paths package.
type Paths struct {
	DataDir         string `koanf:"data_dir" toml:"data_dir"`
	AccountsDir     string `koanf:"accounts_dir" toml:"accounts_dir"`
	LedgerFile      string `koanf:"ledger_file" toml:"ledger_file"`
	LedgerBackupDir string `koanf:"ledger_backup_dir" toml:"ledger_backup_dir"`
	IncludeDir      string `koanf:"include_dir" toml:"include_dir"`
	BackupsDir      string `koanf:"backups_dir" toml:"backups_dir"`
}

// Accounts configures the account registry
type Accounts struct {
	DefaultCapacity ByteSize            `koanf:"default_capacity" toml:"default_capacity"`
	Static          []string            `koanf:"static" toml:"static"`
	Capacities      map[string]ByteSize `koanf:"capacities" toml:"capacities"`
}

// CapacityFor returns the configured capacity for an account id
func (a Accounts) CapacityFor(id string) int64 {
	if c, ok := a.Capacities[id]; ok {
		return int64(c)
	}
	return int64(a.DefaultCapacity)
}

// Placement selects the allocator order and dedup strategy
type Placement struct {
	Order string `koanf:"order" toml:"order"`
	Dedup string `koanf:"dedup" toml:"dedup"`
}

// Directives configures how directives are rendered for the mover
type Directives struct {
	RemotePrefix    string   `koanf:"remote_prefix" toml:"remote_prefix"`
	MasterRemote    string   `koanf:"master_remote" toml:"master_remote"`
	IncludeEncoding string   `koanf:"include_encoding" toml:"include_encoding"`
	CopyFlags       []string `koanf:"copy_flags" toml:"copy_flags"`
	DeleteFlags     []string `koanf:"delete_flags" toml:"delete_flags"`
}

// Validate rejects values no component could act on
func (c *Config) Validate() error {
	var problems []string

	switch c.Placement.Order {
	case OrderFullest, OrderEmptiest:
	default:
		problems = append(problems, fmt.Sprintf("placement.order %q is not one of %s, %s", c.Placement.Order, OrderFullest, OrderEmptiest))
	}
	switch c.Placement.Dedup {
	case DedupPath, DedupContent:
	default:
		problems = append(problems, fmt.Sprintf("placement.dedup %q is not one of %s, %s", c.Placement.Dedup, DedupPath, DedupContent))
	}
	switch c.Directives.IncludeEncoding {
	case EncodingRclone, EncodingLiteral:
	default:
		problems = append(problems, fmt.Sprintf("directives.include_encoding %q is not one of %s, %s", c.Directives.IncludeEncoding, EncodingRclone, EncodingLiteral))
	}
	if c.Accounts.DefaultCapacity < 0 {
		problems = append(problems, "accounts.default_capacity cannot be negative")
	}
	for id, capacity := range c.Accounts.Capacities {
		if capacity < 0 {
			problems = append(problems, fmt.Sprintf("accounts.capacities.%s cannot be negative", id))
		}
	}
	if c.Paths.LedgerFile == "" {
		problems = append(problems, "paths.ledger_file cannot be empty")
	}

	if len(problems) > 0 {
		return errors.Newf(errors.ErrConfigValid, "invalid configuration: %s", strings.Join(problems, "; ")).
			WithDetail("problems", problems)
	}
	return nil
}
