package core

import (
	"time"

	"github.com/arthur-debert/drivepool/pkg/allocator"
	"github.com/arthur-debert/drivepool/pkg/backup"
	"github.com/arthur-debert/drivepool/pkg/config"
	"github.com/arthur-debert/drivepool/pkg/datastore"
	"github.com/arthur-debert/drivepool/pkg/dedup"
	"github.com/arthur-debert/drivepool/pkg/directive"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/filesystem"
	"github.com/arthur-debert/drivepool/pkg/ledger"
	"github.com/arthur-debert/drivepool/pkg/lister"
	"github.com/arthur-debert/drivepool/pkg/logging"
	"github.com/arthur-debert/drivepool/pkg/paths"
	"github.com/arthur-debert/drivepool/pkg/planner"
	"github.com/arthur-debert/drivepool/pkg/registry"
	"github.com/arthur-debert/drivepool/pkg/types"
)

// Options wires an Engine
type Options struct {
	Config *config.Config
	Paths  paths.Paths
	// FS holds the ledger, include lists and backups. Defaults to the OS.
	FS types.FS
	// SourceFS is where local sources are read from. Defaults to FS.
	SourceFS types.FS
	// Runner executes rclone for remote sources. Defaults to os/exec.
	Runner lister.Runner
	// Clock defaults to time.Now
	Clock func() time.Time
}

// Engine owns the collaborators of a run
type Engine struct {
	cfg       *config.Config
	paths     paths.Paths
	fs        types.FS
	sourceFS  types.FS
	runner    lister.Runner
	now       func() time.Time
	store     datastore.LedgerStore
	planner   *planner.Planner
	formatter directive.Formatter
}

// New validates the strategy names in the config and builds an Engine
func New(opts Options) (*Engine, error) {
	if opts.Config == nil || opts.Paths == nil {
		return nil, errors.New(errors.ErrInvalidInput, "engine needs a config and paths")
	}
	e := &Engine{
		cfg:      opts.Config,
		paths:    opts.Paths,
		fs:       opts.FS,
		sourceFS: opts.SourceFS,
		runner:   opts.Runner,
		now:      opts.Clock,
	}
	if e.fs == nil {
		e.fs = filesystem.NewOS()
	}
	if e.sourceFS == nil {
		e.sourceFS = e.fs
	}
	if e.runner == nil {
		e.runner = lister.ExecRunner{}
	}
	if e.now == nil {
		e.now = time.Now
	}

	alloc, err := allocator.New(e.cfg.Placement.Order)
	if err != nil {
		return nil, err
	}
	strategy, err := dedup.Get(e.cfg.Placement.Dedup)
	if err != nil {
		return nil, err
	}
	if _, err := directive.Encodings.Get(e.cfg.Directives.IncludeEncoding); err != nil {
		return nil, err
	}

	e.store = datastore.New(e.fs, e.paths.LedgerFile(), e.paths.LedgerBackupDir(), datastore.WithClock(e.now))
	e.planner = planner.New(alloc, strategy)
	e.formatter = directive.NewRcloneFormatter(e.cfg.Directives)
	return e, nil
}

// Formatter returns the formatter directives are rendered with
func (e *Engine) Formatter() directive.Formatter { return e.formatter }

// Store returns the ledger store
func (e *Engine) Store() datastore.LedgerStore { return e.store }

// Snapshot loads the ledger and adds any newly discovered accounts in
// memory. Nothing is written.
func (e *Engine) Snapshot() (*ledger.Ledger, []string, error) {
	l, err := e.store.Load()
	if err != nil {
		return nil, nil, err
	}
	added, err := e.ensureAccounts(l)
	if err != nil {
		return nil, nil, err
	}
	return l, added, nil
}

// Inspect is Snapshot for read-only views: invariant violations are
// returned alongside the ledger rather than aborting.
func (e *Engine) Inspect() (*ledger.Ledger, []string, []error, error) {
	l, problems, err := e.store.Inspect()
	if err != nil {
		return nil, nil, nil, err
	}
	added, err := e.ensureAccounts(l)
	if err != nil {
		return nil, nil, nil, err
	}
	return l, added, problems, nil
}

func (e *Engine) ensureAccounts(l *ledger.Ledger) ([]string, error) {
	specs, err := registry.Accounts(e.cfg.Accounts,
		registry.DirSource{FS: e.fs, Dir: e.paths.AccountsDir()},
		registry.StaticSource(e.cfg.Accounts.Static),
	)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 && l.Len() == 0 {
		logger := logging.GetLogger("core")
		logger.Warn().
			Str("accounts_dir", e.paths.AccountsDir()).
			Msg("No accounts known: add credential files or accounts.static")
	}

	return e.store.EnsureAccounts(l, specs)
}

// workspace returns the filesystem include lists go to for this run. Real
// runs start from an empty include directory.
func (e *Engine) workspace(dryRun bool) (types.FS, error) {
	if dryRun {
		return filesystem.NewMemory(), nil
	}
	dir := e.paths.IncludeDir()
	if err := e.fs.RemoveAll(dir); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to clear include directory %s", dir)
	}
	if err := e.fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create include directory %s", dir)
	}
	return e.fs, nil
}

// persist saves the ledger and records the run. It is the only place a run
// writes state. The run directory is claimed before the ledger is saved so a
// clash leaves the ledger untouched.
func (e *Engine) persist(after *ledger.Ledger, run backup.Run) (ledgerBackup, runDir string, err error) {
	logger := logging.GetLogger("core")

	recorder := backup.NewRecorder(e.fs, e.paths.BackupsDir(), e.now)
	runDir, err = recorder.Reserve()
	if err != nil {
		return "", "", err
	}

	if after != nil {
		ledgerBackup, err = e.store.Save(after)
		if err != nil {
			return "", "", err
		}
	}

	if err := recorder.RecordIn(runDir, run); err != nil {
		logger.Error().Err(err).Msg("Ledger was saved but the run archive could not be written")
		return ledgerBackup, "", err
	}
	return ledgerBackup, runDir, nil
}
