package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/drivepool/pkg/config"
	"github.com/arthur-debert/drivepool/pkg/errors"
)

// Environment variable names
const (
	// EnvDataDir overrides the data directory
	EnvDataDir = "DRIVEPOOL_DATA_DIR"

	// EnvStateDir overrides the state directory (logs)
	EnvStateDir = "DRIVEPOOL_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// AppDirName is the directory name used under each XDG base directory
const AppDirName = "drivepool"

// Paths exposes every location drivepool reads or writes
type Paths interface {
	DataDir() string
	AccountsDir() string
	LedgerFile() string
	LedgerBackupDir() string
	IncludeDir() string
	BackupsDir() string
	ConfigDir() string
	StateDir() string
	LogFilePath() string
}

type paths struct {
	dataDir         string
	accountsDir     string
	ledgerFile      string
	ledgerBackupDir string
	includeDir      string
	backupsDir      string
	configDir       string
	stateDir        string
}

// New resolves the layout described by the [paths] config section
func New(cfg config.Paths) (Paths, error) {
	dataDir := os.Getenv(EnvDataDir)
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	if dataDir == "" {
		dataDir = filepath.Join(xdg.DataHome, AppDirName)
	}

	absData, err := filepath.Abs(expandHome(dataDir))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for data dir %s", dataDir)
	}

	stateDir := os.Getenv(EnvStateDir)
	if stateDir == "" {
		stateDir = filepath.Join(xdg.StateHome, AppDirName)
	}

	p := &paths{
		dataDir:   absData,
		configDir: config.UserConfigDir(),
		stateDir:  expandHome(stateDir),
	}
	p.accountsDir = p.resolve(cfg.AccountsDir, "accounts")
	p.ledgerFile = p.resolve(cfg.LedgerFile, "drive_data.json")
	p.ledgerBackupDir = p.resolve(cfg.LedgerBackupDir, "db_backups")
	p.includeDir = p.resolve(cfg.IncludeDir, "rclone_include_files")
	p.backupsDir = p.resolve(cfg.BackupsDir, "backups")

	return p, nil
}

// resolve anchors a configured path at the data dir unless it is absolute
func (p *paths) resolve(configured, fallback string) string {
	if configured == "" {
		configured = fallback
	}
	configured = expandHome(configured)
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Join(p.dataDir, configured)
}

func (p *paths) DataDir() string         { return p.dataDir }
func (p *paths) AccountsDir() string     { return p.accountsDir }
func (p *paths) LedgerFile() string      { return p.ledgerFile }
func (p *paths) LedgerBackupDir() string { return p.ledgerBackupDir }
func (p *paths) IncludeDir() string      { return p.includeDir }
func (p *paths) BackupsDir() string      { return p.backupsDir }
func (p *paths) ConfigDir() string       { return p.configDir }
func (p *paths) StateDir() string        { return p.stateDir }

// LogFilePath returns the path of the debug log
func (p *paths) LogFilePath() string {
	return filepath.Join(p.stateDir, "drivepool.log")
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, strings.TrimLeft(path[2:], "/"))
	}
	return path
}
