package datastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/ledger"
	"github.com/arthur-debert/drivepool/pkg/logging"
	"github.com/arthur-debert/drivepool/pkg/registry"
	"github.com/arthur-debert/drivepool/pkg/types"
)

// BackupTimeFormat names ledger backups, e.g. drive_data_backup_20240102_150405.json
const BackupTimeFormat = "20060102_150405"

type filesystemStore struct {
	fs        types.FS
	file      string
	backupDir string
	now       func() time.Time
}

// Option customizes a store
type Option func(*filesystemStore)

// WithClock replaces time.Now for backup naming
func WithClock(now func() time.Time) Option {
	return func(s *filesystemStore) { s.now = now }
}

// New creates a LedgerStore for the ledger at file, keeping backups in
// backupDir.
func New(fs types.FS, file, backupDir string, opts ...Option) LedgerStore {
	s := &filesystemStore{
		fs:        fs,
		file:      file,
		backupDir: backupDir,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *filesystemStore) Path() string { return s.file }

func (s *filesystemStore) Load() (*ledger.Ledger, error) {
	l, problems, err := s.Inspect()
	if err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		msgs := make([]string, len(problems))
		for i, p := range problems {
			msgs[i] = p.Error()
		}
		return nil, errors.Newf(errors.ErrLedgerUnreadable, "ledger %s is inconsistent: %s", s.file, strings.Join(msgs, "; ")).
			WithDetail("path", s.file).
			WithDetail("problems", len(problems))
	}
	return l, nil
}

func (s *filesystemStore) Inspect() (*ledger.Ledger, []error, error) {
	logger := logging.GetLogger("datastore")

	if _, err := s.fs.Stat(s.file); err != nil {
		if !os.IsNotExist(err) {
			return nil, nil, errors.Wrapf(err, errors.ErrLedgerUnreadable, "cannot access ledger %s", s.file).
				WithDetail("path", s.file)
		}
		logger.Info().Str("path", s.file).Msg("No ledger file yet, starting empty")
		return ledger.New(), nil, nil
	}

	data, err := s.fs.ReadFile(s.file)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrLedgerUnreadable, "failed to read ledger %s", s.file).
			WithDetail("path", s.file)
	}

	l := ledger.New()
	if err := json.Unmarshal(data, l); err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrLedgerUnreadable, "ledger %s is not valid", s.file).
			WithDetail("path", s.file)
	}

	logger.Debug().Str("path", s.file).Int("accounts", l.Len()).Msg("Ledger loaded")
	return l, l.Validate(), nil
}

func (s *filesystemStore) EnsureAccounts(l *ledger.Ledger, specs []registry.AccountSpec) ([]string, error) {
	logger := logging.GetLogger("datastore")

	var added []string
	for _, spec := range specs {
		ok, err := l.AddAccount(spec.ID, spec.Capacity)
		if err != nil {
			return added, err
		}
		if ok {
			added = append(added, spec.ID)
			logger.Info().Str("account", spec.ID).Int64("capacity", spec.Capacity).Msg("Registered new account")
		}
	}
	return added, nil
}

func (s *filesystemStore) Save(l *ledger.Ledger) (string, error) {
	logger := logging.GetLogger("datastore")

	data, err := json.MarshalIndent(l, "", "    ")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to encode ledger")
	}

	backupPath, err := s.backup()
	if err != nil {
		if !errors.IsErrorCode(err, errors.ErrPriorLedgerMissing) {
			return "", err
		}
		logger.Warn().Str("path", s.file).Msg("No previous ledger to back up")
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.file), 0755); err != nil {
		return backupPath, errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory for %s", s.file)
	}

	tmp := s.file + ".tmp"
	if err := s.fs.WriteFile(tmp, data, 0644); err != nil {
		return backupPath, errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", tmp)
	}
	if err := s.fs.Rename(tmp, s.file); err != nil {
		_ = s.fs.Remove(tmp)
		return backupPath, errors.Wrapf(err, errors.ErrFileWrite, "failed to replace %s", s.file)
	}

	logger.Info().Str("path", s.file).Str("backup", backupPath).Msg("Ledger saved")
	return backupPath, nil
}

// backup copies the current ledger file into the backup directory
func (s *filesystemStore) backup() (string, error) {
	data, err := s.fs.ReadFile(s.file)
	if os.IsNotExist(err) {
		return "", errors.Wrapf(err, errors.ErrPriorLedgerMissing, "no ledger at %s", s.file)
	}
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read ledger %s for backup", s.file)
	}

	if err := s.fs.MkdirAll(s.backupDir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create backup directory %s", s.backupDir)
	}

	stamp := s.now().Format(BackupTimeFormat)
	path := filepath.Join(s.backupDir, fmt.Sprintf("drive_data_backup_%s.json", stamp))
	for n := 1; s.exists(path); n++ {
		path = filepath.Join(s.backupDir, fmt.Sprintf("drive_data_backup_%s_%d.json", stamp, n))
	}

	if err := s.fs.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to write backup %s", path)
	}
	return path, nil
}

func (s *filesystemStore) exists(path string) bool {
	_, err := s.fs.Stat(path)
	return err == nil
}
