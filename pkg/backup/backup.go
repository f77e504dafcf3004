// Package backup writes the per-run audit archive: input parameters,
// emitted directives, the ledger before and after, and the include lists.
// Archives are write-once.
package backup

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/ledger"
	"github.com/arthur-debert/drivepool/pkg/logging"
	"github.com/arthur-debert/drivepool/pkg/types"
)

// File names inside a run directory
const (
	ParametersFile   = "input_parameters.yaml"
	DirectivesFile   = "directives.txt"
	LedgerBeforeFile = "ledger_before.json"
	LedgerAfterFile  = "ledger_after.json"
	IncludeZipFile   = "include_files.zip"

	// DirTimeFormat names run directories
	DirTimeFormat = "20060102_150405"
)

// Parameters describes what the run was asked to do
type Parameters struct {
	Operation    string `yaml:"operation"`
	RunID        string `yaml:"run_id"`
	Source       string `yaml:"source,omitempty"`
	Destination  string `yaml:"destination,omitempty"`
	UploadFolder bool   `yaml:"upload_folder,omitempty"`
	Prefix       string `yaml:"prefix,omitempty"`
	Order        string `yaml:"placement_order,omitempty"`
	Dedup        string `yaml:"dedup,omitempty"`
	Placed       int    `yaml:"placed"`
	Skipped      int    `yaml:"skipped"`
	Failed       int    `yaml:"failed"`
}

// Run is everything recorded for one run
type Run struct {
	Parameters Parameters
	// Directives holds the rendered directive lines, in emission order
	Directives   []string
	LedgerBefore *ledger.Ledger
	LedgerAfter  *ledger.Ledger
	// IncludeFiles are archived by base name into include_files.zip
	IncludeFiles []string
}

// Recorder creates run directories under a backups root
type Recorder struct {
	fs   types.FS
	root string
	now  func() time.Time
}

// NewRecorder creates a Recorder. now may be nil for time.Now.
func NewRecorder(fs types.FS, root string, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{fs: fs, root: root, now: now}
}

// Record writes a new run directory and returns its path. An existing
// directory for the same second is never reused.
func (r *Recorder) Record(run Run) (string, error) {
	dir, err := r.Reserve()
	if err != nil {
		return "", err
	}
	if err := r.RecordIn(dir, run); err != nil {
		return "", err
	}
	return dir, nil
}

// Reserve returns the directory the next run will be recorded in, or
// ErrAlreadyExists when a run already claimed this second. Callers check it
// before persisting anything else.
func (r *Recorder) Reserve() (string, error) {
	dir := filepath.Join(r.root, r.now().Format(DirTimeFormat))
	if _, err := r.fs.Stat(dir); err == nil {
		return "", errors.Newf(errors.ErrAlreadyExists, "backup directory %s already exists", dir).
			WithDetail("dir", dir)
	}
	return dir, nil
}

// RecordIn writes the run into a directory obtained from Reserve
func (r *Recorder) RecordIn(dir string, run Run) error {
	logger := logging.GetLogger("backup")

	if _, err := r.fs.Stat(dir); err == nil {
		return errors.Newf(errors.ErrAlreadyExists, "backup directory %s already exists", dir).
			WithDetail("dir", dir)
	}

	files := make(map[string][]byte)

	params, err := yaml.Marshal(run.Parameters)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode run parameters")
	}
	files[ParametersFile] = params

	var lines strings.Builder
	for _, d := range run.Directives {
		lines.WriteString(d)
		lines.WriteByte('\n')
	}
	files[DirectivesFile] = []byte(lines.String())

	for name, l := range map[string]*ledger.Ledger{LedgerBeforeFile: run.LedgerBefore, LedgerAfterFile: run.LedgerAfter} {
		if l == nil {
			l = ledger.New()
		}
		data, err := json.MarshalIndent(l, "", "    ")
		if err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "failed to encode %s", name)
		}
		files[name] = data
	}

	archive, err := r.zipIncludes(run.IncludeFiles)
	if err != nil {
		return err
	}
	files[IncludeZipFile] = archive

	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create backup directory %s", dir)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := r.fs.WriteFile(path, files[name], 0644); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path)
		}
	}

	logger.Info().Str("dir", dir).Int("directives", len(run.Directives)).Msg("Run backup recorded")
	return nil
}

func (r *Recorder) zipIncludes(paths []string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, p := range paths {
		data, err := r.fs.ReadFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read include file %s", p)
		}
		w, err := zw.Create(filepath.Base(p))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "failed to add %s to archive", p)
		}
		if _, err := w.Write(data); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "failed to add %s to archive", p)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to finish include archive")
	}
	return buf.Bytes(), nil
}
