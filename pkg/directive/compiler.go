package directive

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/logging"
	"github.com/arthur-debert/drivepool/pkg/types"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Compiler builds Directives and writes one include file per Directive
type Compiler struct {
	fs        types.FS
	dir       string
	runID     string
	encode    Encoding
	seq       int
	artifacts []string
}

// NewCompiler writes include lists into dir on fs. runID is embedded in
// every file name; encoding names a registered Encoding.
func NewCompiler(fs types.FS, dir, runID, encoding string) (*Compiler, error) {
	encode, err := Encodings.Get(encoding)
	if err != nil {
		return nil, err
	}
	return &Compiler{fs: fs, dir: dir, runID: runID, encode: encode}, nil
}

// CompileTransfer builds a transfer Directive copying includePaths, relative
// to sourceRoot, into destinationRoot on the account.
func (c *Compiler) CompileTransfer(accountID string, includePaths []string, sourceRoot, destinationRoot string) (Directive, error) {
	if sourceRoot == "" {
		return Directive{}, errors.Newf(errors.ErrInvalidInput, "transfer for %s has no source root", accountID)
	}
	d := Directive{
		AccountID:       accountID,
		Kind:            KindTransfer,
		IncludePaths:    append([]string(nil), includePaths...),
		SourceRoot:      sourceRoot,
		DestinationRoot: destinationRoot,
	}
	return c.persist(d)
}

// CompileDelete builds a delete Directive for full destination paths. The
// destination root is the account's remote root.
func (c *Compiler) CompileDelete(accountID string, paths []string) (Directive, error) {
	d := Directive{
		AccountID:    accountID,
		Kind:         KindDelete,
		IncludePaths: append([]string(nil), paths...),
	}
	return c.persist(d)
}

// Artifacts returns the include files written so far, in order
func (c *Compiler) Artifacts() []string {
	return append([]string(nil), c.artifacts...)
}

// Dir returns the include-list directory
func (c *Compiler) Dir() string { return c.dir }

func (c *Compiler) persist(d Directive) (Directive, error) {
	if d.AccountID == "" {
		return Directive{}, errors.New(errors.ErrInvalidInput, "directive has no account")
	}
	if len(d.IncludePaths) == 0 {
		return Directive{}, errors.Newf(errors.ErrInvalidInput, "%s directive for %s has no paths", d.Kind, d.AccountID)
	}

	var b strings.Builder
	for _, p := range d.IncludePaths {
		if strings.ContainsAny(p, "\r\n") {
			return Directive{}, errors.Newf(errors.ErrInvalidInput, "path %q contains a line break", p)
		}
		b.WriteString(c.encode(p))
		b.WriteByte('\n')
	}

	if err := c.fs.MkdirAll(c.dir, 0755); err != nil {
		return Directive{}, errors.Wrapf(err, errors.ErrDirCreate, "failed to create include directory %s", c.dir)
	}

	c.seq++
	name := fmt.Sprintf("include_%s_%s_%d.txt", unsafeNameChars.ReplaceAllString(d.AccountID, "_"), c.runID, c.seq)
	d.IncludeFile = filepath.Join(c.dir, name)
	if err := c.fs.WriteFile(d.IncludeFile, []byte(b.String()), 0644); err != nil {
		return Directive{}, errors.Wrapf(err, errors.ErrFileWrite, "failed to write include file %s", d.IncludeFile)
	}
	c.artifacts = append(c.artifacts, d.IncludeFile)

	logger := logging.GetLogger("directive")
	logger.Debug().
		Str("account", d.AccountID).
		Str("kind", string(d.Kind)).
		Int("paths", len(d.IncludePaths)).
		Str("include_file", d.IncludeFile).
		Msg("Include list written")
	return d, nil
}
