// pkg/backup/backup_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory filesystem
// PURPOSE: Test run archive layout and write-once behavior

package backup_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/drivepool/pkg/backup"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/ledger"
	"github.com/arthur-debert/drivepool/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun(t *testing.T) backup.Run {
	before := testutil.NewLedger(t).Account("sa-1", 100).Build()
	after := before.Clone()
	require.NoError(t, after.Place("sa-1", "dst/a.txt", ledger.FileRecord{Size: 4}))

	return backup.Run{
		Parameters: backup.Parameters{
			Operation:   "transfer",
			RunID:       "run1",
			Source:      "/src",
			Destination: "dst",
			Placed:      1,
		},
		Directives:   []string{`rclone copy --include-from "/inc/include_sa-1_run1_1.txt" "/src" "gsa-1:dst"`},
		LedgerBefore: before,
		LedgerAfter:  after,
		IncludeFiles: []string{"/inc/include_sa-1_run1_1.txt"},
	}
}

func TestRecord_WritesAllArtifacts(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteFiles(t, fs, map[string]string{"/inc/include_sa-1_run1_1.txt": "a.txt\n"})
	rec := backup.NewRecorder(fs, "/backups", testutil.FixedClock(testutil.RefTime))

	dir, err := rec.Record(sampleRun(t))
	require.NoError(t, err)
	assert.Equal(t, "/backups/20240315_103000", dir)

	var params backup.Parameters
	require.NoError(t, yaml.Unmarshal([]byte(testutil.ReadFile(t, fs, dir+"/"+backup.ParametersFile)), &params))
	assert.Equal(t, "transfer", params.Operation)
	assert.Equal(t, 1, params.Placed)

	assert.Contains(t, testutil.ReadFile(t, fs, dir+"/"+backup.DirectivesFile), "gsa-1:dst")

	var before, after ledger.Ledger
	require.NoError(t, json.Unmarshal([]byte(testutil.ReadFile(t, fs, dir+"/"+backup.LedgerBeforeFile)), &before))
	require.NoError(t, json.Unmarshal([]byte(testutil.ReadFile(t, fs, dir+"/"+backup.LedgerAfterFile)), &after))
	assert.False(t, before.Contains("dst/a.txt"))
	assert.True(t, after.Contains("dst/a.txt"))

	raw := []byte(testutil.ReadFile(t, fs, dir+"/"+backup.IncludeZipFile))
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "include_sa-1_run1_1.txt", zr.File[0].Name)
	f, err := zr.File[0].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "a.txt\n", string(content))
}

func TestRecord_RefusesExistingDirectory(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteFiles(t, fs, map[string]string{"/inc/include_sa-1_run1_1.txt": "a.txt\n"})
	rec := backup.NewRecorder(fs, "/backups", testutil.FixedClock(testutil.RefTime))

	_, err := rec.Record(sampleRun(t))
	require.NoError(t, err)

	_, err = rec.Record(sampleRun(t))
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
}

func TestRecord_MissingIncludeFileFailsBeforeWriting(t *testing.T) {
	fs := testutil.NewTestFS()
	rec := backup.NewRecorder(fs, "/backups", testutil.FixedClock(testutil.RefTime))

	_, err := rec.Record(sampleRun(t))
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))

	_, statErr := fs.Stat("/backups/20240315_103000")
	assert.Error(t, statErr, "no partial run directory")
}

func TestRecord_NothingToRemoveRun(t *testing.T) {
	fs := testutil.NewTestFS()
	rec := backup.NewRecorder(fs, "/backups", testutil.FixedClock(testutil.RefTime))
	l := testutil.NewLedger(t).Account("sa-1", 100).Build()

	dir, err := rec.Record(backup.Run{
		Parameters:   backup.Parameters{Operation: "remove", Prefix: "nothing/"},
		LedgerBefore: l,
		LedgerAfter:  l,
	})
	require.NoError(t, err)
	assert.Equal(t,
		testutil.ReadFile(t, fs, dir+"/"+backup.LedgerBeforeFile),
		testutil.ReadFile(t, fs, dir+"/"+backup.LedgerAfterFile))
	assert.Empty(t, testutil.ReadFile(t, fs, dir+"/"+backup.DirectivesFile))
}

func TestReserve_ReportsTakenSecondWithoutWriting(t *testing.T) {
	fs := testutil.NewTestFS()
	rec := backup.NewRecorder(fs, "/backups", testutil.FixedClock(testutil.RefTime))

	dir, err := rec.Reserve()
	require.NoError(t, err)
	assert.Equal(t, "/backups/20240315_103000", dir)

	_, statErr := fs.Stat(dir)
	assert.Error(t, statErr, "reserving does not create the directory")

	require.NoError(t, fs.MkdirAll(dir, 0755))
	_, err = rec.Reserve()
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
	assert.True(t, errors.IsErrorCode(rec.RecordIn(dir, backup.Run{}), errors.ErrAlreadyExists))
}
