// pkg/core/core_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: In-memory filesystem, mock runner
// PURPOSE: Test full transfer and removal runs including persistence

package core_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/drivepool/pkg/backup"
	"github.com/arthur-debert/drivepool/pkg/config"
	"github.com/arthur-debert/drivepool/pkg/core"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/ledger"
	"github.com/arthur-debert/drivepool/pkg/paths"
	"github.com/arthur-debert/drivepool/pkg/planner"
	"github.com/arthur-debert/drivepool/pkg/testutil"
	"github.com/arthur-debert/drivepool/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	out  string
	args []string
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	f.args = args
	return []byte(f.out), nil
}

type env struct {
	engine *core.Engine
	fs     types.FS
	paths  paths.Paths
	runner *fakeRunner
}

func newEnv(t *testing.T, mutate func(*config.Config)) *env {
	t.Helper()
	return newEnvWithClock(t, mutate, testutil.StepClock(testutil.RefTime, time.Second))
}

func newEnvWithClock(t *testing.T, mutate func(*config.Config), clock func() time.Time) *env {
	t.Helper()
	t.Setenv(paths.EnvDataDir, "/data")

	cfg := config.Default()
	cfg.Accounts.DefaultCapacity = 100
	cfg.Accounts.Static = []string{"A", "B"}
	if mutate != nil {
		mutate(cfg)
	}
	p, err := paths.New(cfg.Paths)
	require.NoError(t, err)

	fs := testutil.NewTestFS()
	testutil.WriteFiles(t, fs, map[string]string{
		"/src/music/one.mp3":    strings.Repeat("1", 60),
		"/src/music/two.mp3":    strings.Repeat("2", 30),
		"/src/music/deep/x.mp3": strings.Repeat("x", 5),
	})

	runner := &fakeRunner{}
	e, err := core.New(core.Options{
		Config: cfg,
		Paths:  p,
		FS:     fs,
		Runner: runner,
		Clock:  clock,
	})
	require.NoError(t, err)
	return &env{engine: e, fs: fs, paths: p, runner: runner}
}

func (v *env) ledger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := v.engine.Store().Load()
	require.NoError(t, err)
	return l
}

func (v *env) dirCount(dir string) int {
	entries, err := v.fs.ReadDir(dir)
	if err != nil {
		return 0
	}
	return len(entries)
}

func TestTransfer_PlacesSavesAndArchives(t *testing.T) {
	v := newEnv(t, nil)

	report, err := v.engine.Transfer(context.Background(), core.TransferOptions{
		Source:       "/src/music",
		Destination:  "backup",
		UploadFolder: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, report.NewAccounts)
	assert.Equal(t, planner.Summary{Placed: 3, PlacedBytes: 95}, report.Summary)
	require.Len(t, report.Directives, 1)
	assert.Equal(t, "/src/music", report.Directives[0].SourceRoot)
	assert.Equal(t, "backup/music", report.Directives[0].DestinationRoot)

	l := v.ledger(t)
	assert.True(t, l.Contains("backup/music/deep/x.mp3"))
	testutil.AssertConserved(t, l, map[string]int64{"A": 100, "B": 100})

	assert.Empty(t, report.LedgerBackup, "first save has nothing to back up")
	require.NotEmpty(t, report.RunBackup)
	for _, name := range []string{backup.ParametersFile, backup.DirectivesFile, backup.LedgerBeforeFile, backup.LedgerAfterFile, backup.IncludeZipFile} {
		_, err := v.fs.Stat(report.RunBackup + "/" + name)
		assert.NoError(t, err, name)
	}
	assert.Equal(t, len(report.Directives), v.dirCount(v.paths.IncludeDir()))
	assert.Contains(t, report.Lines[0], `"/src/music"`)
}

func TestTransfer_SecondRunChangesNothing(t *testing.T) {
	v := newEnv(t, nil)
	opts := core.TransferOptions{Source: "/src/music", Destination: "backup"}

	_, err := v.engine.Transfer(context.Background(), opts)
	require.NoError(t, err)
	saved := testutil.ReadFile(t, v.fs, v.paths.LedgerFile())

	report, err := v.engine.Transfer(context.Background(), opts)
	require.NoError(t, err)

	assert.False(t, report.Changed())
	assert.Equal(t, 3, report.Summary.Skipped)
	assert.Empty(t, report.Directives)
	assert.Equal(t, saved, testutil.ReadFile(t, v.fs, v.paths.LedgerFile()))
	assert.Equal(t, 1, v.dirCount(v.paths.BackupsDir()))
	assert.Equal(t, 0, v.dirCount(v.paths.LedgerBackupDir()))
}

func TestTransfer_BatchesFollowPlacement(t *testing.T) {
	v := newEnv(t, nil)

	report, err := v.engine.Transfer(context.Background(), core.TransferOptions{Source: "/src/music", Destination: "d"})
	require.NoError(t, err)

	require.Len(t, report.Directives, 1)
	assert.Equal(t, "A", report.Directives[0].AccountID)
	assert.Equal(t, []string{"one.mp3", "two.mp3", "deep/x.mp3"}, report.Directives[0].IncludePaths)

	report, err = v.engine.Transfer(context.Background(), core.TransferOptions{Source: "/src/music", Destination: "e"})
	require.NoError(t, err)
	// A has 5 bytes left: only x.mp3 stays on A
	require.Len(t, report.Directives, 2)
	assert.Equal(t, "B", report.Directives[0].AccountID)
	assert.Equal(t, []string{"one.mp3", "two.mp3"}, report.Directives[0].IncludePaths)
	assert.Equal(t, "A", report.Directives[1].AccountID)
	assert.Equal(t, []string{"deep/x.mp3"}, report.Directives[1].IncludePaths)
}

func TestTransfer_DryRunWritesNothing(t *testing.T) {
	v := newEnv(t, nil)

	report, err := v.engine.Transfer(context.Background(), core.TransferOptions{Source: "/src/music", Destination: "d", DryRun: true})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Len(t, report.Lines, 1)
	_, statErr := v.fs.Stat(v.paths.LedgerFile())
	assert.Error(t, statErr)
	assert.Equal(t, 0, v.dirCount(v.paths.IncludeDir()))
	assert.Equal(t, 0, v.dirCount(v.paths.BackupsDir()))
}

func TestTransfer_UnreadableLedgerAborts(t *testing.T) {
	v := newEnv(t, nil)
	testutil.WriteFiles(t, v.fs, map[string]string{
		v.paths.LedgerFile():                "{broken",
		v.paths.IncludeDir() + "/stale.txt": "old",
	})

	_, err := v.engine.Transfer(context.Background(), core.TransferOptions{Source: "/src/music", Destination: "d"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrLedgerUnreadable))

	assert.Equal(t, "{broken", testutil.ReadFile(t, v.fs, v.paths.LedgerFile()))
	assert.Equal(t, "old", testutil.ReadFile(t, v.fs, v.paths.IncludeDir()+"/stale.txt"))
	assert.Equal(t, 0, v.dirCount(v.paths.BackupsDir()))
}

func TestTransfer_TakenRunDirectoryLeavesLedgerUntouched(t *testing.T) {
	v := newEnvWithClock(t, nil, testutil.FixedClock(testutil.RefTime))
	taken := v.paths.BackupsDir() + "/" + testutil.RefTime.Format(backup.DirTimeFormat)
	require.NoError(t, v.fs.MkdirAll(taken, 0755))

	_, err := v.engine.Transfer(context.Background(), core.TransferOptions{Source: "/src/music", Destination: "backup"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	_, statErr := v.fs.Stat(v.paths.LedgerFile())
	assert.Error(t, statErr, "ledger must not be saved when the run cannot be archived")
	assert.Equal(t, 0, v.dirCount(v.paths.LedgerBackupDir()))
}

func TestTransfer_IncludeListDoesNotReachDeeperNamesakes(t *testing.T) {
	v := newEnv(t, nil)
	_, err := v.engine.Transfer(context.Background(), core.TransferOptions{Source: "/src/music", Destination: "backup"})
	require.NoError(t, err)

	testutil.WriteFiles(t, v.fs, map[string]string{"/src/music/x.mp3": "top"})
	report, err := v.engine.Transfer(context.Background(), core.TransferOptions{Source: "/src/music", Destination: "backup"})
	require.NoError(t, err)

	require.Len(t, report.Directives, 1)
	assert.Equal(t, "/x.mp3\n", testutil.ReadFile(t, v.fs, report.Directives[0].IncludeFile))
}

func TestTransfer_ClearsStaleIncludeFiles(t *testing.T) {
	v := newEnv(t, nil)
	testutil.WriteFiles(t, v.fs, map[string]string{v.paths.IncludeDir() + "/stale.txt": "old"})

	_, err := v.engine.Transfer(context.Background(), core.TransferOptions{Source: "/src/music", Destination: "d"})
	require.NoError(t, err)

	_, statErr := v.fs.Stat(v.paths.IncludeDir() + "/stale.txt")
	assert.Error(t, statErr)
}

func TestTransfer_InvalidSource(t *testing.T) {
	v := newEnv(t, nil)
	_, err := v.engine.Transfer(context.Background(), core.TransferOptions{Source: "/missing", Destination: "d"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrSourceInvalid))
	assert.Equal(t, 0, v.dirCount("/data"))
}

func TestTransfer_RemoteSource(t *testing.T) {
	v := newEnv(t, nil)
	v.runner.out = "       40 a.bin\n       70 b/c.bin\n"

	report, err := v.engine.Transfer(context.Background(), core.TransferOptions{Source: "id=FOLDER", Destination: "shared"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ls", "--fast-list", "--max-depth=15", "god,root_folder_id=FOLDER:"}, v.runner.args)
	assert.Equal(t, 2, report.Summary.Placed)
	for _, d := range report.Directives {
		assert.Equal(t, "god,root_folder_id=FOLDER:", d.SourceRoot)
	}
}

func TestTransfer_UnplaceableIsReportedNotFatal(t *testing.T) {
	v := newEnv(t, func(c *config.Config) { c.Accounts.DefaultCapacity = 50 })

	report, err := v.engine.Transfer(context.Background(), core.TransferOptions{Source: "/src/music", Destination: "d"})
	require.NoError(t, err)

	assert.Equal(t, planner.StatusUnplaceable, report.Outcomes[0].Status, "60 bytes fit nowhere")
	assert.Equal(t, 2, report.Summary.Placed)
	assert.Equal(t, 1, report.Summary.Failed)
}

func TestRemove_ReleasesAndArchives(t *testing.T) {
	v := newEnv(t, nil)
	_, err := v.engine.Transfer(context.Background(), core.TransferOptions{Source: "/src/music", Destination: "d"})
	require.NoError(t, err)

	report, err := v.engine.Remove(context.Background(), core.RemoveOptions{Prefix: "d/deep"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Files())
	assert.Equal(t, int64(5), report.Bytes())
	require.Len(t, report.Directives, 1)
	assert.Equal(t, []string{"d/deep/x.mp3"}, report.Directives[0].IncludePaths)
	assert.Contains(t, report.Lines[0], "rclone delete")
	assert.NotEmpty(t, report.LedgerBackup)
	assert.NotEmpty(t, report.RunBackup)

	l := v.ledger(t)
	assert.False(t, l.Contains("d/deep/x.mp3"))
	assert.True(t, l.Contains("d/one.mp3"))
	testutil.AssertConserved(t, l, map[string]int64{"A": 100, "B": 100})
}

func TestRemove_NothingToRemoveStillArchives(t *testing.T) {
	v := newEnv(t, nil)

	report, err := v.engine.Remove(context.Background(), core.RemoveOptions{Prefix: "nope/"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNothingToRemove))
	require.NotNil(t, report)
	require.NotEmpty(t, report.RunBackup)

	_, statErr := v.fs.Stat(v.paths.LedgerFile())
	assert.Error(t, statErr, "ledger is not saved")

	var before, after map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(testutil.ReadFile(t, v.fs, report.RunBackup+"/"+backup.LedgerBeforeFile)), &before))
	require.NoError(t, json.Unmarshal([]byte(testutil.ReadFile(t, v.fs, report.RunBackup+"/"+backup.LedgerAfterFile)), &after))
	assert.Equal(t, before, after)
}

func TestRemove_DryRun(t *testing.T) {
	v := newEnv(t, nil)
	_, err := v.engine.Transfer(context.Background(), core.TransferOptions{Source: "/src/music", Destination: "d"})
	require.NoError(t, err)
	saved := testutil.ReadFile(t, v.fs, v.paths.LedgerFile())

	report, err := v.engine.Remove(context.Background(), core.RemoveOptions{Prefix: "d/", DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Files())
	assert.Equal(t, saved, testutil.ReadFile(t, v.fs, v.paths.LedgerFile()))
	assert.Equal(t, 1, v.dirCount(v.paths.BackupsDir()))
}

func TestNew_RejectsUnknownStrategies(t *testing.T) {
	t.Setenv(paths.EnvDataDir, "/data")
	cfg := config.Default()
	cfg.Placement.Order = "random"
	p, err := paths.New(cfg.Paths)
	require.NoError(t, err)

	_, err = core.New(core.Options{Config: cfg, Paths: p, FS: testutil.NewTestFS()})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}
