package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/arthur-debert/drivepool/pkg/config"
	"github.com/arthur-debert/drivepool/pkg/core"
	"github.com/arthur-debert/drivepool/pkg/paths"
	"github.com/arthur-debert/drivepool/pkg/types"
	"github.com/stretchr/testify/require"
)

// DataDir is where TestEngine keeps its state
const DataDir = "/data"

// TestEngine is an engine over an in-memory filesystem
type TestEngine struct {
	*core.Engine
	FS     types.FS
	Paths  paths.Paths
	Config *config.Config
}

// NewTestEngine builds an engine with the given static accounts, each of
// the given capacity. mutate may adjust the config before wiring.
func NewTestEngine(t *testing.T, capacity int64, accounts []string, mutate func(*config.Config)) *TestEngine {
	t.Helper()
	t.Setenv(paths.EnvDataDir, DataDir)

	cfg := config.Default()
	cfg.Accounts.DefaultCapacity = config.ByteSize(capacity)
	cfg.Accounts.Static = accounts
	if mutate != nil {
		mutate(cfg)
	}
	p, err := paths.New(cfg.Paths)
	require.NoError(t, err)

	fs := NewTestFS()
	e, err := core.New(core.Options{
		Config: cfg,
		Paths:  p,
		FS:     fs,
		Clock:  StepClock(RefTime, time.Second),
	})
	require.NoError(t, err)
	return &TestEngine{Engine: e, FS: fs, Paths: p, Config: cfg}
}

// Upload runs a real transfer of files written under /src
func (e *TestEngine) Upload(t *testing.T, files map[string]string, destination string) *core.TransferReport {
	t.Helper()
	WriteFiles(t, e.FS, files)
	report, err := e.Transfer(context.Background(), core.TransferOptions{Source: "/src", Destination: destination})
	require.NoError(t, err)
	return report
}
