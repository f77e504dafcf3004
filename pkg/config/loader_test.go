// pkg/config/loader_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (temp dirs), environment
// PURPOSE: Test configuration layering, env overrides and validation

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/drivepool/pkg/config"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolatedOptions(t *testing.T) config.LoadOptions {
	t.Helper()
	return config.LoadOptions{
		WorkDir:       t.TempDir(),
		UserConfigDir: t.TempDir(),
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(isolatedOptions(t))
	require.NoError(t, err)

	assert.Equal(t, "drive_data.json", cfg.Paths.LedgerFile)
	assert.Equal(t, "db_backups", cfg.Paths.LedgerBackupDir)
	assert.Equal(t, "rclone_include_files", cfg.Paths.IncludeDir)
	assert.Equal(t, "backups", cfg.Paths.BackupsDir)
	assert.Equal(t, "accounts", cfg.Paths.AccountsDir)
	assert.Equal(t, config.ByteSize(16052440268), cfg.Accounts.DefaultCapacity)
	assert.Equal(t, config.OrderFullest, cfg.Placement.Order)
	assert.Equal(t, config.DedupPath, cfg.Placement.Dedup)
	assert.Equal(t, "g", cfg.Directives.RemotePrefix)
	assert.Equal(t, "god", cfg.Directives.MasterRemote)
	assert.Contains(t, cfg.Directives.CopyFlags, "--ignore-existing")
}

func TestLoad_LayerPrecedence(t *testing.T) {
	opts := isolatedOptions(t)

	require.NoError(t, os.WriteFile(filepath.Join(opts.UserConfigDir, config.UserConfigFile), []byte(`
[placement]
order = "emptiest"
dedup = "content"

[accounts]
default_capacity = "10GiB"
`), 0644))

	require.NoError(t, os.WriteFile(filepath.Join(opts.WorkDir, config.ProjectConfigFile), []byte(`
[placement]
order = "fullest"

[accounts.capacities]
"sa-big" = "1TiB"
`), 0644))

	t.Setenv("DRIVEPOOL_ACCOUNTS_DEFAULT_CAPACITY", "2GiB")

	cfg, err := config.Load(opts)
	require.NoError(t, err)

	assert.Equal(t, config.OrderFullest, cfg.Placement.Order, "project file wins over user file")
	assert.Equal(t, config.DedupContent, cfg.Placement.Dedup, "user file wins over defaults")
	assert.Equal(t, config.ByteSize(2<<30), cfg.Accounts.DefaultCapacity, "env wins over files")
	assert.Equal(t, int64(1<<40), cfg.Accounts.CapacityFor("sa-big"))
	assert.Equal(t, int64(2<<30), cfg.Accounts.CapacityFor("sa-other"))
}

func TestLoad_OverridesWinOverEnv(t *testing.T) {
	opts := isolatedOptions(t)
	t.Setenv("DRIVEPOOL_PLACEMENT_ORDER", "emptiest")
	opts.Overrides = map[string]interface{}{"placement.order": "fullest", "placement.dedup": "content"}

	cfg, err := config.Load(opts)
	require.NoError(t, err)

	assert.Equal(t, config.OrderFullest, cfg.Placement.Order)
	assert.Equal(t, config.DedupContent, cfg.Placement.Dedup)
}

func TestLoad_EnvSlices(t *testing.T) {
	t.Setenv("DRIVEPOOL_DIRECTIVES_COPY_FLAGS", "--dry-run,--checksum")

	cfg, err := config.Load(isolatedOptions(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"--dry-run", "--checksum"}, cfg.Directives.CopyFlags)
}

func TestLoad_ExplicitConfigFileMustExist(t *testing.T) {
	opts := isolatedOptions(t)
	opts.ConfigFile = filepath.Join(t.TempDir(), "missing.toml")

	_, err := config.Load(opts)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound), "got %v", err)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.ErrorCode
	}{
		{"bad_order", "[placement]\norder = \"random\"\n", errors.ErrConfigValid},
		{"bad_dedup", "[placement]\ndedup = \"name\"\n", errors.ErrConfigValid},
		{"bad_encoding", "[directives]\ninclude_encoding = \"regex\"\n", errors.ErrConfigValid},
		{"bad_size", "[accounts]\ndefault_capacity = \"lots\"\n", errors.ErrConfigParse},
		{"negative_override", "[accounts.capacities]\nx = -5\n", errors.ErrConfigValid},
		{"not_toml", "this is = = not toml", errors.ErrConfigLoad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := isolatedOptions(t)
			opts.ConfigFile = filepath.Join(opts.WorkDir, "custom.toml")
			require.NoError(t, os.WriteFile(opts.ConfigFile, []byte(tt.content), 0644))

			_, err := config.Load(opts)
			assert.Equal(t, tt.code, errors.GetErrorCode(err), "got %v", err)
		})
	}
}

func TestDefault_IgnoresEnvironment(t *testing.T) {
	t.Setenv("DRIVEPOOL_PLACEMENT_ORDER", "emptiest")

	cfg := config.Default()
	assert.Equal(t, config.OrderFullest, cfg.Placement.Order)
}

func TestRender_RoundTrips(t *testing.T) {
	cfg := config.Default()
	cfg.Accounts.Capacities = map[string]config.ByteSize{"sa-1": 5 << 30}

	out, err := config.Render(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "[placement]")
	assert.Contains(t, out, "5GiB")

	opts := isolatedOptions(t)
	opts.ConfigFile = filepath.Join(opts.WorkDir, "rendered.toml")
	require.NoError(t, os.WriteFile(opts.ConfigFile, []byte(out), 0644))

	back, err := config.Load(opts)
	require.NoError(t, err)
	assert.Equal(t, cfg.Accounts.DefaultCapacity, back.Accounts.DefaultCapacity)
	assert.Equal(t, int64(5<<30), back.Accounts.CapacityFor("sa-1"))
	assert.Equal(t, cfg.Directives.CopyFlags, back.Directives.CopyFlags)
}
