package drivepool

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/drivepool/internal/version"
	"github.com/arthur-debert/drivepool/pkg/config"
	"github.com/arthur-debert/drivepool/pkg/core"
	"github.com/arthur-debert/drivepool/pkg/logging"
	"github.com/arthur-debert/drivepool/pkg/paths"
	"github.com/arthur-debert/drivepool/pkg/ui"
)

// now is the engine clock; run directories and ledger backups are named
// from it
var now = time.Now

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity  int
	started    time.Time
	dryRun     bool
	configFile string
	format     string
	order      string
	dedup      string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "drivepool",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			opts.started = time.Now()
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.LogDuration(opts.started, cmd.Name())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	pf.BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	pf.StringVarP(&opts.configFile, "config", "c", "", MsgFlagConfig)
	pf.StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	pf.StringVar(&opts.order, "order", "", MsgFlagOrder)
	pf.StringVar(&opts.dedup, "dedup", "", MsgFlagDedup)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetHelpCommandGroupID("misc")
	rootCmd.SetCompletionCommandGroupID("misc")

	rootCmd.AddCommand(newUploadCmd(opts))
	rootCmd.AddCommand(newRemoveCmd(opts))
	rootCmd.AddCommand(newStructureCmd(opts))
	rootCmd.AddCommand(newAccountsCmd(opts))
	rootCmd.AddCommand(newGenConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

// loadConfig layers defaults, user and project files, env, then flags
func (o *globalOptions) loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}

	overrides := map[string]interface{}{}
	if o.order != "" {
		overrides["placement.order"] = o.order
	}
	if o.dedup != "" {
		overrides["placement.dedup"] = o.dedup
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: o.configFile,
		WorkDir:    wd,
		Overrides:  overrides,
	})
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	return cfg, nil
}

// engine wires an engine on the real filesystem
func (o *globalOptions) engine() (*core.Engine, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	p, err := paths.New(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}
	log.Debug().Str("data_dir", p.DataDir()).Str("ledger", p.LedgerFile()).Msg("Using data directory")
	return core.New(core.Options{Config: cfg, Paths: p, Clock: now})
}

func (o *globalOptions) renderer(cmd *cobra.Command) (ui.Renderer, error) {
	format, err := ui.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}
