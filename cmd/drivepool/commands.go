package drivepool

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/drivepool/internal/version"
	"github.com/arthur-debert/drivepool/pkg/commands/accounts"
	"github.com/arthur-debert/drivepool/pkg/commands/genconfig"
	"github.com/arthur-debert/drivepool/pkg/commands/remove"
	"github.com/arthur-debert/drivepool/pkg/commands/structure"
	"github.com/arthur-debert/drivepool/pkg/commands/upload"
	"github.com/arthur-debert/drivepool/pkg/filesystem"
)

func newUploadCmd(opts *globalOptions) *cobra.Command {
	var (
		uploadFolder bool
		folderName   string
	)

	cmd := &cobra.Command{
		Use:     "upload <source> <destination>",
		Short:   MsgUploadShort,
		Long:    MsgUploadLong,
		Example: MsgUploadExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			result, err := upload.Upload(cmd.Context(), upload.UploadOptions{
				Engine:       engine,
				Source:       args[0],
				Destination:  args[1],
				UploadFolder: uploadFolder,
				FolderName:   folderName,
				DryRun:       opts.dryRun,
			})
			if err != nil {
				return err
			}
			return renderer.Render(result)
		},
	}

	cmd.Flags().BoolVarP(&uploadFolder, "upload-folder", "u", false, MsgFlagUploadFolder)
	cmd.Flags().StringVar(&folderName, "folder-name", "", MsgFlagFolderName)
	return cmd
}

func newRemoveCmd(opts *globalOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "remove [prefix]",
		Short:   MsgRemoveShort,
		Long:    MsgRemoveLong,
		Example: MsgRemoveExample,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			var prefix string
			if len(args) == 1 {
				prefix = args[0]
			}
			result, err := remove.Remove(cmd.Context(), remove.RemoveOptions{
				Engine: engine,
				Prefix: prefix,
				All:    all,
				DryRun: opts.dryRun,
			})
			if err != nil {
				return err
			}
			return renderer.Render(result)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, MsgFlagAll)
	return cmd
}

func newStructureCmd(opts *globalOptions) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:     "structure [prefix]",
		Aliases: []string{"tree"},
		Short:   MsgStructureShort,
		Long:    MsgStructureLong,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			var prefix string
			if len(args) == 1 {
				prefix = args[0]
			}
			result, err := structure.Structure(structure.StructureOptions{Engine: engine, Prefix: prefix, Depth: depth})
			if err != nil {
				return err
			}
			return renderer.Render(result)
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 0, MsgFlagDepth)
	return cmd
}

func newAccountsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "accounts",
		Short:   MsgAccountsShort,
		Long:    MsgAccountsLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			result, err := accounts.Accounts(accounts.AccountsOptions{Engine: engine})
			if err != nil {
				return err
			}
			return renderer.Render(result)
		},
	}
}

func newGenConfigCmd(opts *globalOptions) *cobra.Command {
	var write, force, effective bool

	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}
			wd, err := os.Getwd()
			if err != nil {
				return err
			}

			genOpts := genconfig.GenConfigOptions{
				Write:      write,
				Dir:        wd,
				Force:      force,
				FileSystem: filesystem.NewOS(),
			}
			if effective {
				if genOpts.Effective, err = opts.loadConfig(); err != nil {
					return err
				}
			}

			result, err := genconfig.GenConfig(genOpts)
			if err != nil {
				return err
			}
			return renderer.Render(result)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagWrite)
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	cmd.Flags().BoolVar(&effective, "effective", false, MsgFlagEffective)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "drivepool version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}

func newManCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Hidden:  true,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			header := &doc.GenManHeader{Title: "DRIVEPOOL", Section: "1"}
			return doc.GenManTree(cmd.Root(), header, dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", MsgFlagManDir)
	return cmd
}
