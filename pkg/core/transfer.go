package core

import (
	"context"

	"github.com/arthur-debert/drivepool/pkg/backup"
	"github.com/arthur-debert/drivepool/pkg/config"
	"github.com/arthur-debert/drivepool/pkg/directive"
	"github.com/arthur-debert/drivepool/pkg/lister"
	"github.com/arthur-debert/drivepool/pkg/logging"
	"github.com/arthur-debert/drivepool/pkg/planner"
)

// TransferOptions describes an upload run
type TransferOptions struct {
	// Source is a local path or "id=<folder>" for a drive folder
	Source      string
	Destination string
	// UploadFolder keeps the source folder's name under Destination
	UploadFolder bool
	// FolderName names a remote source folder for UploadFolder
	FolderName string
	DryRun     bool
}

// TransferReport is what a transfer run did
type TransferReport struct {
	RunID       string
	DryRun      bool
	NewAccounts []string
	Outcomes    []planner.Outcome
	Summary     planner.Summary
	Directives  []directive.Directive
	// Lines are the directives rendered for the mover
	Lines        []string
	LedgerBackup string
	RunBackup    string
}

// Changed reports whether anything was placed
func (r *TransferReport) Changed() bool {
	return r.Summary.Placed > 0
}

// Transfer places a source's files and emits one transfer directive per
// (account, destination root).
func (e *Engine) Transfer(ctx context.Context, opts TransferOptions) (*TransferReport, error) {
	logger := logging.GetLogger("core.transfer")
	logger.Info().
		Str("source", opts.Source).
		Str("destination", opts.Destination).
		Bool("upload_folder", opts.UploadFolder).
		Bool("dry_run", opts.DryRun).
		Msg("Starting transfer")
	defer logging.LogOperationStart(logger, "transfer")()

	src, err := e.lister(opts)
	if err != nil {
		return nil, err
	}

	before, added, err := e.Snapshot()
	if err != nil {
		return nil, err
	}

	descriptors, err := src.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &TransferReport{
		RunID:       directive.NewRunID(e.now()),
		DryRun:      opts.DryRun,
		NewAccounts: added,
	}
	runLog := logging.WithFields(map[string]interface{}{"component": "core.transfer", "run_id": report.RunID})

	after := before.Clone()
	res := e.planner.Plan(after, descriptors)
	report.Outcomes = res.Outcomes
	report.Summary = res.Summary()

	if !report.Changed() {
		runLog.Info().Msg("No changes")
		return report, nil
	}

	ws, err := e.workspace(opts.DryRun)
	if err != nil {
		return nil, err
	}
	compiler, err := directive.NewCompiler(ws, e.paths.IncludeDir(), report.RunID, e.cfg.Directives.IncludeEncoding)
	if err != nil {
		return nil, err
	}
	for _, b := range res.Batches {
		d, err := compiler.CompileTransfer(b.AccountID, b.IncludePaths, src.SourceRoot(), b.DestinationRoot)
		if err != nil {
			return nil, err
		}
		report.Directives = append(report.Directives, d)
	}
	report.Lines = directive.FormatAll(e.formatter, report.Directives)

	if opts.DryRun {
		runLog.Info().Int("directives", len(report.Directives)).Msg("Dry run: ledger and backups left untouched")
		return report, nil
	}

	report.LedgerBackup, report.RunBackup, err = e.persist(after, backup.Run{
		Parameters: backup.Parameters{
			Operation:    "transfer",
			RunID:        report.RunID,
			Source:       opts.Source,
			Destination:  opts.Destination,
			UploadFolder: opts.UploadFolder,
			Order:        e.cfg.Placement.Order,
			Dedup:        e.cfg.Placement.Dedup,
			Placed:       report.Summary.Placed,
			Skipped:      report.Summary.Skipped,
			Failed:       report.Summary.Failed,
		},
		Directives:   report.Lines,
		LedgerBefore: before,
		LedgerAfter:  after,
		IncludeFiles: compiler.Artifacts(),
	})
	if err != nil {
		return report, err
	}
	return report, nil
}

func (e *Engine) lister(opts TransferOptions) (lister.Lister, error) {
	if folderID, ok := lister.ParseRemoteSource(opts.Source); ok {
		return lister.NewRemote(e.runner, lister.RemoteOptions{
			FolderID:     folderID,
			FolderName:   opts.FolderName,
			MasterRemote: e.cfg.Directives.MasterRemote,
			Destination:  opts.Destination,
			UploadFolder: opts.UploadFolder,
		})
	}
	return lister.NewLocal(e.sourceFS, lister.LocalOptions{
		Source:       opts.Source,
		Destination:  opts.Destination,
		UploadFolder: opts.UploadFolder,
		Hash:         e.cfg.Placement.Dedup == config.DedupContent,
	})
}
