package core

import (
	"context"

	"github.com/arthur-debert/drivepool/pkg/backup"
	"github.com/arthur-debert/drivepool/pkg/directive"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/logging"
	"github.com/arthur-debert/drivepool/pkg/removal"
)

// RemoveOptions describes a removal run
type RemoveOptions struct {
	Prefix string
	DryRun bool
}

// RemoveReport is what a removal run did
type RemoveReport struct {
	RunID        string
	DryRun       bool
	Batches      []removal.Batch
	Directives   []directive.Directive
	Lines        []string
	LedgerBackup string
	RunBackup    string
}

// Files returns the number of released files
func (r *RemoveReport) Files() int {
	return (&removal.Result{Batches: r.Batches}).Files()
}

// Bytes returns the total released size
func (r *RemoveReport) Bytes() int64 {
	return (&removal.Result{Batches: r.Batches}).Bytes()
}

// Remove releases every placed file under a prefix and emits one delete
// directive per account. When nothing matches, the error is
// ErrNothingToRemove; the ledger is left alone but the run is still
// archived.
func (e *Engine) Remove(ctx context.Context, opts RemoveOptions) (*RemoveReport, error) {
	logger := logging.GetLogger("core.remove")
	logger.Info().Str("prefix", opts.Prefix).Bool("dry_run", opts.DryRun).Msg("Starting removal")
	defer logging.LogOperationStart(logger, "remove")()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	before, _, err := e.Snapshot()
	if err != nil {
		return nil, err
	}

	report := &RemoveReport{RunID: directive.NewRunID(e.now()), DryRun: opts.DryRun}
	params := backup.Parameters{Operation: "remove", RunID: report.RunID, Prefix: opts.Prefix}
	runLog := logging.WithFields(map[string]interface{}{"component": "core.remove", "run_id": report.RunID})

	after := before.Clone()
	res, planErr := removal.Plan(after, opts.Prefix)
	if planErr != nil {
		if !errors.IsErrorCode(planErr, errors.ErrNothingToRemove) || opts.DryRun {
			return report, planErr
		}
		runLog.Info().Str("prefix", opts.Prefix).Msg("Nothing to remove, archiving the attempt")
		_, report.RunBackup, err = e.persist(nil, backup.Run{
			Parameters:   params,
			LedgerBefore: before,
			LedgerAfter:  before,
		})
		if err != nil {
			return report, err
		}
		return report, planErr
	}
	report.Batches = res.Batches

	ws, err := e.workspace(opts.DryRun)
	if err != nil {
		return nil, err
	}
	compiler, err := directive.NewCompiler(ws, e.paths.IncludeDir(), report.RunID, e.cfg.Directives.IncludeEncoding)
	if err != nil {
		return nil, err
	}
	for _, b := range res.Batches {
		d, err := compiler.CompileDelete(b.AccountID, b.Paths)
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
		Parameters:   params,
		Directives:   report.Lines,
		LedgerBefore: before,
		LedgerAfter:  after,
		IncludeFiles: compiler.Artifacts(),
	})
	return report, err
}
