package remove

import (
	"context"

	"github.com/arthur-debert/drivepool/pkg/core"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/logging"
)

// RemoveOptions holds options for the remove command
type RemoveOptions struct {
	Engine *core.Engine
	// Prefix is matched literally against placed destination paths
	Prefix string
	// All allows an empty prefix, releasing every placed file
	All    bool
	DryRun bool
}

// Result is the outcome of a removal. Nothing is true when the prefix
// matched no file; the run is still archived in that case.
type Result struct {
	Report  *core.RemoveReport
	Nothing bool
}

// Remove releases every placed file under a prefix
func Remove(ctx context.Context, opts RemoveOptions) (*Result, error) {
	logger := logging.GetLogger("commands.remove")

	if opts.Engine == nil {
		return nil, errors.New(errors.ErrInternal, "remove needs an engine")
	}
	if opts.Prefix == "" && !opts.All {
		return nil, errors.New(errors.ErrInvalidInput, "an empty prefix would remove every file; pass --all to confirm")
	}
	if opts.Prefix != "" && opts.All {
		return nil, errors.New(errors.ErrInvalidInput, "--all does not take a prefix")
	}

	report, err := opts.Engine.Remove(ctx, core.RemoveOptions{Prefix: opts.Prefix, DryRun: opts.DryRun})
	if errors.IsErrorCode(err, errors.ErrNothingToRemove) {
		logger.Warn().Str("prefix", opts.Prefix).Msg("No placed file matches the prefix")
		return &Result{Report: report, Nothing: true}, nil
	}
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("files", report.Files()).
		Int64("bytes", report.Bytes()).
		Int("directives", len(report.Directives)).
		Msg("Command finished")
	return &Result{Report: report}, nil
}
