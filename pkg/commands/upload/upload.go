package upload

import (
	"context"
	"sort"
	"strings"

	"github.com/arthur-debert/drivepool/pkg/core"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/logging"
	"github.com/arthur-debert/drivepool/pkg/planner"
)

// UploadOptions holds options for the upload command
type UploadOptions struct {
	Engine *core.Engine
	// Source is a local path or "id=<folder>"
	Source       string
	Destination  string
	UploadFolder bool
	FolderName   string
	DryRun       bool
}

// AccountLoad is what one account receives in a run
type AccountLoad struct {
	AccountID string `json:"account_id"`
	Files     int    `json:"files"`
	Bytes     int64  `json:"bytes"`
}

// Result is the outcome of an upload
type Result struct {
	Report *core.TransferReport
	// Loads is sorted by account id
	Loads []AccountLoad
	// Failures are the outcomes that were neither placed nor skipped
	Failures []planner.Outcome
}

// Upload places every file of a source onto the account pool
func Upload(ctx context.Context, opts UploadOptions) (*Result, error) {
	logger := logging.GetLogger("commands.upload")

	if opts.Engine == nil {
		return nil, errors.New(errors.ErrInternal, "upload needs an engine")
	}
	source := strings.TrimSpace(opts.Source)
	if source == "" {
		return nil, errors.New(errors.ErrInvalidInput, "no source given")
	}

	report, err := opts.Engine.Transfer(ctx, core.TransferOptions{
		Source:       source,
		Destination:  strings.Trim(opts.Destination, "/"),
		UploadFolder: opts.UploadFolder,
		FolderName:   opts.FolderName,
		DryRun:       opts.DryRun,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Report: report}
	loads := map[string]*AccountLoad{}
	for _, o := range report.Outcomes {
		switch {
		case o.Status == planner.StatusPlaced:
			load, ok := loads[o.AccountID]
			if !ok {
				load = &AccountLoad{AccountID: o.AccountID}
				loads[o.AccountID] = load
			}
			load.Files++
			load.Bytes += o.Descriptor.Size
		case o.Status.Failed():
			result.Failures = append(result.Failures, o)
		}
	}
	for _, load := range loads {
		result.Loads = append(result.Loads, *load)
	}
	sort.Slice(result.Loads, func(i, j int) bool { return result.Loads[i].AccountID < result.Loads[j].AccountID })

	logger.Info().
		Int("placed", report.Summary.Placed).
		Int("skipped", report.Summary.Skipped).
		Int("failed", report.Summary.Failed).
		Msg("Command finished")
	return result, nil
}
