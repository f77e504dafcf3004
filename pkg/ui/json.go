package ui

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/drivepool/pkg/commands/accounts"
	"github.com/arthur-debert/drivepool/pkg/commands/remove"
	"github.com/arthur-debert/drivepool/pkg/commands/upload"
	"github.com/arthur-debert/drivepool/pkg/errors"
)

type jsonRenderer struct {
	w io.Writer
}

type failureView struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type outcomeView struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	Status  string `json:"status"`
	Account string `json:"account,omitempty"`
	Error   string `json:"error,omitempty"`
}

type uploadView struct {
	RunID        string               `json:"run_id"`
	DryRun       bool                 `json:"dry_run"`
	NewAccounts  []string             `json:"new_accounts"`
	Placed       int                  `json:"placed"`
	PlacedBytes  int64                `json:"placed_bytes"`
	Skipped      int                  `json:"skipped"`
	Failed       int                  `json:"failed"`
	Loads        []upload.AccountLoad `json:"loads"`
	Outcomes     []outcomeView        `json:"outcomes"`
	Failures     []failureView        `json:"failures"`
	Directives   []string             `json:"directives"`
	LedgerBackup string               `json:"ledger_backup,omitempty"`
	RunBackup    string               `json:"run_backup,omitempty"`
}

type removeView struct {
	RunID        string   `json:"run_id,omitempty"`
	DryRun       bool     `json:"dry_run"`
	Nothing      bool     `json:"nothing"`
	Files        int      `json:"files"`
	Bytes        int64    `json:"bytes"`
	Directives   []string `json:"directives"`
	LedgerBackup string   `json:"ledger_backup,omitempty"`
	RunBackup    string   `json:"run_backup,omitempty"`
}

type accountsView struct {
	Accounts []accountRowView `json:"accounts"`
	Total    accountRowView   `json:"total"`
	Problems []string         `json:"problems"`
}

type accountRowView struct {
	accounts.Row
	Percent float64 `json:"used_percent"`
}

func (r *jsonRenderer) view(result interface{}) interface{} {
	switch v := result.(type) {
	case *upload.Result:
		rep := v.Report
		out := uploadView{
			RunID:        rep.RunID,
			DryRun:       rep.DryRun,
			NewAccounts:  rep.NewAccounts,
			Placed:       rep.Summary.Placed,
			PlacedBytes:  rep.Summary.PlacedBytes,
			Skipped:      rep.Summary.Skipped,
			Failed:       rep.Summary.Failed,
			Loads:        v.Loads,
			Directives:   rep.Lines,
			LedgerBackup: rep.LedgerBackup,
			RunBackup:    rep.RunBackup,
		}
		for _, o := range rep.Outcomes {
			ov := outcomeView{
				Path:    o.Descriptor.DestinationPathWithName,
				Size:    o.Descriptor.Size,
				Status:  string(o.Status),
				Account: o.AccountID,
			}
			if o.Err != nil {
				ov.Error = o.Err.Error()
			}
			out.Outcomes = append(out.Outcomes, ov)
		}
		for _, f := range v.Failures {
			fv := failureView{Path: f.Descriptor.DestinationPathWithName, Size: f.Descriptor.Size, Status: string(f.Status)}
			if f.Err != nil {
				fv.Error = f.Err.Error()
			}
			out.Failures = append(out.Failures, fv)
		}
		return out
	case *remove.Result:
		out := removeView{Nothing: v.Nothing}
		if rep := v.Report; rep != nil {
			out.RunID = rep.RunID
			out.DryRun = rep.DryRun
			out.Files = rep.Files()
			out.Bytes = rep.Bytes()
			out.Directives = rep.Lines
			out.LedgerBackup = rep.LedgerBackup
			out.RunBackup = rep.RunBackup
		}
		return out
	case *accounts.Result:
		out := accountsView{Problems: v.Problems, Total: accountRowView{Row: v.Total, Percent: v.Total.Percent()}}
		for _, row := range v.Rows {
			out.Accounts = append(out.Accounts, accountRowView{Row: row, Percent: row.Percent()})
		}
		return out
	}
	return result
}

func (r *jsonRenderer) write(v interface{}) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode output")
	}
	return nil
}

func (r *jsonRenderer) Render(result interface{}) error {
	return r.write(r.view(result))
}

func (r *jsonRenderer) RenderError(err error) error {
	return r.write(map[string]interface{}{
		"error":   err.Error(),
		"code":    errors.GetErrorCode(err),
		"details": errors.GetErrorDetails(err),
	})
}

func (r *jsonRenderer) RenderMessage(msg string) error {
	return r.write(map[string]string{"message": msg})
}
