package accounts

import (
	"github.com/arthur-debert/drivepool/pkg/core"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/logging"
)

// AccountsOptions holds options for the accounts command
type AccountsOptions struct {
	Engine *core.Engine
}

// Row is one account's usage
type Row struct {
	ID        string `json:"id"`
	Capacity  int64  `json:"capacity"`
	Used      int64  `json:"used_space"`
	Remaining int64  `json:"remaining_space"`
	Files     int    `json:"files"`
	// New is set for accounts discovered in this invocation and not yet
	// saved to the ledger
	New bool `json:"new"`
}

// Percent returns the used share of capacity, 0 to 100
func (r Row) Percent() float64 {
	if r.Capacity <= 0 {
		return 0
	}
	return float64(r.Used) * 100 / float64(r.Capacity)
}

// Result lists every account plus the pool totals
type Result struct {
	Rows  []Row
	Total Row
	// Problems are ledger consistency violations; empty when healthy
	Problems []string
}

// Accounts reports usage per account and checks ledger consistency
func Accounts(opts AccountsOptions) (*Result, error) {
	logger := logging.GetLogger("commands.accounts")

	if opts.Engine == nil {
		return nil, errors.New(errors.ErrInternal, "accounts needs an engine")
	}

	l, added, problems, err := opts.Engine.Inspect()
	if err != nil {
		return nil, err
	}
	isNew := map[string]bool{}
	for _, id := range added {
		isNew[id] = true
	}

	result := &Result{Total: Row{ID: "total"}}
	for _, a := range l.Accounts() {
		row := Row{
			ID:        a.ID,
			Capacity:  a.Capacity(),
			Used:      a.UsedSpace,
			Remaining: a.RemainingSpace,
			Files:     a.FileCount(),
			New:       isNew[a.ID],
		}
		result.Rows = append(result.Rows, row)
		result.Total.Capacity += row.Capacity
		result.Total.Used += row.Used
		result.Total.Remaining += row.Remaining
		result.Total.Files += row.Files
	}
	for _, problem := range problems {
		result.Problems = append(result.Problems, problem.Error())
	}

	logger.Info().Int("accounts", len(result.Rows)).Int("problems", len(result.Problems)).Msg("Command finished")
	return result, nil
}
