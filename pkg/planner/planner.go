// Package planner assigns file descriptors to accounts and groups the
// results into batches, one per (account, destination root).
package planner

import (
	"github.com/rs/zerolog"

	"github.com/arthur-debert/drivepool/pkg/allocator"
	"github.com/arthur-debert/drivepool/pkg/dedup"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/ledger"
	"github.com/arthur-debert/drivepool/pkg/logging"
	"github.com/arthur-debert/drivepool/pkg/types"
)

// Status is the per-file outcome of a placement run
type Status string

const (
	StatusPlaced      Status = "placed"
	StatusSkipped     Status = "skipped"
	StatusUnplaceable Status = "unplaceable"
	StatusConflict    Status = "conflict"
	StatusInvalid     Status = "invalid"
)

// Failed reports whether the status counts as a failure in the summary
func (s Status) Failed() bool {
	return s == StatusUnplaceable || s == StatusConflict || s == StatusInvalid
}

// Outcome records what happened to one descriptor
type Outcome struct {
	Descriptor types.FileDescriptor
	Status     Status
	// AccountID is the receiving account when placed, or the owner when
	// skipped or conflicting
	AccountID string
	Err       error
}

// Batch is the set of files one account receives under one destination root
type Batch struct {
	AccountID       string
	DestinationRoot string
	IncludePaths    []string
	Bytes           int64
}

// Summary totals a run
type Summary struct {
	Placed      int
	Skipped     int
	Failed      int
	PlacedBytes int64
}

// Result is the output of Plan
type Result struct {
	Ledger   *ledger.Ledger
	Batches  []Batch
	Outcomes []Outcome
}

// Summary counts outcomes by kind
func (r *Result) Summary() Summary {
	var s Summary
	for _, o := range r.Outcomes {
		switch {
		case o.Status == StatusPlaced:
			s.Placed++
			s.PlacedBytes += o.Descriptor.Size
		case o.Status == StatusSkipped:
			s.Skipped++
		case o.Status.Failed():
			s.Failed++
		}
	}
	return s
}

// Planner places descriptors using an allocation order and dedup strategy
type Planner struct {
	alloc *allocator.Allocator
	dedup dedup.Strategy
}

// New creates a Planner
func New(alloc *allocator.Allocator, strategy dedup.Strategy) *Planner {
	return &Planner{alloc: alloc, dedup: strategy}
}

// Plan processes descriptors in input order and mutates l in place; pass a
// clone when the original must survive. Per-file problems become outcomes,
// never errors.
func (p *Planner) Plan(l *ledger.Ledger, descriptors []types.FileDescriptor) *Result {
	logger := logging.GetLogger("planner")

	res := &Result{Ledger: l, Outcomes: make([]Outcome, 0, len(descriptors))}
	batchIndex := make(map[[2]string]int)

	for _, d := range descriptors {
		out := p.placeOne(l, d)
		res.Outcomes = append(res.Outcomes, out)
		logOutcome(logger, out)

		if out.Status != StatusPlaced {
			continue
		}
		key := [2]string{out.AccountID, d.DestinationDir}
		i, ok := batchIndex[key]
		if !ok {
			i = len(res.Batches)
			batchIndex[key] = i
			res.Batches = append(res.Batches, Batch{AccountID: out.AccountID, DestinationRoot: d.DestinationDir})
		}
		res.Batches[i].IncludePaths = append(res.Batches[i].IncludePaths, d.RelativeSourcePath)
		res.Batches[i].Bytes += d.Size
	}

	s := res.Summary()
	logger.Info().
		Int("placed", s.Placed).
		Int("skipped", s.Skipped).
		Int("failed", s.Failed).
		Int("batches", len(res.Batches)).
		Msg("Placement planned")
	return res
}

func (p *Planner) placeOne(l *ledger.Ledger, d types.FileDescriptor) Outcome {
	out := Outcome{Descriptor: d}

	if d.Size < 0 {
		out.Status = StatusInvalid
		out.Err = errors.Newf(errors.ErrInvalidInput, "%s: size cannot be negative", d.DestinationPathWithName)
		return out
	}
	if d.DestinationPathWithName == "" {
		out.Status = StatusInvalid
		out.Err = errors.Newf(errors.ErrInvalidInput, "%s: empty destination path", d.RelativeSourcePath)
		return out
	}

	check := p.dedup.Check(l, d)
	switch check.Verdict {
	case dedup.AlreadyPlaced:
		out.Status = StatusSkipped
		out.AccountID = check.AccountID
		out.Err = errors.Newf(errors.ErrAlreadyPlaced, "%s already placed on %s", d.DestinationPathWithName, check.AccountID)
		return out
	case dedup.Conflict:
		out.Status = StatusConflict
		out.AccountID = check.AccountID
		out.Err = errors.Newf(errors.ErrConflict, "%s is placed on %s with different content", d.DestinationPathWithName, check.AccountID).
			WithDetail("stored_md5", check.Existing.ContentHash).
			WithDetail("md5", d.ContentHash)
		return out
	}

	accountID, ok := p.alloc.Select(l, d.Size)
	if !ok {
		out.Status = StatusUnplaceable
		out.Err = errors.Newf(errors.ErrNoSuitableAccount, "no account has %d bytes free for %s", d.Size, d.DestinationPathWithName)
		return out
	}

	if err := l.Place(accountID, d.DestinationPathWithName, ledger.FileRecord{Size: d.Size, ContentHash: d.ContentHash}); err != nil {
		out.Status = StatusUnplaceable
		out.AccountID = accountID
		out.Err = err
		return out
	}

	out.Status = StatusPlaced
	out.AccountID = accountID
	return out
}

func logOutcome(logger zerolog.Logger, o Outcome) {
	var event *zerolog.Event
	switch {
	case o.Status == StatusPlaced:
		event = logger.Debug()
	case o.Status == StatusSkipped:
		event = logger.Info()
	default:
		event = logger.Warn().Err(o.Err)
	}
	event.
		Str("status", string(o.Status)).
		Str("path", o.Descriptor.DestinationPathWithName).
		Int64("size", o.Descriptor.Size).
		Str("account", o.AccountID).
		Msg("File outcome")
}
