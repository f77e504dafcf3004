// Package dedup decides whether a file descriptor is already in the ledger.
package dedup

import (
	"github.com/arthur-debert/drivepool/pkg/config"
	"github.com/arthur-debert/drivepool/pkg/ledger"
	"github.com/arthur-debert/drivepool/pkg/registry"
	"github.com/arthur-debert/drivepool/pkg/types"
)

// Verdict is the outcome of a dedup check
type Verdict int

const (
	// New means the destination path is free
	New Verdict = iota
	// AlreadyPlaced means the file is in the ledger and should be skipped
	AlreadyPlaced
	// Conflict means the path is taken by a different file
	Conflict
)

func (v Verdict) String() string {
	switch v {
	case New:
		return "new"
	case AlreadyPlaced:
		return "already-placed"
	case Conflict:
		return "conflict"
	}
	return "unknown"
}

// Result carries the verdict and, unless New, the owning account and its
// stored record
type Result struct {
	Verdict   Verdict
	AccountID string
	Existing  ledger.FileRecord
}

// Strategy checks a descriptor against the ledger
type Strategy interface {
	Name() string
	Check(l *ledger.Ledger, d types.FileDescriptor) Result
}

// Strategies holds the strategies selectable through placement.dedup
var Strategies = registry.New[Strategy]("dedup strategy")

func init() {
	registry.MustRegister[Strategy](Strategies, config.DedupPath, ByPath{})
	registry.MustRegister[Strategy](Strategies, config.DedupContent, ByContent{})
}

// Get returns the named strategy
func Get(name string) (Strategy, error) {
	return Strategies.Get(name)
}

// ByPath treats an occupied destination path as the same file
type ByPath struct{}

func (ByPath) Name() string { return config.DedupPath }

func (ByPath) Check(l *ledger.Ledger, d types.FileDescriptor) Result {
	owner, rec, ok := l.Owner(d.DestinationPathWithName)
	if !ok {
		return Result{Verdict: New}
	}
	return Result{Verdict: AlreadyPlaced, AccountID: owner, Existing: rec}
}

// ByContent only skips when the stored hash matches. A path held by
// different or unhashed content is a conflict; records are never rewritten
// in place, so the old entry must be removed first.
type ByContent struct{}

func (ByContent) Name() string { return config.DedupContent }

func (ByContent) Check(l *ledger.Ledger, d types.FileDescriptor) Result {
	owner, rec, ok := l.Owner(d.DestinationPathWithName)
	if !ok {
		return Result{Verdict: New}
	}
	if d.ContentHash != "" && rec.ContentHash == d.ContentHash {
		return Result{Verdict: AlreadyPlaced, AccountID: owner, Existing: rec}
	}
	return Result{Verdict: Conflict, AccountID: owner, Existing: rec}
}
