package directive

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes copies from deletions
type Kind string

const (
	KindTransfer Kind = "transfer"
	KindDelete   Kind = "delete"
)

// Directive is one batched operation for one account
type Directive struct {
	AccountID       string   `json:"account_id" yaml:"account_id"`
	Kind            Kind     `json:"kind" yaml:"kind"`
	IncludePaths    []string `json:"include_paths" yaml:"include_paths"`
	SourceRoot      string   `json:"source_root,omitempty" yaml:"source_root,omitempty"`
	DestinationRoot string   `json:"destination_root" yaml:"destination_root"`
	IncludeFile     string   `json:"include_file" yaml:"include_file"`
}

func (d Directive) String() string {
	if d.Kind == KindDelete {
		return fmt.Sprintf("delete %d path(s) on %s", len(d.IncludePaths), d.AccountID)
	}
	return fmt.Sprintf("transfer %d path(s) from %s to %s:%s", len(d.IncludePaths), d.SourceRoot, d.AccountID, d.DestinationRoot)
}

// NewRunID returns an id that sorts by time and stays unique within a second,
// e.g. 20240315T103000-1a2b3c4d.
func NewRunID(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s-%s", now.Format("20060102T150405"), id[:8])
}
