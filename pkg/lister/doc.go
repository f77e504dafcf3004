// Package lister enumerates the files of a transfer source and maps each to
// its destination.
//
// Two sources exist: a local directory or file (Local) and a remote drive
// folder enumerated with `rclone ls` (Remote). Both honour the upload-folder
// policy: when set, the source folder's own name is kept as a directory
// under the destination.
package lister

import (
	"context"

	"github.com/arthur-debert/drivepool/pkg/types"
)

// Lister produces the descriptors of one source. Each call is a fresh, full
// enumeration.
type Lister interface {
	List(ctx context.Context) ([]types.FileDescriptor, error)

	// SourceRoot is what include-list paths are relative to, in the form the
	// mover expects
	SourceRoot() string
}
