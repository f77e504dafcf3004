package lister

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path"
	"strconv"
	"strings"

	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/logging"
	"github.com/arthur-debert/drivepool/pkg/types"
)

// RemoteSourcePrefix marks a transfer source as a drive folder id
const RemoteSourcePrefix = "id="

// ParseRemoteSource reports whether source names a drive folder ("id=<folder>")
// and returns the folder id.
func ParseRemoteSource(source string) (string, bool) {
	if !strings.HasPrefix(source, RemoteSourcePrefix) {
		return "", false
	}
	return strings.TrimPrefix(source, RemoteSourcePrefix), true
}

// Runner runs an external program and returns its standard output
type Runner interface {
	Run(ctx context.Context, program string, args ...string) ([]byte, error)
}

// ExecRunner runs programs with os/exec
type ExecRunner struct{}

// Run captures stdout; a non-zero exit includes stderr in the error
func (ExecRunner) Run(ctx context.Context, program string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("%s %s: %w: %s", program, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// RemoteOptions configures a Remote lister
type RemoteOptions struct {
	// FolderID is the drive folder to enumerate
	FolderID string
	// FolderName is the folder's display name, needed with UploadFolder
	FolderName string
	// MasterRemote is the rclone remote that can read the folder
	MasterRemote string
	Destination  string
	UploadFolder bool
	// MaxDepth bounds recursion; drive shortcuts can form cycles
	MaxDepth int
}

// DefaultMaxDepth is used when RemoteOptions.MaxDepth is zero
const DefaultMaxDepth = 15

// Remote lists a drive folder through `rclone ls`
type Remote struct {
	runner Runner
	opts   RemoteOptions
}

// NewRemote validates options and returns a lister
func NewRemote(runner Runner, opts RemoteOptions) (*Remote, error) {
	if opts.FolderID == "" {
		return nil, errors.New(errors.ErrSourceInvalid, "remote source has no folder id")
	}
	if opts.MasterRemote == "" {
		return nil, errors.New(errors.ErrSourceInvalid, "no master remote configured for remote sources")
	}
	if opts.UploadFolder && opts.FolderName == "" {
		return nil, errors.Newf(errors.ErrSourceInvalid, "upload-folder needs the name of folder %s", opts.FolderID)
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Remote{runner: runner, opts: opts}, nil
}

// SourceRoot is the rclone path of the folder, e.g. "god,root_folder_id=abc:"
func (r *Remote) SourceRoot() string {
	return fmt.Sprintf("%s,root_folder_id=%s:", r.opts.MasterRemote, r.opts.FolderID)
}

// List runs rclone and maps every listed file to the destination
func (r *Remote) List(ctx context.Context) ([]types.FileDescriptor, error) {
	logger := logging.GetLogger("lister.remote")

	args := []string{"ls", "--fast-list", fmt.Sprintf("--max-depth=%d", r.opts.MaxDepth), r.SourceRoot()}
	out, err := r.runner.Run(ctx, "rclone", args...)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceList, "failed to list remote folder %s", r.opts.FolderID)
	}

	entries, malformed, err := ParseLs(out)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceList, "failed to read listing of remote folder %s", r.opts.FolderID)
	}
	for _, line := range malformed {
		logger.Warn().Str("line", line).Msg("Skipping malformed rclone ls output line")
	}

	destRoot := cleanDest(r.opts.Destination)
	if r.opts.UploadFolder {
		destRoot = joinDest(destRoot, r.opts.FolderName)
	}

	descriptors := make([]types.FileDescriptor, 0, len(entries))
	for _, e := range entries {
		descriptors = append(descriptors, types.FileDescriptor{
			Filename:                path.Base(e.Path),
			RelativeSourcePath:      e.Path,
			Size:                    e.Size,
			DestinationDir:          destRoot,
			DestinationPathWithName: joinDest(destRoot, e.Path),
		})
	}
	logger.Info().Str("folder", r.opts.FolderID).Int("files", len(descriptors)).Int("malformed", len(malformed)).Msg("Remote source listed")
	return descriptors, nil
}

// LsEntry is one line of `rclone ls` output
type LsEntry struct {
	Size int64
	Path string
}

// ParseLs reads "<size> <path>" lines. Sizes are right-aligned so lines may
// start with spaces; paths may contain spaces. Lines that do not fit are
// returned separately. A line too long to scan stops parsing with an error
// rather than truncating the listing.
func ParseLs(out []byte) (entries []LsEntry, malformed []string, err error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		trimmed := strings.TrimLeft(line, " ")
		sizeField, name, found := strings.Cut(trimmed, " ")
		if !found || strings.TrimSpace(name) == "" {
			malformed = append(malformed, line)
			continue
		}
		size, err := strconv.ParseInt(sizeField, 10, 64)
		if err != nil || size < 0 {
			malformed = append(malformed, line)
			continue
		}
		entries = append(entries, LsEntry{Size: size, Path: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return entries, malformed, nil
}
