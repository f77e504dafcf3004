package lister

import (
	"context"
	"path"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/internal/hashutil"
	"github.com/arthur-debert/drivepool/pkg/logging"
	"github.com/arthur-debert/drivepool/pkg/types"
)

// LocalOptions configures a Local lister
type LocalOptions struct {
	// Source is a directory or a single file
	Source string
	// Destination is the remote base directory
	Destination string
	// UploadFolder keeps the source directory's name under Destination
	UploadFolder bool
	// Hash computes an MD5 per file for content dedup
	Hash bool
}

// Local lists files on a filesystem
type Local struct {
	fs   types.FS
	opts LocalOptions
	root string
}

// NewLocal validates the source and returns a lister for it
func NewLocal(fs types.FS, opts LocalOptions) (*Local, error) {
	if opts.Source == "" {
		return nil, errors.New(errors.ErrSourceInvalid, "no source given")
	}
	info, err := fs.Stat(opts.Source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceInvalid, "invalid source path %s", opts.Source).
			WithDetail("source", opts.Source)
	}

	l := &Local{fs: fs, opts: opts, root: filepath.Clean(opts.Source)}
	if !info.IsDir() {
		l.root = filepath.Dir(l.root)
	}
	return l, nil
}

// SourceRoot returns the local directory include paths are relative to
func (l *Local) SourceRoot() string { return l.root }

// List walks the source. Within a directory, files come first in name order,
// then subdirectories in name order.
func (l *Local) List(ctx context.Context) ([]types.FileDescriptor, error) {
	logger := logging.GetLogger("lister.local")

	info, err := l.fs.Stat(l.opts.Source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceInvalid, "invalid source path %s", l.opts.Source)
	}

	destRoot := cleanDest(l.opts.Destination)
	if !info.IsDir() {
		d, err := l.describe(filepath.Clean(l.opts.Source), info.Name(), info.Size(), destRoot)
		if err != nil {
			return nil, err
		}
		return []types.FileDescriptor{d}, nil
	}

	if l.opts.UploadFolder {
		destRoot = joinDest(destRoot, filepath.Base(l.root))
	}

	var out []types.FileDescriptor
	if err := l.walk(ctx, l.root, "", destRoot, &out); err != nil {
		return nil, err
	}
	logger.Info().Str("source", l.root).Str("destination", destRoot).Int("files", len(out)).Msg("Local source listed")
	return out, nil
}

func (l *Local) walk(ctx context.Context, dir, rel, destRoot string, out *[]types.FileDescriptor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := l.fs.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceList, "failed to read %s", dir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var subdirs []string
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		relPath := path.Join(rel, entry.Name())

		// Stat follows symlinks
		info, err := l.fs.Stat(full)
		if err != nil {
			logger := logging.GetLogger("lister.local")
			logger.Warn().Err(err).Str("path", full).Msg("Skipping unreadable entry")
			continue
		}
		if info.IsDir() {
			subdirs = append(subdirs, entry.Name())
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		d, err := l.describe(full, relPath, info.Size(), destRoot)
		if err != nil {
			return err
		}
		*out = append(*out, d)
	}

	for _, name := range subdirs {
		if err := l.walk(ctx, filepath.Join(dir, name), path.Join(rel, name), destRoot, out); err != nil {
			return err
		}
	}
	return nil
}

func (l *Local) describe(full, rel string, size int64, destRoot string) (types.FileDescriptor, error) {
	d := types.FileDescriptor{
		Filename:                path.Base(rel),
		RelativeSourcePath:      rel,
		Size:                    size,
		DestinationDir:          destRoot,
		DestinationPathWithName: joinDest(destRoot, rel),
	}
	if l.opts.Hash {
		sum, err := hashutil.FileMD5(l.fs, full)
		if err != nil {
			return d, errors.Wrapf(err, errors.ErrSourceList, "failed to hash %s", full)
		}
		d.ContentHash = sum
	}
	return d, nil
}

// cleanDest normalizes a remote directory: forward slashes, no leading or
// trailing slash, "" for the remote root.
func cleanDest(dest string) string {
	dest = filepath.ToSlash(dest)
	if dest == "" {
		return ""
	}
	cleaned := path.Clean("/" + dest)
	return cleaned[1:]
}

func joinDest(root, rel string) string {
	if root == "" {
		return cleanDest(rel)
	}
	return cleanDest(path.Join(root, rel))
}
