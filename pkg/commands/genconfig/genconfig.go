package genconfig

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/drivepool/pkg/config"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/logging"
	"github.com/arthur-debert/drivepool/pkg/types"
)

// GenConfigOptions holds options for the genconfig command
type GenConfigOptions struct {
	// Effective renders this configuration instead of the commented defaults
	Effective *config.Config
	// Write saves the content to Dir/drivepool.toml instead of returning it only
	Write bool
	Dir   string
	// Force overwrites an existing file
	Force      bool
	FileSystem types.FS
}

// Result holds the generated content and any file written
type Result struct {
	Content     string `json:"content"`
	FileWritten string `json:"file_written,omitempty"`
}

// GenConfig outputs or writes a configuration file
func GenConfig(opts GenConfigOptions) (*Result, error) {
	logger := logging.GetLogger("commands.genconfig")

	result := &Result{}
	if opts.Effective != nil {
		content, err := config.Render(opts.Effective)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
		}
		result.Content = content
	} else {
		result.Content = CommentOut(config.GetDefaultsContent())
	}

	if !opts.Write {
		logger.Debug().Msg("Outputting config to stdout")
		return result, nil
	}
	if opts.FileSystem == nil {
		return nil, errors.New(errors.ErrInternal, "writing a config file needs a filesystem")
	}

	target := filepath.Join(opts.Dir, config.ProjectConfigFile)
	if _, err := opts.FileSystem.Stat(target); err == nil && !opts.Force {
		return nil, errors.Newf(errors.ErrAlreadyExists, "%s already exists, use --force to overwrite", target).
			WithDetail("path", target)
	}
	if err := opts.FileSystem.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory for %s", target)
	}
	if err := opts.FileSystem.WriteFile(target, []byte(result.Content), 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to write config to %s", target)
	}

	logger.Info().Str("path", target).Msg("Written config file")
	result.FileWritten = target
	return result, nil
}

// CommentOut prefixes every value line with "# " so the file documents the
// defaults without pinning them. Section headers and comments are kept.
func CommentOut(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "[") {
			continue
		}
		lines[i] = "# " + line
	}
	return strings.Join(lines, "\n")
}
