package directive

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/drivepool/pkg/config"
)

// Formatter renders a Directive as text for a mover
type Formatter interface {
	Format(d Directive) string
}

// RcloneFormatter renders rclone copy and delete invocations. The remote for
// an account is RemotePrefix followed by the account id.
type RcloneFormatter struct {
	RemotePrefix string
	CopyFlags    []string
	DeleteFlags  []string
}

// NewRcloneFormatter reads the directives config section
func NewRcloneFormatter(cfg config.Directives) RcloneFormatter {
	return RcloneFormatter{
		RemotePrefix: cfg.RemotePrefix,
		CopyFlags:    cfg.CopyFlags,
		DeleteFlags:  cfg.DeleteFlags,
	}
}

// Remote returns the rclone remote name for an account
func (f RcloneFormatter) Remote(accountID string) string {
	return f.RemotePrefix + accountID
}

func (f RcloneFormatter) Format(d Directive) string {
	args := []string{"rclone"}
	if d.Kind == KindDelete {
		args = append(args, "delete")
		args = append(args, f.DeleteFlags...)
		args = append(args, "--include-from", quote(d.IncludeFile))
	} else {
		args = append(args, "copy")
		args = append(args, f.CopyFlags...)
		args = append(args, "--include-from", quote(d.IncludeFile), quote(d.SourceRoot))
	}
	args = append(args, quote(fmt.Sprintf("%s:%s", f.Remote(d.AccountID), d.DestinationRoot)))
	return strings.Join(args, " ")
}

// FormatAll renders each directive on its own line
func FormatAll(f Formatter, directives []Directive) []string {
	lines := make([]string, len(directives))
	for i, d := range directives {
		lines[i] = f.Format(d)
	}
	return lines
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
