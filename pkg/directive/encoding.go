package directive

import (
	"strings"

	"github.com/arthur-debert/drivepool/pkg/config"
	"github.com/arthur-debert/drivepool/pkg/registry"
)

// Encoding turns a path into one include-list line
type Encoding func(path string) string

// Encodings holds the line encodings selectable through
// directives.include_encoding
var Encodings = registry.New[Encoding]("include encoding")

func init() {
	registry.MustRegister(Encodings, config.EncodingRclone, Encoding(RcloneEscape))
	registry.MustRegister(Encodings, config.EncodingLiteral, Encoding(func(p string) string { return p }))
}

var rcloneEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
	`{`, `\{`,
	`}`, `\}`,
)

// RcloneEscape escapes glob metacharacters and anchors the line at the
// root of the transfer, so rclone matches exactly this path and never a
// same-named file deeper in the tree.
func RcloneEscape(path string) string {
	return "/" + rcloneEscaper.Replace(strings.TrimLeft(path, "/"))
}
