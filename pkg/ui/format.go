package ui

import (
	"os"
	"strings"

	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format selects how results are written
type Format int

const (
	// FormatAuto picks terminal or text from the output's capabilities
	FormatAuto Format = iota
	// FormatTerminal is styled output with colours, tables and trees
	FormatTerminal
	// FormatText is the same layout without any escape sequences
	FormatText
	// FormatJSON is machine-readable output
	FormatJSON
)

var formatNames = map[Format]string{
	FormatAuto:     "auto",
	FormatTerminal: "term",
	FormatText:     "text",
	FormatJSON:     "json",
}

// String returns the flag value naming the format
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat parses a --format flag value
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "term", "terminal":
		return FormatTerminal, nil
	case "text", "plain":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown format %q (use auto, term, text or json)", s)
}

// DetectFormat chooses between terminal and text output for a file.
// NO_COLOR, pipes and colourless terminals all get text.
func DetectFormat(out *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	if !isatty.IsTerminal(out.Fd()) && !isatty.IsCygwinTerminal(out.Fd()) {
		return FormatText
	}
	if termenv.NewOutput(out).ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}
