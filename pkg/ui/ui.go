// Package ui renders command results for people or machines.
//
// Terminal and text output share one layout: a header, summary lines,
// pterm tables and trees, and the directive lines to hand to the mover.
// Terminal output adds lipgloss styles; text output has no escape
// sequences. JSON output serializes a stable view of each result.
package ui

import (
	"io"
	"os"

	"github.com/arthur-debert/drivepool/pkg/errors"
)

// Renderer writes command results
type Renderer interface {
	// Render writes a command result
	Render(result interface{}) error
	// RenderError writes a failure
	RenderError(err error) error
	// RenderMessage writes a one-line note
	RenderMessage(msg string) error
}

// NewRenderer returns a renderer for the format. FormatAuto inspects w
// when it is a file and falls back to text otherwise.
func NewRenderer(format Format, w io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if f, ok := w.(*os.File); ok {
			return NewRenderer(DetectFormat(f), w)
		}
		return NewRenderer(FormatText, w)
	case FormatTerminal:
		return &consoleRenderer{w: w, styled: true}, nil
	case FormatText:
		return &consoleRenderer{w: w}, nil
	case FormatJSON:
		return &jsonRenderer{w: w}, nil
	}
	return nil, errors.Newf(errors.ErrInvalidInput, "unknown format %v", format)
}
