// Package styles holds the lipgloss styles used by terminal output.
//
// Styles are defined in the embedded styles.yaml under semantic names
// (Header, Error, Account, ...) and refer to adaptive colours, so output
// reads well on light and dark terminals alike.
package styles

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ColorDef is an adaptive colour
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef describes one style
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Underline    bool   `yaml:"underline,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	Background   string `yaml:"background,omitempty"`
	MarginBottom int    `yaml:"marginBottom,omitempty"`
	PaddingLeft  int    `yaml:"paddingLeft,omitempty"`
}

// Config is the styles document
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

//go:embed styles.yaml
var embeddedStyles []byte

var registry = mustParse(embeddedStyles)

// Parse builds the style table from a YAML document. A style naming an
// unknown colour is an error.
func Parse(data []byte) (map[string]lipgloss.Style, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse styles: %w", err)
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	table := make(map[string]lipgloss.Style, len(cfg.Styles))
	for name, def := range cfg.Styles {
		style, err := build(def, colors)
		if err != nil {
			return nil, fmt.Errorf("style %s: %w", name, err)
		}
		table[name] = style
	}
	return table, nil
}

func mustParse(data []byte) map[string]lipgloss.Style {
	table, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("embedded styles are invalid: %v", err))
	}
	return table
}

func build(def StyleDef, colors map[string]lipgloss.AdaptiveColor) (lipgloss.Style, error) {
	style := lipgloss.NewStyle().
		Bold(def.Bold).
		Italic(def.Italic).
		Underline(def.Underline)

	if def.Foreground != "" {
		c, ok := colors[def.Foreground]
		if !ok {
			return style, fmt.Errorf("unknown colour %q", def.Foreground)
		}
		style = style.Foreground(c)
	}
	if def.Background != "" {
		c, ok := colors[def.Background]
		if !ok {
			return style, fmt.Errorf("unknown colour %q", def.Background)
		}
		style = style.Background(c)
	}
	if def.MarginBottom > 0 {
		style = style.MarginBottom(def.MarginBottom)
	}
	if def.PaddingLeft > 0 {
		style = style.PaddingLeft(def.PaddingLeft)
	}
	return style, nil
}

// Get returns a named style, or an empty style for unknown names
func Get(name string) lipgloss.Style {
	if style, ok := registry[name]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Names lists the defined styles
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
