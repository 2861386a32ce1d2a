package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the editor's style tokens. Colors are ANSI-256 codes.
type Theme struct {
	Name string

	Header       lipgloss.Style
	Axis         lipgloss.Style
	Span         lipgloss.Style
	SpanSelected lipgloss.Style
	SpanDragging lipgloss.Style
	Status       lipgloss.Style
	StatusError  lipgloss.Style
	Help         lipgloss.Style
	Overlay      lipgloss.Style
	Prompt       lipgloss.Style
}

// DefaultTheme is the baseline dark palette.
var DefaultTheme = Theme{
	Name:         "default",
	Header:       lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true),
	Axis:         lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	Span:         lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	SpanSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true),
	SpanDragging: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	Status:       lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
	StatusError:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	Help:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Overlay:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	Prompt:       lipgloss.NewStyle().Foreground(lipgloss.Color("229")),
}

// MonoTheme renders without color for limited terminals.
var MonoTheme = Theme{
	Name:         "mono",
	Header:       lipgloss.NewStyle().Bold(true),
	Axis:         lipgloss.NewStyle(),
	Span:         lipgloss.NewStyle(),
	SpanSelected: lipgloss.NewStyle().Reverse(true),
	SpanDragging: lipgloss.NewStyle().Bold(true),
	Status:       lipgloss.NewStyle(),
	StatusError:  lipgloss.NewStyle().Bold(true),
	Help:         lipgloss.NewStyle().Faint(true),
	Overlay:      lipgloss.NewStyle(),
	Prompt:       lipgloss.NewStyle().Bold(true),
}

// ThemeByName resolves a configured theme name, falling back to the
// default palette.
func ThemeByName(name string) Theme {
	switch name {
	case "mono", "plain":
		return MonoTheme
	default:
		return DefaultTheme
	}
}
