// Package themes holds the color schemes of the planner.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Label      lipgloss.Style
	Focused    lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	RoundedBox lipgloss.Style
	Primary    lipgloss.Color
	Border     lipgloss.Color
}

type palette struct {
	primary    string
	foreground string
	subtle     string
	muted      string
	border     string
	success    string
	warning    string
	errorColor string
}

func newTheme(p palette) Theme {
	return Theme{
		Primary: lipgloss.Color(p.primary),
		Border:  lipgloss.Color(p.border),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.primary)).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.subtle)),
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.foreground)),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.subtle)).
			Width(26),
		Focused: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.primary)).
			Bold(true).
			Width(26),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.muted)),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.errorColor)).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.success)).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.warning)).
			Bold(true),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.border)).
			Padding(1, 2),
	}
}

// Default is the default theme.
var Default = newTheme(palette{
	primary:    "#F2B544",
	foreground: "#fafafa",
	subtle:     "#a3a3a3",
	muted:      "#737373",
	border:     "#404040",
	success:    "#10b981",
	warning:    "#f59e0b",
	errorColor: "#ef4444",
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = newTheme(palette{
	primary:    "#cba6f7",
	foreground: "#cdd6f4",
	subtle:     "#a6adc8",
	muted:      "#6c7086",
	border:     "#45475a",
	success:    "#a6e3a1",
	warning:    "#f9e2af",
	errorColor: "#f38ba8",
})

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
