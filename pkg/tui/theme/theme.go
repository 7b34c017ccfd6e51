package theme

import (
	"image/color"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Header HeaderTheme
	Cell   CellTheme
	Footer FooterTheme
}

// HeaderTheme styles the title bar.
type HeaderTheme struct {
	Title  lipgloss.Style
	Kernel lipgloss.Style
	Saving lipgloss.Style
}

// CellTheme styles cells and their outputs.
type CellTheme struct {
	Focused lipgloss.Style
	Blurred lipgloss.Style
	Sticky  lipgloss.Style
	Editing lipgloss.Style
	Prompt  lipgloss.Style
	Running lipgloss.Style
	Output  lipgloss.Style
	Error   lipgloss.Style
	Pinned  lipgloss.Style
}

// FooterTheme groups styles used by the bottom status/command bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Mode   lipgloss.Style
	Error  lipgloss.Style
}

// Palette anchors; the rest is blended from these.
const (
	accentHex = "#F25D94"
	baseHex   = "#3C3C3C"
)

// blend mixes a toward b by t in Lab space.
func blend(a, b string, t float64) color.Color {
	ca, err := colorful.Hex(a)
	if err != nil {
		return lipgloss.Color(a)
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return lipgloss.Color(a)
	}
	return ca.BlendLab(cb, t).Clamped()
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	accent := lipgloss.Color(accentHex)
	muted := blend(accentHex, baseHex, 0.6)
	border := lipgloss.Color("240")

	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	return Theme{
		Header: HeaderTheme{
			Title:  lipgloss.NewStyle().Bold(true),
			Kernel: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Saving: lipgloss.NewStyle().Foreground(muted).Italic(true),
		},
		Cell: CellTheme{
			Focused: frame.BorderForeground(accent),
			Blurred: frame.BorderForeground(border),
			Sticky:  frame.BorderForeground(muted),
			Editing: frame.BorderForeground(accent).BorderStyle(lipgloss.ThickBorder()),
			Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Width(8),
			Running: lipgloss.NewStyle().Foreground(accent).Bold(true),
			Output:  lipgloss.NewStyle().PaddingLeft(9),
			Error:   lipgloss.NewStyle().PaddingLeft(9).Foreground(lipgloss.Color("196")),
			Pinned:  lipgloss.NewStyle().Foreground(muted).Bold(true),
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Mode:   lipgloss.NewStyle().Foreground(accent).Bold(true),
			Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		},
	}
}
