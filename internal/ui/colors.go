package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#FFFFFF", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title    lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
	button   lipgloss.Style
	selected lipgloss.Style
}

func NewPalette(accent, fg, w, h string) *Palette {
	return &Palette{
		title:    NewBold(accent).MarginBottom(1),
		warn:     NewStyle(w),
		help:     NewEm(h),
		button:   NewStyle(h).Padding(0, 2),
		selected: NewBold(fg).Background(lipgloss.Color(accent)).Padding(0, 2),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
