package cli

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

var (
	docStyle        = lipgloss.NewStyle().Margin(1, 2)
	titleStyle      = lipgloss.NewStyle().MarginLeft(2)
	spinnerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	successStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	boldStyle       = lipgloss.NewStyle().Bold(true)
	nameStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(18)
	favoriteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	paginationStyle = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle       = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
)

// namedColors maps the color names the UI offers to terminal colors.
var namedColors = map[string]lipgloss.Color{
	"orange": lipgloss.Color("214"),
	"red":    lipgloss.Color("196"),
	"green":  lipgloss.Color("42"),
	"blue":   lipgloss.Color("33"),
	"yellow": lipgloss.Color("220"),
	"purple": lipgloss.Color("170"),
}

// colorStyle returns the style for an entity's presentation color. Unknown
// names are passed to lipgloss as-is so hex and ANSI codes work too.
func colorStyle(color string) lipgloss.Style {
	if color == "" {
		return nameStyle
	}

	c, ok := namedColors[strings.ToLower(color)]
	if !ok {
		c = lipgloss.Color(color)
	}

	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
