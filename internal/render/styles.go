package render

import (
	"github.com/charmbracelet/lipgloss"

	mlparser "github.com/msto63/mlang/foundation/lang/parser"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#10B981")
	colorAccent    = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")
	colorFg        = lipgloss.Color("#F9FAFB")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	PositionStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Token kinds
	KeywordStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	IdentifierStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	NumberStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	OperatorStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	UnknownStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Underline(true)

	// Diagnostics
	ErrorLabelStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	CaretStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	GutterStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	OKStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true)
)

// KindStyle returns the style used for tokens of the given kind
func KindStyle(kind mlparser.Kind) lipgloss.Style {
	switch kind {
	case mlparser.Keyword:
		return KeywordStyle
	case mlparser.Number:
		return NumberStyle
	case mlparser.Operator, mlparser.Paren:
		return OperatorStyle
	case mlparser.Unknown:
		return UnknownStyle
	case mlparser.End:
		return PositionStyle
	default:
		return IdentifierStyle
	}
}
