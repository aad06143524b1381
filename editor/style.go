package editor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iw2rmb/bunmark/decor"
	"github.com/iw2rmb/bunmark/syntax"
)

// Style controls the editor's rendering. Line styles apply to every cell of
// a classed line; span and widget styles inherit from the line style.
type Style struct {
	Gutter        lipgloss.Style
	LineNum       lipgloss.Style
	LineNumActive lipgloss.Style

	Text      lipgloss.Style
	Selection lipgloss.Style
	Cursor    lipgloss.Style

	ActiveLine  lipgloss.Style
	Headings    [6]lipgloss.Style
	Quote       lipgloss.Style
	CodeBlock   lipgloss.Style
	CodeFence   lipgloss.Style
	Rule        lipgloss.Style
	Command     lipgloss.Style
	TaskChecked lipgloss.Style

	Em         lipgloss.Style
	Strong     lipgloss.Style
	StrongEm   lipgloss.Style
	Strike     lipgloss.Style
	InlineCode lipgloss.Style
	Link       lipgloss.Style

	Bullet          lipgloss.Style
	Ordered         lipgloss.Style
	Checkbox        lipgloss.Style
	CheckboxChecked lipgloss.Style
	Image           lipgloss.Style
	ImagePending    lipgloss.Style

	// RuleChar fills hidden horizontal rules; empty leaves them blank.
	RuleChar string
}

func DefaultStyle() Style {
	gutter := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	accent := lipgloss.Color("75")
	return Style{
		Gutter:        gutter,
		LineNum:       gutter,
		LineNumActive: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
		Text:          lipgloss.NewStyle(),
		Selection:     lipgloss.NewStyle().Background(lipgloss.Color("237")),
		Cursor:        lipgloss.NewStyle().Reverse(true),

		Headings: [6]lipgloss.Style{
			lipgloss.NewStyle().Bold(true).Underline(true).Foreground(accent),
			lipgloss.NewStyle().Bold(true).Foreground(accent),
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110")),
			lipgloss.NewStyle().Bold(true),
			lipgloss.NewStyle().Bold(true).Faint(true),
			lipgloss.NewStyle().Faint(true),
		},
		Quote:       lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("246")),
		CodeBlock:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		CodeFence:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Rule:        gutter,
		Command:     lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
		TaskChecked: lipgloss.NewStyle().Strikethrough(true).Faint(true),

		Em:         lipgloss.NewStyle().Italic(true),
		Strong:     lipgloss.NewStyle().Bold(true),
		StrongEm:   lipgloss.NewStyle().Bold(true).Italic(true),
		Strike:     lipgloss.NewStyle().Strikethrough(true),
		InlineCode: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Link:       lipgloss.NewStyle().Underline(true).Foreground(accent),

		Bullet:          lipgloss.NewStyle().Foreground(accent),
		Ordered:         lipgloss.NewStyle().Foreground(accent),
		Checkbox:        lipgloss.NewStyle().Foreground(accent),
		CheckboxChecked: lipgloss.NewStyle().Foreground(lipgloss.Color("71")),
		Image:           lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		ImagePending:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),

		RuleChar: "─",
	}
}

// LineStyle combines the styles selected by a line's classes.
func (s Style) LineStyle(classes []string) lipgloss.Style {
	st := s.Text
	for _, c := range classes {
		switch {
		case strings.HasPrefix(c, "heading-"):
			if n := int(c[len(c)-1] - '0'); n >= 1 && n <= 6 {
				st = s.Headings[n-1].Inherit(st)
			}
		case c == syntax.ClassQuote:
			st = s.Quote.Inherit(st)
		case c == syntax.ClassCodeBlock:
			st = s.CodeBlock.Inherit(st)
		case c == syntax.ClassFence:
			st = s.CodeFence.Inherit(st)
		case c == syntax.ClassRule:
			st = s.Rule.Inherit(st)
		case c == syntax.ClassCommand:
			st = s.Command.Inherit(st)
		case c == syntax.ClassTaskChecked:
			st = s.TaskChecked.Inherit(st)
		case c == syntax.ClassActive:
			st = s.ActiveLine.Inherit(st)
		}
	}
	return st
}

// SpanStyle returns the style of an inline class.
func (s Style) SpanStyle(class string) (lipgloss.Style, bool) {
	switch class {
	case syntax.StyleEm:
		return s.Em, true
	case syntax.StyleStrong:
		return s.Strong, true
	case syntax.StyleStrongEm:
		return s.StrongEm, true
	case syntax.StyleStrike:
		return s.Strike, true
	case syntax.StyleInlineCode:
		return s.InlineCode, true
	case syntax.StyleLink:
		return s.Link, true
	default:
		return lipgloss.Style{}, false
	}
}

// WidgetStyle returns the style a widget is drawn with.
func (s Style) WidgetStyle(w decor.Widget) lipgloss.Style {
	switch w := w.(type) {
	case decor.Bullet:
		return s.Bullet
	case decor.OrderedMarker:
		return s.Ordered
	case decor.Checkbox:
		if w.Checked {
			return s.CheckboxChecked
		}
		return s.Checkbox
	case decor.Image:
		if w.Placeholder {
			return s.ImagePending
		}
		return s.Image
	default:
		return s.Text
	}
}
