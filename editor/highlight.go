package editor

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type HighlightSpan struct {
	// StartCol and EndCol are rune indices in the raw line, half-open
	// [StartCol, EndCol).
	StartCol int
	EndCol   int
	Style    lipgloss.Style
}

// codeHighlighter colors the interior lines of fenced code blocks by the
// language of the opening fence.
type codeHighlighter struct {
	style   *chroma.Style
	lexers  map[string]chroma.Lexer
	enabled bool
}

func newCodeHighlighter(styleName string) *codeHighlighter {
	if styleName == "" {
		return &codeHighlighter{}
	}
	st := styles.Get(styleName)
	if st == nil {
		st = styles.Fallback
	}
	return &codeHighlighter{
		style:   st,
		lexers:  make(map[string]chroma.Lexer),
		enabled: lipgloss.ColorProfile() != termenv.Ascii,
	}
}

func (h *codeHighlighter) lexer(info string) chroma.Lexer {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return nil
	}
	lang := strings.ToLower(fields[0])
	if lx, ok := h.lexers[lang]; ok {
		return lx
	}
	lx := lexers.Get(lang)
	if lx != nil {
		lx = chroma.Coalesce(lx)
	}
	h.lexers[lang] = lx
	return lx
}

// HighlightLine returns spans for one code line. Lines are tokenised on
// their own, so constructs spanning lines highlight per line.
func (h *codeHighlighter) HighlightLine(info, line string) []HighlightSpan {
	if h == nil || !h.enabled || h.style == nil || line == "" {
		return nil
	}
	lx := h.lexer(info)
	if lx == nil {
		return nil
	}
	it, err := lx.Tokenise(nil, line)
	if err != nil {
		return nil
	}
	var spans []HighlightSpan
	col := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		value := strings.TrimRight(tok.Value, "\n")
		n := utf8.RuneCountInString(value)
		if n == 0 {
			continue
		}
		if st, ok := h.entryStyle(tok.Type); ok {
			spans = append(spans, HighlightSpan{StartCol: col, EndCol: col + n, Style: st})
		}
		col += n
	}
	return spans
}

func (h *codeHighlighter) entryStyle(t chroma.TokenType) (lipgloss.Style, bool) {
	e := h.style.Get(t)
	st := lipgloss.NewStyle()
	set := false
	if e.Colour.IsSet() {
		st = st.Foreground(lipgloss.Color(e.Colour.String()))
		set = true
	}
	if e.Bold == chroma.Yes {
		st, set = st.Bold(true), true
	}
	if e.Italic == chroma.Yes {
		st, set = st.Italic(true), true
	}
	if e.Underline == chroma.Yes {
		st, set = st.Underline(true), true
	}
	return st, set
}

func normalizeHighlightSpans(spans []HighlightSpan, lineLen int) []HighlightSpan {
	if len(spans) == 0 {
		return nil
	}
	lineLen = max(lineLen, 0)

	out := make([]HighlightSpan, 0, len(spans))
	for _, sp := range spans {
		start := clampInt(sp.StartCol, 0, lineLen)
		end := clampInt(sp.EndCol, 0, lineLen)
		if end < start {
			start, end = end, start
		}
		if start == end {
			continue
		}
		out = append(out, HighlightSpan{StartCol: start, EndCol: end, Style: sp.Style})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartCol != out[j].StartCol {
			return out[i].StartCol < out[j].StartCol
		}
		return out[i].EndCol < out[j].EndCol
	})

	// Overlapping spans are dropped.
	merged := make([]HighlightSpan, 0, len(out))
	for _, sp := range out {
		if len(merged) > 0 && sp.StartCol < merged[len(merged)-1].EndCol {
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}

func highlightAt(spans []HighlightSpan, col int) (lipgloss.Style, bool) {
	for _, sp := range spans {
		if col >= sp.StartCol && col < sp.EndCol {
			return sp.Style, true
		}
	}
	return lipgloss.Style{}, false
}
