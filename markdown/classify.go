package markdown

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

type Kind uint8

const (
	KindPlain Kind = iota
	KindHeading
	KindUnordered
	KindOrdered
	KindTask
	KindQuote
	KindRule
	KindFence
	KindCommand
)

var kindNames = [...]string{
	KindPlain:     "plain",
	KindHeading:   "heading",
	KindUnordered: "unordered",
	KindOrdered:   "ordered",
	KindTask:      "task",
	KindQuote:     "quote",
	KindRule:      "hr",
	KindFence:     "fence",
	KindCommand:   "command",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IndentUnit is the width of one nesting level. Tabs count as one unit.
const IndentUnit = 4

// Line is the classification of one buffer line.
//
// MarkerStart/MarkerEnd span the construct's syntax marker:
//   - heading: the # run plus following whitespace
//   - unordered/ordered/task: the list marker ("-", "12.")
//   - quote: ">" plus following whitespace
//   - rule: the whole line
//   - fence: the delimiter run
//   - command: the "#file:" prefix
type Line struct {
	Kind Kind

	Indent int // leading whitespace, in runes
	Depth  int

	MarkerStart  int
	MarkerEnd    int
	ContentStart int

	Level int // heading level 1-6

	Marker  string // list marker text
	Number  int
	Delim   rune // '.' or ')'
	Ordered bool

	IsTask   bool
	Checked  bool
	BoxStart int // offset of '[' in a task box

	FenceChar rune
	FenceLen  int
	Info      string

	Target string // command argument
}

// IsList reports whether the line is any kind of list item.
func (l Line) IsList() bool {
	return l.Kind == KindUnordered || l.Kind == KindOrdered || l.Kind == KindTask
}

// MarkerRange returns the marker span.
func (l Line) MarkerRange() Range { return Range{Start: l.MarkerStart, End: l.MarkerEnd} }

// BoxRange returns the "[ ]" span of a task line.
func (l Line) BoxRange() Range {
	if !l.IsTask {
		return Range{}
	}
	return Range{Start: l.BoxStart, End: l.BoxStart + 3}
}

var (
	unorderedRE = regexp.MustCompile(`^(\s*)([-+*])([ \t]+)`)
	orderedRE   = regexp.MustCompile(`^(\s*)(\d+)([.)])([ \t]+)`)
	taskRE      = regexp.MustCompile(`^(\s*)([-+*]|\d+[.)])\s+\[([ xX])\]`)
	headingRE   = regexp.MustCompile(`^(\s*)(#{1,6})(\s+)`)
	quoteRE     = regexp.MustCompile(`^(\s*)(>)(\s*)`)
	commandRE   = regexp.MustCompile(`(?i)^(\s*)(#file:)(\S*)`)
	bareRE      = regexp.MustCompile(`^\s*([-+*]|\d+[.)])$`)
)

// Classify maps a line to its construct. Precedence, first match wins:
// fence, unordered list, ordered list, heading, horizontal rule,
// blockquote, special command, plain.
func Classify(text string) Line {
	indent, width := leadingWhitespace(text)
	l := Line{Indent: indent, Depth: width / IndentUnit}

	if ch, n, ok := fenceRun(text, indent); ok {
		l.Kind = KindFence
		l.FenceChar = ch
		l.FenceLen = n
		l.MarkerStart = indent
		l.MarkerEnd = indent + n
		l.ContentStart = l.MarkerEnd
		l.Info = strings.TrimSpace(string([]rune(text)[l.MarkerEnd:]))
		return l
	}

	rule := isRule(text)

	if m := unorderedRE.FindStringSubmatchIndex(text); m != nil && !rule {
		l.Kind = KindUnordered
		l.MarkerStart = runeOffset(text, m[4])
		l.MarkerEnd = runeOffset(text, m[5])
		l.ContentStart = runeOffset(text, m[1])
		l.Marker = text[m[4]:m[5]]
		classifyTask(text, &l)
		return l
	}

	if m := orderedRE.FindStringSubmatchIndex(text); m != nil {
		l.Kind = KindOrdered
		l.Ordered = true
		l.MarkerStart = runeOffset(text, m[4])
		l.MarkerEnd = runeOffset(text, m[7])
		l.ContentStart = runeOffset(text, m[1])
		l.Marker = text[m[4]:m[7]]
		l.Number, _ = strconv.Atoi(text[m[4]:m[5]])
		l.Delim = rune(text[m[6]])
		classifyTask(text, &l)
		return l
	}

	if m := headingRE.FindStringSubmatchIndex(text); m != nil {
		l.Kind = KindHeading
		l.Level = m[5] - m[4]
		l.MarkerStart = runeOffset(text, m[4])
		l.MarkerEnd = runeOffset(text, m[1])
		l.ContentStart = l.MarkerEnd
		return l
	}

	if rule {
		l.Kind = KindRule
		l.MarkerStart = 0
		l.MarkerEnd = utf8.RuneCountInString(text)
		l.ContentStart = l.MarkerEnd
		return l
	}

	if m := quoteRE.FindStringSubmatchIndex(text); m != nil {
		l.Kind = KindQuote
		l.MarkerStart = runeOffset(text, m[4])
		l.MarkerEnd = runeOffset(text, m[1])
		l.ContentStart = l.MarkerEnd
		return l
	}

	if m := commandRE.FindStringSubmatchIndex(text); m != nil {
		l.Kind = KindCommand
		l.MarkerStart = runeOffset(text, m[4])
		l.MarkerEnd = runeOffset(text, m[5])
		l.ContentStart = l.MarkerEnd
		l.Target = text[m[6]:m[7]]
		return l
	}

	l.ContentStart = indent
	return l
}

func classifyTask(text string, l *Line) {
	m := taskRE.FindStringSubmatchIndex(text)
	if m == nil {
		return
	}
	l.Kind = KindTask
	l.IsTask = true
	l.Checked = text[m[6]] != ' '
	l.BoxStart = runeOffset(text, m[6]) - 1
	l.ContentStart = runeOffset(text, m[1])
	if rest := []rune(text)[l.ContentStart:]; len(rest) > 0 && (rest[0] == ' ' || rest[0] == '\t') {
		l.ContentStart++
	}
}

// IsBareMarker reports whether text is only a list marker with optional
// indentation, as left behind when trailing whitespace is trimmed from an
// empty list item.
func IsBareMarker(text string) bool {
	return bareRE.MatchString(text)
}

// BareMarker returns the marker span of a bare marker line.
func BareMarker(text string) (Range, bool) {
	m := bareRE.FindStringSubmatchIndex(text)
	if m == nil {
		return Range{}, false
	}
	return Range{Start: runeOffset(text, m[2]), End: runeOffset(text, m[3])}, true
}

// IndentWidth returns the visual width of s's leading whitespace with tabs
// counted as IndentUnit.
func IndentWidth(s string) int {
	_, w := leadingWhitespace(s)
	return w
}

func leadingWhitespace(s string) (runes, width int) {
	for _, r := range s {
		switch r {
		case ' ':
			width++
		case '\t':
			width += IndentUnit
		default:
			return runes, width
		}
		runes++
	}
	return runes, width
}

func fenceRun(text string, indent int) (rune, int, bool) {
	rs := []rune(text)
	if indent >= len(rs) {
		return 0, 0, false
	}
	ch := rs[indent]
	if ch != '`' && ch != '~' {
		return 0, 0, false
	}
	n := 0
	for i := indent; i < len(rs) && rs[i] == ch; i++ {
		n++
	}
	if n < 3 {
		return 0, 0, false
	}
	return ch, n, true
}

// isRule reports whether text is three or more of the same one of - * _
// with optional whitespace between them.
func isRule(text string) bool {
	var ch rune
	n := 0
	for _, r := range text {
		switch {
		case r == ' ' || r == '\t':
			continue
		case n == 0 && (r == '-' || r == '*' || r == '_'):
			ch = r
		case r != ch:
			return false
		}
		n++
	}
	return n >= 3
}

func runeOffset(s string, byteIdx int) int {
	return utf8.RuneCountInString(s[:byteIdx])
}
