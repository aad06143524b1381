package markdown

import (
	"strings"
	"unicode"
)

type SpanKind uint8

const (
	SpanEmphasis SpanKind = iota
	SpanStrike
	SpanCode
	SpanLink
	SpanImage
)

// Span is one inline construct found on a line.
//
// Open and Close are the delimiters, Inner the content between them. Links
// use Open for "[", Close for "]" and Dest for "(url)". Images report the
// whole "![alt](url)" as Open.Start..Close.End.
type Span struct {
	Kind  SpanKind
	Open  Range
	Close Range
	Inner Range
	Dest  Range

	URL   string
	Alt   string
	Title string
}

// Full returns the span from its first to its last syntax rune.
func (s Span) Full() Range {
	end := s.Close.End
	if !s.Dest.Empty() {
		end = s.Dest.End
	}
	return Range{Start: s.Open.Start, End: end}
}

// Delimiters returns the syntax ranges that hide when the span renders.
func (s Span) Delimiters() []Range {
	if s.Kind == SpanLink {
		return []Range{s.Open, s.Close, s.Dest}
	}
	return []Range{s.Open, s.Close}
}

// Emphasis finds runs of one to three '*' or '_' closed by the same run with
// non-empty content free of either character. '_' runs do not open or close
// inside a word.
func Emphasis(text string) []Span {
	rs := []rune(text)
	var out []Span
	for i := 0; i < len(rs); {
		c := rs[i]
		if c != '*' && c != '_' {
			i++
			continue
		}
		run := countRepeat(rs[i:], c)
		if run > 3 || (c == '_' && isWordRune(rs, i-1)) {
			i++
			continue
		}
		start := i + run
		end := start
		for end < len(rs) && rs[end] != '*' && rs[end] != '_' {
			end++
		}
		if end == start || !hasRepeat(rs[end:], c, run) || (c == '_' && isWordRune(rs, end+run)) {
			i++
			continue
		}
		out = append(out, Span{
			Kind:  SpanEmphasis,
			Open:  Range{Start: i, End: start},
			Inner: Range{Start: start, End: end},
			Close: Range{Start: end, End: end + run},
		})
		i = end + run
	}
	return out
}

// Strikethrough finds "~~text~~" spans with the shortest non-empty content.
func Strikethrough(text string) []Span {
	rs := []rune(text)
	var out []Span
	for i := 0; i+1 < len(rs); {
		if rs[i] != '~' || rs[i+1] != '~' {
			i++
			continue
		}
		end := -1
		for j := i + 3; j+1 < len(rs); j++ {
			if rs[j] == '~' && rs[j+1] == '~' {
				end = j
				break
			}
		}
		if end < 0 {
			break
		}
		out = append(out, Span{
			Kind:  SpanStrike,
			Open:  Range{Start: i, End: i + 2},
			Inner: Range{Start: i + 2, End: end},
			Close: Range{Start: end, End: end + 2},
		})
		i = end + 2
	}
	return out
}

// Code finds backtick code spans. A run of n backticks closes only at the
// next run of exactly n backticks; unmatched runs are literal text.
func Code(text string) []Span {
	rs := []rune(text)
	var out []Span
	for i := 0; i < len(rs); {
		if rs[i] != '`' {
			i++
			continue
		}
		run := countRepeat(rs[i:], '`')
		end := findClosingRun(rs, i+run, '`', run)
		if end < 0 {
			i += run
			continue
		}
		out = append(out, Span{
			Kind:  SpanCode,
			Open:  Range{Start: i, End: i + run},
			Inner: Range{Start: i + run, End: end},
			Close: Range{Start: end, End: end + run},
		})
		i = end + run
	}
	return out
}

// Links finds "[text](url)" spans that are not images.
func Links(text string) []Span {
	rs := []rune(text)
	var out []Span
	for i := 0; i < len(rs); i++ {
		if rs[i] != '[' || (i > 0 && rs[i-1] == '!') {
			continue
		}
		closeText, dest, ok := linkParts(rs, i, false)
		if !ok {
			continue
		}
		out = append(out, Span{
			Kind:  SpanLink,
			Open:  Range{Start: i, End: i + 1},
			Inner: Range{Start: i + 1, End: closeText},
			Close: Range{Start: closeText, End: closeText + 1},
			Dest:  dest,
			URL:   string(rs[dest.Start+1 : dest.End-1]),
		})
		i = dest.End - 1
	}
	return out
}

// Images finds "![alt](url)" and "![alt](url "title")" spans.
func Images(text string) []Span {
	rs := []rune(text)
	var out []Span
	for i := 0; i+1 < len(rs); i++ {
		if rs[i] != '!' || rs[i+1] != '[' {
			continue
		}
		closeAlt, dest, ok := linkParts(rs, i+1, true)
		if !ok {
			continue
		}
		url, title, ok := splitImageTarget(string(rs[dest.Start+1 : dest.End-1]))
		if !ok {
			continue
		}
		out = append(out, Span{
			Kind:  SpanImage,
			Open:  Range{Start: i, End: i + 2},
			Inner: Range{Start: i + 2, End: closeAlt},
			Close: Range{Start: closeAlt, End: dest.End},
			URL:   url,
			Alt:   string(rs[i+2 : closeAlt]),
			Title: title,
		})
		i = dest.End - 1
	}
	return out
}

// linkParts scans "[text](dest)" starting at the '[' at open. It returns the
// offset of ']' and the "(dest)" range including parentheses.
func linkParts(rs []rune, open int, allowEmptyText bool) (int, Range, bool) {
	closeText := -1
	for j := open + 1; j < len(rs); j++ {
		if rs[j] == ']' {
			closeText = j
			break
		}
	}
	if closeText < 0 || (!allowEmptyText && closeText == open+1) {
		return 0, Range{}, false
	}
	p := closeText + 1
	if p >= len(rs) || rs[p] != '(' {
		return 0, Range{}, false
	}
	for j := p + 1; j < len(rs); j++ {
		if rs[j] == ')' {
			if j == p+1 {
				return 0, Range{}, false
			}
			return closeText, Range{Start: p, End: j + 1}, true
		}
	}
	return 0, Range{}, false
}

func splitImageTarget(raw string) (url, title string, ok bool) {
	raw = strings.TrimRightFunc(raw, unicode.IsSpace)
	idx := strings.IndexFunc(raw, unicode.IsSpace)
	if idx < 0 {
		return raw, "", raw != ""
	}
	url = raw[:idx]
	rest := strings.TrimLeftFunc(raw[idx:], unicode.IsSpace)
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' || strings.Count(rest, `"`) != 2 {
		return "", "", false
	}
	return url, rest[1 : len(rest)-1], url != ""
}

func countRepeat(rs []rune, c rune) int {
	n := 0
	for n < len(rs) && rs[n] == c {
		n++
	}
	return n
}

func hasRepeat(rs []rune, c rune, n int) bool {
	if len(rs) < n {
		return false
	}
	for i := 0; i < n; i++ {
		if rs[i] != c {
			return false
		}
	}
	return true
}

func findClosingRun(rs []rune, from int, c rune, n int) int {
	for i := from; i < len(rs); {
		if rs[i] != c {
			i++
			continue
		}
		run := countRepeat(rs[i:], c)
		if run == n && i > from {
			return i
		}
		i += run
	}
	return -1
}

func isWordRune(rs []rune, i int) bool {
	if i < 0 || i >= len(rs) {
		return false
	}
	return unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i])
}
