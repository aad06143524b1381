package markdown

// Inline holds every inline span of a line, in rune offsets of the line.
type Inline struct {
	Emphasis []Span
	Strike   []Span
	Code     []Span
	Links    []Span
	Images   []Span
}

// ScanInline scans text from rune offset from onward. Spans whose delimiters
// fall inside a code span are literal text and are dropped.
func ScanInline(text string, from int) Inline {
	rs := []rune(text)
	from = max(0, min(from, len(rs)))
	sub := string(rs[from:])

	in := Inline{Code: shift(Code(sub), from)}
	in.Emphasis = outsideCode(shift(Emphasis(sub), from), in.Code)
	in.Strike = outsideCode(shift(Strikethrough(sub), from), in.Code)
	in.Links = outsideCode(shift(Links(sub), from), in.Code)
	in.Images = outsideCode(shift(Images(sub), from), in.Code)
	return in
}

// InCode reports whether any delimiter of s overlaps a code span.
func InCode(s Span, code []Span) bool {
	for _, c := range code {
		full := c.Full()
		for _, d := range s.Delimiters() {
			if d.Overlaps(full) {
				return true
			}
		}
	}
	return false
}

func outsideCode(spans, code []Span) []Span {
	if len(code) == 0 {
		return spans
	}
	out := spans[:0]
	for _, s := range spans {
		if !InCode(s, code) {
			out = append(out, s)
		}
	}
	return out
}

func shift(spans []Span, off int) []Span {
	if off == 0 {
		return spans
	}
	mv := func(r Range) Range {
		if r == (Range{}) {
			return r
		}
		return Range{Start: r.Start + off, End: r.End + off}
	}
	for i := range spans {
		spans[i].Open = mv(spans[i].Open)
		spans[i].Close = mv(spans[i].Close)
		spans[i].Inner = mv(spans[i].Inner)
		spans[i].Dest = mv(spans[i].Dest)
	}
	return spans
}
