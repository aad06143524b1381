package markdown

// Range is a half-open rune span [Start, End) within one line.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) Empty() bool { return r.End <= r.Start }

// Overlaps reports whether r and o share at least one rune.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// Ranges is a set of claimed spans on a line.
type Ranges []Range

// Overlaps reports whether r intersects any claimed span.
func (rs Ranges) Overlaps(r Range) bool {
	for _, c := range rs {
		if c.Overlaps(r) {
			return true
		}
	}
	return false
}

// Add claims every non-empty range in add.
func (rs *Ranges) Add(add ...Range) {
	for _, r := range add {
		if !r.Empty() {
			*rs = append(*rs, r)
		}
	}
}

// Near reports whether cursor sits within one rune of [start, end].
func Near(cursor, start, end int) bool {
	return cursor >= start-1 && cursor <= end
}
