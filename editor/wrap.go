package editor

import "github.com/iw2rmb/bunmark/internal/grapheme"

type wrappedSegment struct {
	StartCol int
	EndCol   int
	Cells    int

	startCell int
	endCell   int
}

type wrapUnit struct {
	startCell int
	endCell   int
	width     int

	isWhitespace bool
	isPunct      bool
}

func wrapSegmentsForVisualLine(vl VisualLine, mode WrapMode, width int) []wrappedSegment {
	visualLen := vl.VisualLen()
	if width <= 0 || mode == WrapNone {
		return []wrappedSegment{{
			EndCol:  vl.RawLen,
			Cells:   visualLen,
			endCell: visualLen,
		}}
	}

	units := wrapUnitsFromVisualLine(vl)
	if len(units) == 0 {
		return []wrappedSegment{{}}
	}

	segments := make([]wrappedSegment, 0, 1+visualLen/max(width, 1))
	for start := 0; start < len(units); {
		used := 0
		overflow := start
		for overflow < len(units) {
			w := max(units[overflow].width, 1)
			if used > 0 && used+w > width {
				break
			}
			used += w
			overflow++
		}
		if overflow <= start {
			overflow = min(start+1, len(units))
		}

		end := overflow
		if mode == WrapWord && overflow < len(units) {
			if br, ok := findWordWrapBreak(units, start, overflow); ok {
				end = br
			} else {
				end = adjustBreakForLeadingPunctuation(units, start, overflow)
			}
		}
		if end <= start {
			end = min(start+1, len(units))
		}

		segments = append(segments, segmentFromUnitRange(vl, units, start, end))
		start = end
	}
	return segments
}

func wrapUnitsFromVisualLine(vl VisualLine) []wrapUnit {
	if len(vl.Tokens) == 0 {
		return nil
	}

	units := make([]wrapUnit, 0, len(vl.Tokens))
	for _, tok := range vl.Tokens {
		if tok.CellWidth <= 0 {
			continue
		}
		// Expanded tabs split into single-cell units.
		if tok.Kind == VisualTokenDoc && tokenIsSplittableSpaces(tok) {
			for c := range tok.CellWidth {
				startCell := tok.StartCell + c
				units = append(units, wrapUnit{
					startCell:    startCell,
					endCell:      startCell + 1,
					width:        1,
					isWhitespace: true,
				})
			}
			continue
		}

		isWhitespace, isPunct := tokenClass(tok.Text)
		if tok.Kind == VisualTokenVirtual {
			// Widgets never break.
			isWhitespace, isPunct = false, false
		}
		units = append(units, wrapUnit{
			startCell:    tok.StartCell,
			endCell:      tok.StartCell + tok.CellWidth,
			width:        tok.CellWidth,
			isWhitespace: isWhitespace,
			isPunct:      isPunct,
		})
	}
	return units
}

func tokenIsSplittableSpaces(tok VisualToken) bool {
	if tok.Text == "" || tok.CellWidth != len(tok.Text) {
		return false
	}
	for _, gr := range grapheme.Split(tok.Text) {
		if gr != " " {
			return false
		}
	}
	return true
}

func tokenClass(text string) (isWhitespace bool, isPunct bool) {
	if text == "" {
		return false, false
	}
	isWhitespace, isPunct = true, true
	for _, gr := range grapheme.Split(text) {
		if !grapheme.IsSpace(gr) {
			isWhitespace = false
		}
		if !grapheme.IsPunct(gr) {
			isPunct = false
		}
	}
	if isWhitespace {
		isPunct = false
	}
	return isWhitespace, isPunct
}

func segmentFromUnitRange(vl VisualLine, units []wrapUnit, start, end int) wrappedSegment {
	startCell := units[start].startCell
	endCell := max(units[end-1].endCell, startCell)

	startCol := vl.DocColForVisualCell(startCell)
	endCol := vl.RawLen
	if endCell < vl.VisualLen() {
		endCol = vl.DocColForVisualCell(endCell)
	}
	endCol = max(endCol, startCol)

	return wrappedSegment{
		StartCol:  startCol,
		EndCol:    endCol,
		Cells:     endCell - startCell,
		startCell: startCell,
		endCell:   endCell,
	}
}
