package editor

import (
	"strings"

	"github.com/iw2rmb/bunmark/decor"
	"github.com/iw2rmb/bunmark/internal/grapheme"
)

type VisualTokenKind int

const (
	VisualTokenDoc VisualTokenKind = iota
	VisualTokenVirtual
)

type VisualToken struct {
	Kind VisualTokenKind

	// Text is the rendered token text. Tabs are expanded to spaces.
	Text string

	// StartCell is the visual cell offset where this token begins.
	StartCell int

	// CellWidth is the number of terminal cells this token occupies.
	CellWidth int

	// DocStartCol/DocEndCol are the raw rune columns this token draws. For
	// virtual tokens both equal the anchor column.
	DocStartCol int
	DocEndCol   int

	// Class is the inline style class of a doc token.
	Class string

	// Role, Widget and the mark range are meaningful only for virtual tokens.
	Role               VirtualRole
	Widget             decor.Widget
	MarkStart, MarkEnd int
}

type VisualLine struct {
	RawLen int // rune length of the raw buffer line

	Tokens []VisualToken

	// CellToDocCol maps each visual cell to a raw rune column. Every cell of
	// a wide grapheme maps to its first rune; virtual cells map to their
	// anchor column.
	CellToDocCol []int

	// DocColToCell maps raw rune columns to a visual cell offset. Deleted
	// columns map to the next visible column (or EOL if none).
	DocColToCell []int
}

func BuildVisualLine(rawLine string, vt VirtualText, tabWidth int) VisualLine {
	clusters := grapheme.Clusters(rawLine)
	rawLen := 0
	if n := len(clusters); n > 0 {
		rawLen = clusters[n-1].End
	}
	if tabWidth <= 0 {
		tabWidth = 4
	}

	vt = normalizeVirtualText(vt, rawLen)

	deleted := make([]bool, rawLen)
	for _, d := range vt.Deletions {
		for i := d.StartCol; i < d.EndCol; i++ {
			deleted[i] = true
		}
	}

	var (
		tokens     []VisualToken
		cellToDoc  []int
		visualCell int
	)
	appendToken := func(tok VisualToken, mapCol int) {
		tok.CellWidth = max(tok.CellWidth, 1)
		if tok.Text == "" {
			tok.Text = " "
		}
		tok.StartCell = visualCell
		for range tok.CellWidth {
			cellToDoc = append(cellToDoc, mapCol)
		}
		tokens = append(tokens, tok)
		visualCell += tok.CellWidth
	}
	appendInsertion := func(in VirtualInsertion) {
		appendToken(VisualToken{
			Kind:        VisualTokenVirtual,
			Text:        in.Text,
			CellWidth:   grapheme.StringWidth(in.Text),
			DocStartCol: in.Col,
			DocEndCol:   in.Col,
			Role:        in.Role,
			Widget:      in.Widget,
			MarkStart:   in.MarkStart,
			MarkEnd:     in.MarkEnd,
		}, in.Col)
	}

	ins := vt.Insertions
	insIdx := 0
	for _, cl := range clusters {
		if deleted[cl.Start] {
			continue
		}
		// Emit insertions that anchor before (or inside) this cluster.
		for insIdx < len(ins) && ins[insIdx].Col < cl.End {
			appendInsertion(ins[insIdx])
			insIdx++
		}
		tok := VisualToken{
			Kind:        VisualTokenDoc,
			Text:        cl.Text,
			CellWidth:   grapheme.Width(cl.Text, visualCell, tabWidth),
			DocStartCol: cl.Start,
			DocEndCol:   cl.End,
			Class:       vt.classAt(cl.Start),
		}
		if cl.Text == "\t" {
			tok.Text = strings.Repeat(" ", tok.CellWidth)
		}
		appendToken(tok, cl.Start)
	}
	// Remaining insertions, including EOL insertions.
	for ; insIdx < len(ins); insIdx++ {
		appendInsertion(ins[insIdx])
	}

	visualLen := len(cellToDoc)
	docToCell := make([]int, rawLen+1)
	for i := range docToCell {
		docToCell[i] = -1
	}
	docToCell[rawLen] = visualLen
	for _, tok := range tokens {
		if tok.Kind != VisualTokenDoc {
			continue
		}
		for c := tok.DocStartCol; c < tok.DocEndCol && c < rawLen; c++ {
			docToCell[c] = tok.StartCell
		}
	}
	for c := rawLen - 1; c >= 0; c-- {
		if docToCell[c] < 0 {
			docToCell[c] = docToCell[c+1]
		}
	}

	return VisualLine{
		RawLen:       rawLen,
		Tokens:       tokens,
		CellToDocCol: cellToDoc,
		DocColToCell: docToCell,
	}
}

func (vl VisualLine) VisualLen() int { return len(vl.CellToDocCol) }

// Text returns the rendered line without styles.
func (vl VisualLine) Text() string {
	var sb strings.Builder
	for _, tok := range vl.Tokens {
		sb.WriteString(tok.Text)
	}
	return sb.String()
}

func (vl VisualLine) DocColForVisualCell(x int) int {
	if len(vl.CellToDocCol) == 0 || x >= len(vl.CellToDocCol) {
		return vl.RawLen
	}
	x = max(x, 0)
	return clampInt(vl.CellToDocCol[x], 0, vl.RawLen)
}

func (vl VisualLine) VisualCellForDocCol(col int) int {
	col = clampInt(col, 0, vl.RawLen)
	if len(vl.DocColToCell) == 0 {
		return 0
	}
	return clampInt(vl.DocColToCell[col], 0, vl.VisualLen())
}

// TokenAt returns the token covering cell x.
func (vl VisualLine) TokenAt(x int) (VisualToken, bool) {
	for _, tok := range vl.Tokens {
		if x >= tok.StartCell && x < tok.StartCell+tok.CellWidth {
			return tok, true
		}
	}
	return VisualToken{}, false
}

// cursorCellForVisualLine returns the cell the cursor at col is drawn in.
func cursorCellForVisualLine(vl VisualLine, col int) int {
	return vl.VisualCellForDocCol(col)
}
