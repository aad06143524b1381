package editor

import (
	"fmt"
	"testing"

	"github.com/iw2rmb/bunmark/decor"
	"github.com/iw2rmb/bunmark/markdown"
)

func TestVisualLine_Mapping_DeletionRemovesColumns(t *testing.T) {
	vl := BuildVisualLine("abcd", VirtualText{
		Deletions: []VirtualDeletion{{StartCol: 1, EndCol: 3}}, // hide "bc"
	}, 4)

	if got, want := fmt.Sprintf("%v", vl.CellToDocCol), "[0 3]"; got != want {
		t.Fatalf("visual->doc: got %s, want %s", got, want)
	}
	if got := vl.DocColToCell; len(got) != 5 {
		t.Fatalf("doc->visual len: got %d, want %d", len(got), 5)
	}
	if got, want := vl.DocColToCell[1], 1; got != want {
		t.Fatalf("doc col 1 maps to: got %d, want %d", got, want)
	}
	if got, want := vl.DocColToCell[2], 1; got != want {
		t.Fatalf("doc col 2 maps to: got %d, want %d", got, want)
	}
}

func TestVisualLine_Mapping_InsertionAddsCellsButDocStaysAnchored(t *testing.T) {
	vl := BuildVisualLine("ab", VirtualText{
		Insertions: []VirtualInsertion{{Col: 1, Text: "XX"}},
	}, 4)

	if got, want := fmt.Sprintf("%v", vl.CellToDocCol), "[0 1 1 1]"; got != want {
		t.Fatalf("visual->doc: got %s, want %s", got, want)
	}
	if got, want := vl.DocColToCell[1], 3; got != want {
		t.Fatalf("doc col 1 visual cell: got %d, want %d", got, want)
	}
}

func TestVisualLine_Mapping_WideGraphemeMapsAllCellsToOneDocCol(t *testing.T) {
	vl := BuildVisualLine("界", VirtualText{}, 4)
	if got, want := len(vl.CellToDocCol), 2; got != want {
		t.Fatalf("visual len: got %d, want %d", got, want)
	}
	if got, want := fmt.Sprintf("%v", vl.CellToDocCol), "[0 0]"; got != want {
		t.Fatalf("visual->doc: got %s, want %s", got, want)
	}
}

func TestVisualLine_Mapping_TabExpansionDeterministic(t *testing.T) {
	vl := BuildVisualLine("a\tb", VirtualText{}, 4)
	if got, want := fmt.Sprintf("%v", vl.CellToDocCol), "[0 1 1 1 2]"; got != want {
		t.Fatalf("visual->doc: got %s, want %s", got, want)
	}
	if got, want := vl.Text(), "a   b"; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}
}

func TestVisualLine_Mapping_CombiningClusterSpansRunes(t *testing.T) {
	vl := BuildVisualLine("e\u0301x", VirtualText{
		Deletions: []VirtualDeletion{{StartCol: 0, EndCol: 2}},
	}, 4)

	if got, want := vl.RawLen, 3; got != want {
		t.Fatalf("raw len: got %d, want %d", got, want)
	}
	if got, want := fmt.Sprintf("%v", vl.CellToDocCol), "[2]"; got != want {
		t.Fatalf("visual->doc: got %s, want %s", got, want)
	}
	if got, want := vl.DocColToCell[0], 0; got != want {
		t.Fatalf("deleted cluster maps to next visible cell: got %d, want %d", got, want)
	}
}

func TestVirtualTextForMarks(t *testing.T) {
	marks := []decor.Mark{
		{Line: 0, Range: markdown.Range{Start: 0, End: 2}, Decoration: decor.Decoration{Kind: decor.Hidden}},
		{Line: 0, Range: markdown.Range{Start: 2, End: 6}, Decoration: decor.Decoration{Kind: decor.Styled, Class: "strong"}},
	}
	widget := []decor.Mark{
		{Line: 0, Range: markdown.Range{Start: 7, End: 10}, Decoration: decor.Decoration{Kind: decor.Replaced, Widget: decor.Checkbox{Row: 0}}},
	}
	vt := virtualTextForMarks(marks, widget)

	if len(vt.Deletions) != 2 || len(vt.Insertions) != 1 || len(vt.Spans) != 1 {
		t.Fatalf("virtual text: got %+v", vt)
	}
	in := vt.Insertions[0]
	if in.Col != 7 || in.Text != "☐" || in.MarkStart != 7 || in.MarkEnd != 10 {
		t.Fatalf("insertion: got %+v", in)
	}
	if _, ok := in.Widget.(decor.Checkbox); !ok {
		t.Fatalf("insertion widget: got %T", in.Widget)
	}

	vl := BuildVisualLine("# bold [ ] x", vt, 4)
	if got, want := vl.Text(), "bold ☐ x"; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}
	tok, ok := vl.TokenAt(5)
	if !ok || tok.Kind != VisualTokenVirtual {
		t.Fatalf("token at 5: got %+v", tok)
	}
	if tok, _ := vl.TokenAt(2); tok.Class != "strong" {
		t.Fatalf("token at 2 class: got %q, want %q", tok.Class, "strong")
	}
}
