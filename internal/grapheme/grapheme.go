package grapheme

import (
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Cluster is one grapheme cluster of a line. Start and End are rune offsets.
type Cluster struct {
	Text  string
	Start int
	End   int
}

// Clusters splits text into grapheme clusters with their rune offsets.
func Clusters(text string) []Cluster {
	if text == "" {
		return nil
	}
	out := make([]Cluster, 0, len(text))
	off := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		n := len(g.Runes())
		out = append(out, Cluster{Text: g.Str(), Start: off, End: off + n})
		off += n
	}
	return out
}

// Split returns grapheme clusters for text in visual order.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	g := uniseg.NewGraphemes(text)
	out := make([]string, 0, len(text))
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Count returns the number of grapheme clusters in text.
func Count(text string) int {
	if text == "" {
		return 0
	}
	g := uniseg.NewGraphemes(text)
	n := 0
	for g.Next() {
		n++
	}
	return n
}

// Width returns the terminal cell width of a cluster drawn at cell col.
// Tabs advance to the next multiple of tabWidth.
func Width(cluster string, col, tabWidth int) int {
	if cluster == "\t" {
		if tabWidth <= 0 {
			tabWidth = 4
		}
		return tabWidth - col%tabWidth
	}
	w := runewidth.StringWidth(cluster)
	if w == 0 {
		w = uniseg.StringWidth(cluster)
	}
	return max(w, 0)
}

// StringWidth returns the cell width of text without tabs.
func StringWidth(text string) int {
	w := 0
	for _, c := range Split(text) {
		w += max(Width(c, w, 1), 1)
	}
	return w
}

// IsSpace reports whether all runes in cluster are Unicode whitespace.
func IsSpace(cluster string) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// IsPunct reports whether all runes in cluster are Unicode punctuation.
func IsPunct(cluster string) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return true
}
