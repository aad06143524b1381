package grapheme

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const family = "\U0001F468\u200d\U0001F469\u200d\U0001F467"

func TestSplitAndCount_MultiRuneGraphemes(t *testing.T) {
	text := "a" + "e\u0301" + family + "b"
	got := Split(text)
	if len(got) != 4 {
		t.Fatalf("split len=%d, want %d", len(got), 4)
	}
	if got[1] != "e\u0301" {
		t.Fatalf("split[1]=%q, want %q", got[1], "e\u0301")
	}
	if got[2] != family {
		t.Fatalf("split[2]=%q, want family emoji", got[2])
	}
	if c := Count(text); c != 4 {
		t.Fatalf("count=%d, want %d", c, 4)
	}
}

func TestClusters_RuneOffsets(t *testing.T) {
	got := Clusters("ae\u0301" + family)
	want := []Cluster{
		{Text: "a", Start: 0, End: 1},
		{Text: "e\u0301", Start: 1, End: 3},
		{Text: family, Start: 3, End: 8},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("clusters (-want +got):\n%s", diff)
	}
	if Clusters("") != nil {
		t.Fatalf("empty text should have no clusters")
	}
}

func TestWidth(t *testing.T) {
	tests := []struct {
		cluster string
		col     int
		tab     int
		want    int
	}{
		{"a", 0, 4, 1},
		{"世", 0, 4, 2},
		{"\t", 0, 4, 4},
		{"\t", 3, 4, 1},
		{"\t", 5, 0, 3},
	}
	for _, tt := range tests {
		if got := Width(tt.cluster, tt.col, tt.tab); got != tt.want {
			t.Fatalf("Width(%q, %d, %d)=%d, want %d", tt.cluster, tt.col, tt.tab, got, tt.want)
		}
	}
	if got := StringWidth("a世b"); got != 4 {
		t.Fatalf("StringWidth=%d, want 4", got)
	}
}

func TestClassifiers(t *testing.T) {
	if !IsSpace("\t") {
		t.Fatalf("tab should be space")
	}
	if IsSpace("a") {
		t.Fatalf("letter should not be space")
	}
	if !IsPunct("!") {
		t.Fatalf("exclamation should be punct")
	}
	if IsPunct("a") {
		t.Fatalf("letter should not be punct")
	}
}
