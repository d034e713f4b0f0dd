package ingest

import (
	"reflect"
	"strings"
	"testing"
)

func TestPackParagraphs_PacksUpToLimit(t *testing.T) {
	text := "aaaa\n\nbbbb\n\ncccc"
	chunks := PackParagraphs(text, 10)
	want := []string{"aaaa\n\nbbbb", "cccc"}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("chunks = %q, want %q", chunks, want)
	}
}

func TestPackParagraphs_NeverSplitsParagraph(t *testing.T) {
	big := strings.Repeat("x", 50)
	chunks := PackParagraphs("small\n\n"+big+"\n\ntail", 10)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d (%q), want 3", len(chunks), chunks)
	}
	if chunks[1] != big {
		t.Errorf("oversized paragraph not kept whole: %q", chunks[1])
	}
}

func TestPackParagraphs_SkipsBlankParagraphs(t *testing.T) {
	chunks := PackParagraphs("one\n\n   \n\ntwo", 100)
	want := []string{"one\n\ntwo"}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("chunks = %q, want %q", chunks, want)
	}
}

func TestPackParagraphs_EmptyInput(t *testing.T) {
	if chunks := PackParagraphs("", 100); len(chunks) != 0 {
		t.Errorf("chunks = %q, want none", chunks)
	}
	if chunks := PackParagraphs("\n\n\n\n", 100); len(chunks) != 0 {
		t.Errorf("chunks = %q, want none", chunks)
	}
}

func TestPackParagraphs_Deterministic(t *testing.T) {
	text := "alpha\n\nbeta\n\ngamma\n\ndelta"
	a := PackParagraphs(text, 12)
	b := PackParagraphs(text, 12)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("non-deterministic: %q vs %q", a, b)
	}
}

func TestChunkByWords(t *testing.T) {
	// 8 target tokens -> 6 words per chunk.
	words := make([]string, 14)
	for i := range words {
		words[i] = "w"
	}
	chunks := ChunkByWords(strings.Join(words, " "), 8)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if got := len(strings.Fields(chunks[0])); got != 6 {
		t.Errorf("first chunk words = %d, want 6", got)
	}
	if got := len(strings.Fields(chunks[2])); got != 2 {
		t.Errorf("last chunk words = %d, want 2", got)
	}
}

func TestChunkByWords_Empty(t *testing.T) {
	if chunks := ChunkByWords("   ", 100); len(chunks) != 0 {
		t.Errorf("chunks = %q, want none", chunks)
	}
}
