package model

import (
	"image/color"
	"testing"
)

// ============================================================================
// GlyphItem Tests
// ============================================================================

func TestGlyphItemIsWhitespace(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"empty", "", true},
		{"spaces", "   ", true},
		{"tab and newline", "\t\n", true},
		{"word", "Termination", false},
		{"word with padding", "  for  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := GlyphItem{Text: tt.text}
			if got := g.IsWhitespace(); got != tt.expected {
				t.Errorf("IsWhitespace() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConcatText(t *testing.T) {
	items := []GlyphItem{
		{Text: "Termination"},
		{Text: "for"},
		{Text: "Convenience"},
	}
	if got := ConcatText(items); got != "TerminationforConvenience" {
		t.Errorf("ConcatText() = %q, want %q", got, "TerminationforConvenience")
	}
	if got := ConcatText(nil); got != "" {
		t.Errorf("ConcatText(nil) = %q, want empty", got)
	}
}

// ============================================================================
// HighlightRect Tests
// ============================================================================

func TestUnionBounds(t *testing.T) {
	c := color.NRGBA{R: 255, A: 255}
	rects := []HighlightRect{
		{Rect: NewRect(10, 10, 20, 10), Color: c},
		{Rect: NewRect(40, 10, 20, 10), Color: c},
		{Rect: NewRect(10, 30, 50, 10), Color: c},
	}

	got := UnionBounds(rects)
	want := Rect{10, 10, 50, 30}
	if got != want {
		t.Errorf("UnionBounds() = %+v, want %+v", got, want)
	}

	if got := UnionBounds(nil); got != (Rect{}) {
		t.Errorf("UnionBounds(nil) = %+v, want zero rect", got)
	}
}
