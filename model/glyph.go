package model

import "strings"

// GlyphItem is an atomic run of characters sharing one affine placement
// within a page's text layout. Transform maps the run's baseline origin
// into unscaled page space; Width is the run's advance width in the same
// units. Glyph items are immutable and belong to exactly one
// page/scale/rotation snapshot.
type GlyphItem struct {
	Text      string
	Transform Matrix
	Width     float64
}

// IsWhitespace reports whether the run contains no visible characters.
// Whitespace-only runs contribute nothing to matching or rectangles.
func (g GlyphItem) IsWhitespace() bool {
	return strings.TrimSpace(g.Text) == ""
}

// ConcatText joins the text of all items in content order. Useful for
// debugging and for provider tests; matching never uses this form.
func ConcatText(items []GlyphItem) string {
	var sb strings.Builder
	for _, g := range items {
		sb.WriteString(g.Text)
	}
	return sb.String()
}
