package model

import "image/color"

// HighlightRect is one screen rectangle of a clause highlight overlay.
// It is fully derived state: rebuilt from the current glyph snapshot on
// every page, scale or rotation change and never carried across renders.
type HighlightRect struct {
	Rect
	Color          color.NRGBA
	Category       string
	TooltipLabel   string
	ClauseSequence int
}

// UnionBounds returns the bounding box covering every rectangle in the
// set, or a zero Rect for an empty set.
func UnionBounds(rects []HighlightRect) Rect {
	var u Rect
	for _, hr := range rects {
		u = u.Union(hr.Rect)
	}
	return u
}
