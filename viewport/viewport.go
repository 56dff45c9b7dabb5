// Package viewport converts glyph placements from unscaled page space
// into top-anchored device space for a given zoom and rotation.
package viewport

import (
	"github.com/tsawler/clauseview/model"
)

// Viewport is the coordinate frame implied by a page's current scale and
// rotation. PageWidth and PageHeight are the page's unscaled dimensions
// at rotation 0. Page space is bottom-anchored (Y up); device space is
// top-anchored (Y down).
type Viewport struct {
	Scale      float64
	Rotation   int
	PageWidth  float64
	PageHeight float64
}

// New returns a viewport with the rotation normalized to 0, 90, 180 or
// 270 degrees.
func New(scale float64, rotation int, pageWidth, pageHeight float64) Viewport {
	return Viewport{
		Scale:      scale,
		Rotation:   NormalizeRotation(rotation),
		PageWidth:  pageWidth,
		PageHeight: pageHeight,
	}
}

// NormalizeRotation maps any degree value onto {0, 90, 180, 270}.
func NormalizeRotation(deg int) int {
	r := ((deg % 360) + 360) % 360
	return r - r%90
}

// Transform returns the affine matrix mapping page space to device
// space: scale applied uniformly, rotation clockwise in quarter turns,
// origin moved so the rotated page lands with its top-left corner at
// device (0, 0).
func (v Viewport) Transform() model.Matrix {
	k := v.Scale
	w := v.PageWidth
	h := v.PageHeight

	switch NormalizeRotation(v.Rotation) {
	case 90:
		return model.Matrix{0, k, k, 0, 0, 0}
	case 180:
		return model.Matrix{-k, 0, 0, k, k * w, 0}
	case 270:
		return model.Matrix{0, -k, -k, 0, k * h, k * w}
	default:
		return model.Matrix{k, 0, 0, -k, 0, k * h}
	}
}

// Bounds returns the device-space size of the rendered page. Width and
// height trade places at quarter-turn rotations.
func (v Viewport) Bounds() (width, height float64) {
	w := v.PageWidth * v.Scale
	h := v.PageHeight * v.Scale
	switch NormalizeRotation(v.Rotation) {
	case 90, 270:
		return h, w
	default:
		return w, h
	}
}

// Project maps one glyph item into a device-space rectangle.
//
// The viewport transform is composed with the glyph's placement; the
// composed translation is the baseline anchor. Glyph placement is
// baseline-anchored while device space is top-anchored, so the rectangle
// extends from the anchor along the composed transform's basis vectors:
// the glyph height is the vertical basis magnitude (so rotation and skew
// are respected, never a hardcoded axis) and the run length is the
// glyph's intrinsic width times the uniform scale. The result is the
// axis-aligned box of that extent; under quarter-turn rotation its width
// and height trade places. Degenerate placements project to an empty
// rectangle.
func (v Viewport) Project(g model.GlyphItem) model.Rect {
	m := g.Transform.Multiply(v.Transform())

	height := m.VerticalMagnitude()
	runLen := g.Width * v.Scale
	hm := m.HorizontalMagnitude()
	if height <= 0 || runLen <= 0 || hm <= 0 {
		return model.Rect{}
	}

	anchor := m.Anchor()
	run := model.Point{X: m[0] / hm * runLen, Y: m[1] / hm * runLen}
	ascent := model.Point{X: m[2], Y: m[3]}

	minX, maxX := anchor.X, anchor.X
	minY, maxY := anchor.Y, anchor.Y
	for _, p := range []model.Point{
		{X: anchor.X + run.X, Y: anchor.Y + run.Y},
		{X: anchor.X + ascent.X, Y: anchor.Y + ascent.Y},
		{X: anchor.X + run.X + ascent.X, Y: anchor.Y + run.Y + ascent.Y},
	} {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	return model.Rect{
		Left:   minX,
		Top:    minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}
