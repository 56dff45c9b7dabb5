package overlay

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/tsawler/clauseview/model"
)

// Compositor burns a highlight set into a rasterized page surface.
type Compositor struct {
	// FillAlpha is the opacity of the rectangle fill.
	FillAlpha uint8

	// UnderlineThickness is the height in pixels of the solid bar along
	// each rectangle's bottom edge.
	UnderlineThickness int
}

// NewCompositor returns a compositor with the standard low-opacity fill
// and a 2px underline.
func NewCompositor() Compositor {
	return Compositor{FillAlpha: 64, UnderlineThickness: 2}
}

// Composite copies the surface and draws every rectangle over it: the
// category color as a translucent fill plus an opaque underline. The
// input surface is never modified.
func (c Compositor) Composite(surface image.Image, rects []model.HighlightRect) *image.NRGBA {
	bounds := surface.Bounds()
	out := image.NewNRGBA(bounds)
	xdraw.Copy(out, bounds.Min, surface, bounds, xdraw.Src, nil)

	for _, hr := range rects {
		r := toImageRect(hr.Rect).Intersect(bounds)
		if r.Empty() {
			continue
		}

		fill := hr.Color
		fill.A = c.FillAlpha
		xdraw.Draw(out, r, image.NewUniform(fill), image.Point{}, xdraw.Over)

		if c.UnderlineThickness > 0 {
			under := image.Rect(r.Min.X, r.Max.Y-c.UnderlineThickness, r.Max.X, r.Max.Y).Intersect(r)
			line := hr.Color
			line.A = 0xff
			xdraw.Draw(out, under, image.NewUniform(line), image.Point{}, xdraw.Over)
		}
	}
	return out
}

// toImageRect rounds outward so thin rectangles stay visible.
func toImageRect(r model.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.Left)),
		int(math.Floor(r.Top)),
		int(math.Ceil(r.Left+r.Width)),
		int(math.Ceil(r.Top+r.Height)),
	)
}

// Legend pairs a category with its color for presentation layers that
// render a key next to the overlay.
type Legend struct {
	Category string
	Color    color.NRGBA
	Count    int
}

// Summarize tallies the highlight set per category in first-seen order.
func Summarize(rects []model.HighlightRect) []Legend {
	byCategory := make(map[string]int)
	var order []string
	colors := make(map[string]color.NRGBA)

	for _, hr := range rects {
		if _, seen := byCategory[hr.Category]; !seen {
			order = append(order, hr.Category)
			colors[hr.Category] = hr.Color
		}
		byCategory[hr.Category]++
	}

	legends := make([]Legend, 0, len(order))
	for _, cat := range order {
		legends = append(legends, Legend{Category: cat, Color: colors[cat], Count: byCategory[cat]})
	}
	return legends
}
