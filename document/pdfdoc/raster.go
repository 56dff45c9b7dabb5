package pdfdoc

import (
	"image"
	"image/color"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/tsawler/clauseview/model"
	"github.com/tsawler/clauseview/viewport"
)

var (
	greekBarColor   = canvas.Hex("#c8c8c8")
	pageBorderColor = canvas.Hex("#999999")
)

// greekBarShare is the fraction of the glyph box a greeked bar fills,
// roughly the cap height of a text face.
const greekBarShare = 0.62

// rasterizeGreeked paints a page preview: white sheet, hairline border,
// one light bar per glyph run at its projected position. The bars stand
// in for painted glyphs, so the preview stays geometrically faithful
// without font embedding.
func rasterizeGreeked(pageWidth, pageHeight, scale float64, rotation int, items []model.GlyphItem) image.Image {
	vp := viewport.New(scale, rotation, pageWidth, pageHeight)
	devW, devH := vp.Bounds()
	if devW < 1 {
		devW = 1
	}
	if devH < 1 {
		devH = 1
	}

	c := canvas.New(devW, devH)
	cc := canvas.NewContext(c)
	cc.SetCoordSystem(canvas.CartesianIV)

	cc.SetFillColor(canvas.White)
	cc.DrawPath(0, 0, canvas.Rectangle(devW, devH))

	cc.SetFillColor(greekBarColor)
	for _, g := range items {
		if g.IsWhitespace() {
			continue
		}
		r := vp.Project(g)
		if r.IsEmpty() {
			continue
		}
		barHeight := r.Height * greekBarShare
		cc.DrawPath(r.Left, r.Top+(r.Height-barHeight), canvas.Rectangle(r.Width, barHeight))
	}

	cc.SetFillColor(color.RGBA{})
	cc.SetStrokeColor(pageBorderColor)
	cc.SetStrokeWidth(1)
	cc.DrawPath(0.5, 0.5, canvas.Rectangle(devW-1, devH-1))

	return rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
}
