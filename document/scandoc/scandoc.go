// Package scandoc recovers a text layout from scanned page images.
//
// The provider runs Tesseract (via gosseract) over a page image and
// turns each recognized word's bounding box into a glyph item, so
// scanned contracts flow through the same alignment path as born-digital
// ones. OCR support is compiled in with the "ocr" build tag; without it
// the provider fails with [ErrOCRNotEnabled]. Page units are image
// pixels: a word box projects back onto exactly the pixels it was
// recognized at.
package scandoc

import (
	"context"
	"errors"
	"image"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/tsawler/clauseview/document"
	"github.com/tsawler/clauseview/model"
	"github.com/tsawler/clauseview/viewport"
)

// ErrOCRNotEnabled is returned when OCR support was not compiled in.
// Rebuild with -tags ocr (Tesseract must be installed) to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Word is one recognized word and its pixel bounding box in the source
// image.
type Word struct {
	Text string
	Box  image.Rectangle
}

// documentFromImage builds a one-page document over a scanned image and
// its recognized words. Whitespace-only words and empty boxes are
// dropped; the rest become glyph items whose transforms place the word
// box in bottom-anchored page space.
func documentFromImage(img image.Image, words []Word) document.Document {
	b := img.Bounds()
	pageH := float64(b.Dy())

	items := make([]model.GlyphItem, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" || w.Box.Empty() {
			continue
		}
		h := float64(w.Box.Dy())
		items = append(items, model.GlyphItem{
			Text:      w.Text,
			Transform: model.Matrix{h, 0, 0, h, float64(w.Box.Min.X), pageH - float64(w.Box.Max.Y)},
			Width:     float64(w.Box.Dx()),
		})
	}

	return &scanDocument{
		page: scanPage{
			img:    img,
			width:  float64(b.Dx()),
			height: pageH,
			items:  items,
		},
	}
}

type scanDocument struct {
	page scanPage

	mu     sync.Mutex
	closed bool
}

func (d *scanDocument) PageCount() int { return 1 }

func (d *scanDocument) Page(number int) (document.Page, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil, document.ErrDocumentClosed
	}
	if number != 1 {
		return nil, document.ErrPageOutOfRange
	}
	return &d.page, nil
}

func (d *scanDocument) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

type scanPage struct {
	img    image.Image
	width  float64
	height float64
	items  []model.GlyphItem
}

func (p *scanPage) Size() (width, height float64) {
	return p.width, p.height
}

func (p *scanPage) TextLayout(ctx context.Context) ([]model.GlyphItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.GlyphItem, len(p.items))
	copy(out, p.items)
	return out, nil
}

// Rasterize resamples the scanned image into device space with the
// viewport transform, so zoom and rotation behave exactly as they do
// for born-digital pages.
func (p *scanPage) Rasterize(ctx context.Context, scale float64, rotation int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vp := viewport.New(scale, rotation, p.width, p.height)
	w, h := vp.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, pixels(w), pixels(h)))

	// Image space is top-anchored; flip into page space first, then
	// apply the page-to-device transform.
	flip := model.Matrix{1, 0, 0, -1, 0, p.height}
	m := flip.Multiply(vp.Transform())
	xdraw.BiLinear.Transform(dst,
		f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]},
		p.img, p.img.Bounds(), xdraw.Src, nil)
	return dst, nil
}

func pixels(v float64) int {
	n := int(v)
	if float64(n) < v {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}
