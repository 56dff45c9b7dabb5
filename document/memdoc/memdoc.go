// Package memdoc provides an in-memory document.Provider backed by
// fixed page specs. It performs no I/O and is deterministic, which
// makes it the fixture provider for unit tests and the TUI demo mode.
package memdoc

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/tsawler/clauseview/document"
	"github.com/tsawler/clauseview/model"
	"github.com/tsawler/clauseview/viewport"
)

// PageSpec describes one in-memory page: its unscaled dimensions and
// the glyph items TextLayout will serve.
type PageSpec struct {
	Width  float64
	Height float64
	Glyphs []model.GlyphItem
}

// Provider serves documents assembled from in-memory page specs.
//
// OpenErr, when set, makes Open fail with that error. BeforeRasterize,
// when set, runs at the start of every Rasterize call with the page
// number being rendered; returning an error aborts the render. Tests
// use it to block or fail specific pages on demand.
type Provider struct {
	Pages           []PageSpec
	OpenErr         error
	BeforeRasterize func(ctx context.Context, pageNumber int) error
}

// Open ignores data and returns a document over the provider's pages.
func (p *Provider) Open(ctx context.Context, data []byte) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.OpenErr != nil {
		return nil, p.OpenErr
	}
	return &memDocument{provider: p}, nil
}

type memDocument struct {
	provider *Provider

	mu     sync.Mutex
	closed bool
}

func (d *memDocument) PageCount() int {
	return len(d.provider.Pages)
}

func (d *memDocument) Page(number int) (document.Page, error) {
	if d.isClosed() {
		return nil, document.ErrDocumentClosed
	}
	if number < 1 || number > len(d.provider.Pages) {
		return nil, document.ErrPageOutOfRange
	}
	return &memPage{doc: d, number: number, spec: d.provider.Pages[number-1]}, nil
}

func (d *memDocument) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

func (d *memDocument) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type memPage struct {
	doc    *memDocument
	number int
	spec   PageSpec
}

func (p *memPage) Size() (width, height float64) {
	return p.spec.Width, p.spec.Height
}

// TextLayout returns a copy of the page's glyph items so callers can
// never mutate the fixture.
func (p *memPage) TextLayout(ctx context.Context) ([]model.GlyphItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.doc.isClosed() {
		return nil, document.ErrDocumentClosed
	}
	out := make([]model.GlyphItem, len(p.spec.Glyphs))
	copy(out, p.spec.Glyphs)
	return out, nil
}

// Rasterize returns a plain white surface of the scaled, rotation-aware
// pixel size.
func (p *memPage) Rasterize(ctx context.Context, scale float64, rotation int) (image.Image, error) {
	if p.doc.isClosed() {
		return nil, document.ErrDocumentClosed
	}
	if hook := p.doc.provider.BeforeRasterize; hook != nil {
		if err := hook(ctx, p.number); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vp := viewport.New(scale, rotation, p.spec.Width, p.spec.Height)
	w, h := vp.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, pixels(w), pixels(h)))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img, nil
}

// pixels rounds a device-space extent up to a whole pixel count, with a
// floor of one so degenerate pages still produce a drawable surface.
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
