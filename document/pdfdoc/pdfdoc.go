// Package pdfdoc implements the document provider for PDF files.
//
// Opening runs the bytes through pdfcpu's read/validate/optimize
// pipeline, so corrupt files fail at Open rather than at first page
// access. Each page serves its text layout by scanning the page's
// content stream for text-showing operators, and rasterizes itself as
// a greeked preview: the page background with a light bar per glyph
// run, geometrically faithful without font embedding.
package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/tsawler/clauseview/document"
	"github.com/tsawler/clauseview/format"
	"github.com/tsawler/clauseview/model"
)

// Provider opens PDF documents.
type Provider struct{}

// Open validates the bytes as a PDF and loads its structure. Non-PDF
// bytes fail with format.ErrUnsupported; structurally broken PDFs fail
// with the wrapped pdfcpu error.
func (Provider) Open(ctx context.Context, data []byte) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f := format.DetectBytes(data); f != format.PDF {
		return nil, fmt.Errorf("%w: %s", format.ErrUnsupported, f)
	}

	conf := pdfmodel.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	dims, err := pctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("page dimensions: %w", err)
	}

	return &pdfDocument{ctx: pctx, dims: dims}, nil
}

type pdfDocument struct {
	mu     sync.Mutex
	ctx    *pdfmodel.Context
	dims   []types.Dim
	closed bool
}

func (d *pdfDocument) PageCount() int {
	return len(d.dims)
}

func (d *pdfDocument) Page(number int) (document.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, document.ErrDocumentClosed
	}
	if number < 1 || number > len(d.dims) {
		return nil, document.ErrPageOutOfRange
	}
	dim := d.dims[number-1]
	return &pdfPage{
		doc:    d,
		number: number,
		width:  dim.Width,
		height: dim.Height,
	}, nil
}

func (d *pdfDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.ctx = nil
	return nil
}

// content extracts the raw content stream for a page. pdfcpu's context
// is not guarded internally, so extraction is serialized here.
func (d *pdfDocument) content(number int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, document.ErrDocumentClosed
	}
	r, err := pdfcpu.ExtractPageContent(d.ctx, number)
	if err != nil {
		return nil, fmt.Errorf("page %d content: %w", number, err)
	}
	if r == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("page %d content: %w", number, err)
	}
	return data, nil
}

type pdfPage struct {
	doc    *pdfDocument
	number int
	width  float64
	height float64

	mu      sync.Mutex
	scanned bool
	layout  []model.GlyphItem
}

func (p *pdfPage) Size() (width, height float64) {
	return p.width, p.height
}

// TextLayout scans the page's content stream once and caches the glyph
// items; callers receive a fresh copy on every call.
func (p *pdfPage) TextLayout(ctx context.Context) ([]model.GlyphItem, error) {
	items, err := p.glyphs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.GlyphItem, len(items))
	copy(out, items)
	return out, nil
}

// Rasterize paints a greeked preview of the page at the requested scale
// and rotation.
func (p *pdfPage) Rasterize(ctx context.Context, scale float64, rotation int) (image.Image, error) {
	items, err := p.glyphs(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rasterizeGreeked(p.width, p.height, scale, rotation, items), nil
}

func (p *pdfPage) glyphs(ctx context.Context) ([]model.GlyphItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scanned {
		return p.layout, nil
	}

	content, err := p.doc.content(p.number)
	if err != nil {
		return nil, err
	}
	items, err := scanTextLayout(ctx, content)
	if err != nil {
		return nil, err
	}
	p.layout = items
	p.scanned = true
	return items, nil
}
