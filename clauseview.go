// Package clauseview renders paginated legal documents with clause
// highlight overlays.
//
// A Viewer pairs a document (PDF or scanned page image) with the
// clause records an external classifier produced for it, locates each
// clause on the page text, and projects the matches into rectangles on
// the rasterized page.
//
// Basic usage:
//
//	img, rects, err := clauseview.Open("contract.pdf").
//	    ClausesFile("clauses.json").
//	    RenderPage(ctx, 1, 1.5, 0)
//
// For interactive views, Controller returns a render.Controller wired
// to the document and records:
//
//	ctrl, err := clauseview.Open("contract.pdf").
//	    ClausesFile("clauses.json").
//	    Controller(ctx, render.DefaultOptions())
package clauseview

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/tsawler/clauseview/clauses"
	"github.com/tsawler/clauseview/document"
	"github.com/tsawler/clauseview/document/pdfdoc"
	"github.com/tsawler/clauseview/document/scandoc"
	"github.com/tsawler/clauseview/format"
	"github.com/tsawler/clauseview/model"
	"github.com/tsawler/clauseview/overlay"
	"github.com/tsawler/clauseview/render"
	"github.com/tsawler/clauseview/viewport"
)

// Viewer provides a fluent interface for rendering documents with
// clause highlights. Each configuration method returns a new Viewer
// instance, making chains safe to share and reuse.
type Viewer struct {
	// Source
	data []byte

	// Clause records to locate and highlight
	records []clauses.Record

	// OCR language list for scanned images
	language string

	// Category color override
	colorFn func(category string) color.NRGBA

	// Accumulated error (fail-fast)
	err error
}

// Open reads a document file and returns a Viewer for fluent
// configuration. The format is sniffed from the content, not the name.
//
// Example:
//
//	count, err := clauseview.Open("contract.pdf").PageCount(ctx)
func Open(path string) *Viewer {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Viewer{err: fmt.Errorf("read %s: %w", path, err)}
	}
	return &Viewer{data: data}
}

// FromBytes returns a Viewer over an in-memory upload.
//
// Example:
//
//	img, rects, err := clauseview.FromBytes(upload).RenderPage(ctx, 1, 1, 0)
func FromBytes(data []byte) *Viewer {
	return &Viewer{data: data}
}

// clone creates a copy of the Viewer with its own records slice, so
// configuration never mutates an earlier chain link.
func (v *Viewer) clone() *Viewer {
	return &Viewer{
		data:     v.data,
		records:  append([]clauses.Record(nil), v.records...),
		language: v.language,
		colorFn:  v.colorFn,
		err:      v.err,
	}
}

// ============================================================================
// Configuration Methods (return new Viewer instance)
// ============================================================================

// Clauses attaches classifier records to highlight. Multiple calls are
// cumulative.
//
// Example:
//
//	v := clauseview.Open("contract.pdf").Clauses(records...)
func (v *Viewer) Clauses(records ...clauses.Record) *Viewer {
	nv := v.clone()
	nv.records = append(nv.records, records...)
	return nv
}

// ClausesFile loads classifier output JSON from a file. Both a bare
// record array and the service envelope are accepted.
//
// Example:
//
//	v := clauseview.Open("contract.pdf").ClausesFile("clauses.json")
func (v *Viewer) ClausesFile(path string) *Viewer {
	nv := v.clone()
	if nv.err != nil {
		return nv
	}
	data, err := os.ReadFile(path)
	if err != nil {
		nv.err = fmt.Errorf("read %s: %w", path, err)
		return nv
	}
	records, err := clauses.DecodeBytes(data)
	if err != nil {
		nv.err = fmt.Errorf("decode %s: %w", path, err)
		return nv
	}
	nv.records = append(nv.records, records...)
	return nv
}

// OCRLanguage sets the Tesseract language list ("eng", "eng+deu") used
// when the document is a scanned image. It has no effect on PDFs.
func (v *Viewer) OCRLanguage(lang string) *Viewer {
	nv := v.clone()
	nv.language = lang
	return nv
}

// HighlightColors overrides the category color resolver. Nil keeps the
// process-wide taxonomy colors.
func (v *Viewer) HighlightColors(fn func(category string) color.NRGBA) *Viewer {
	nv := v.clone()
	nv.colorFn = fn
	return nv
}

// ============================================================================
// Terminal Operations
// ============================================================================

// PageCount opens the document and returns its page count.
//
// Example:
//
//	count, err := clauseview.Open("contract.pdf").PageCount(ctx)
func (v *Viewer) PageCount(ctx context.Context) (int, error) {
	if v.err != nil {
		return 0, v.err
	}
	doc, err := v.open(ctx)
	if err != nil {
		return 0, err
	}
	defer doc.Close()
	return doc.PageCount(), nil
}

// LocatePage returns the highlight rectangles for one page at the given
// scale and rotation, in device coordinates.
//
// Example:
//
//	rects, err := clauseview.Open("contract.pdf").
//	    ClausesFile("clauses.json").
//	    LocatePage(ctx, 1, 1.0, 0)
func (v *Viewer) LocatePage(ctx context.Context, pageNum int, scale float64, rotation int) ([]model.HighlightRect, error) {
	if v.err != nil {
		return nil, v.err
	}
	doc, err := v.open(ctx)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	page, err := doc.Page(pageNum)
	if err != nil {
		return nil, err
	}
	return v.locate(ctx, page, scale, rotation)
}

// RenderPage rasterizes one page and returns the surface together with
// the highlight rectangles that belong to it.
//
// Example:
//
//	img, rects, err := clauseview.Open("contract.pdf").
//	    ClausesFile("clauses.json").
//	    RenderPage(ctx, 1, 1.5, 0)
func (v *Viewer) RenderPage(ctx context.Context, pageNum int, scale float64, rotation int) (image.Image, []model.HighlightRect, error) {
	if v.err != nil {
		return nil, nil, v.err
	}
	doc, err := v.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer doc.Close()

	page, err := doc.Page(pageNum)
	if err != nil {
		return nil, nil, err
	}
	surface, err := page.Rasterize(ctx, scale, rotation)
	if err != nil {
		return nil, nil, err
	}
	rects, err := v.locate(ctx, page, scale, rotation)
	if err != nil {
		return nil, nil, err
	}
	return surface, rects, nil
}

// RenderComposite rasterizes one page and burns the highlights into the
// returned image, ready for encoding.
//
// Example:
//
//	img, err := clauseview.Open("contract.pdf").
//	    ClausesFile("clauses.json").
//	    RenderComposite(ctx, 1, 2.0, 0)
func (v *Viewer) RenderComposite(ctx context.Context, pageNum int, scale float64, rotation int) (*image.NRGBA, error) {
	surface, rects, err := v.RenderPage(ctx, pageNum, scale, rotation)
	if err != nil {
		return nil, err
	}
	return overlay.NewCompositor().Composite(surface, rects), nil
}

// Controller opens the document and returns a render controller loaded
// with it and the attached clause records. The caller owns the
// controller and must Close it.
//
// Example:
//
//	ctrl, err := clauseview.Open("contract.pdf").
//	    ClausesFile("clauses.json").
//	    Controller(ctx, render.DefaultOptions())
//	if err != nil {
//	    // handle error
//	}
//	defer ctrl.Close()
func (v *Viewer) Controller(ctx context.Context, opts render.Options) (*render.Controller, error) {
	if v.err != nil {
		return nil, v.err
	}
	p, err := v.provider()
	if err != nil {
		return nil, err
	}
	if opts.Overlay.Color == nil {
		opts.Overlay.Color = v.colorFn
	}
	c := render.New(p, opts)
	if err := c.Load(ctx, v.data, v.records); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Must is a helper that wraps a call returning (T, error) and panics if
// the error is non-nil. It is intended for scripts and tests where
// error handling would be cumbersome.
//
// Example:
//
//	count := clauseview.Must(clauseview.Open("contract.pdf").PageCount(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ============================================================================
// Internal helpers
// ============================================================================

// provider picks the document provider by sniffing the bytes.
func (v *Viewer) provider() (document.Provider, error) {
	f := format.DetectBytes(v.data)
	switch {
	case f == format.PDF:
		return pdfdoc.Provider{}, nil
	case f.ScannedImage():
		return scandoc.Provider{Language: v.language}, nil
	default:
		return nil, fmt.Errorf("%w: %s", format.ErrUnsupported, f)
	}
}

func (v *Viewer) open(ctx context.Context) (document.Document, error) {
	p, err := v.provider()
	if err != nil {
		return nil, err
	}
	return p.Open(ctx, v.data)
}

// locate builds the highlight rectangles for one page from its glyph
// snapshot.
func (v *Viewer) locate(ctx context.Context, page document.Page, scale float64, rotation int) ([]model.HighlightRect, error) {
	items, err := page.TextLayout(ctx)
	if err != nil {
		return nil, err
	}
	w, h := page.Size()
	vp := viewport.New(scale, rotation, w, h)
	b := overlay.Builder{Color: v.colorFn}
	return b.Build(items, v.records, vp), nil
}
