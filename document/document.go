// Package document defines the provider contract the viewer renders
// through. A Provider opens raw bytes into a Document; a Document hands
// out Pages; a Page reports its unscaled size, yields its text layout as
// glyph items, and rasterizes itself for a given scale and rotation.
//
// Implementations live in subpackages: pdfdoc reads real PDF files,
// memdoc serves fixed in-memory pages for tests and fixtures, and
// scandoc recovers glyph items from scanned page images.
package document

import (
	"context"
	"errors"
	"image"

	"github.com/tsawler/clauseview/model"
)

var (
	// ErrPageOutOfRange is returned by Document.Page when the requested
	// page number is below 1 or beyond the page count.
	ErrPageOutOfRange = errors.New("document: page out of range")

	// ErrDocumentClosed is returned by operations on a Document after
	// Close has been called.
	ErrDocumentClosed = errors.New("document: closed")
)

// Provider opens raw document bytes. Open validates the bytes and
// returns a typed error when they are not a document the provider can
// serve; it never retries.
type Provider interface {
	Open(ctx context.Context, data []byte) (Document, error)
}

// Document is an open document. Page numbers are 1-based. A Document
// and its Pages are safe for concurrent reads; Close releases any
// resources and invalidates outstanding Pages. Close may overlap
// in-flight page operations, which then fail with ErrDocumentClosed
// instead of racing.
type Document interface {
	PageCount() int
	Page(number int) (Page, error)
	Close() error
}

// Page is one page of an open document.
//
// Size reports the unscaled page dimensions at rotation 0, in page
// units. TextLayout returns the page's glyph items in content order;
// the slice is owned by the caller. Rasterize paints the page at the
// given uniform scale and clockwise quarter-turn rotation, returning an
// image whose pixel size matches the rotated, scaled page. Both
// TextLayout and Rasterize stop early when ctx is cancelled.
type Page interface {
	Size() (width, height float64)
	TextLayout(ctx context.Context) ([]model.GlyphItem, error)
	Rasterize(ctx context.Context, scale float64, rotation int) (image.Image, error)
}
