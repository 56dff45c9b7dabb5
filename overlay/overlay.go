// Package overlay turns located clauses into colored highlight
// rectangles and presents them as an atomically replaceable set.
package overlay

import (
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/tsawler/clauseview/clauses"
	"github.com/tsawler/clauseview/locate"
	"github.com/tsawler/clauseview/model"
	"github.com/tsawler/clauseview/taxonomy"
	"github.com/tsawler/clauseview/viewport"
)

// DefaultPreviewRunes is the tooltip preview length.
const DefaultPreviewRunes = 50

// Builder derives highlight rectangles from a glyph snapshot. The zero
// value colors by the process-wide taxonomy.
type Builder struct {
	// Color resolves a category to its highlight color. Nil means
	// taxonomy.Color.
	Color func(category string) color.NRGBA

	// PreviewRunes caps the tooltip's clause preview. Zero means
	// DefaultPreviewRunes.
	PreviewRunes int
}

// Build locates every record's text on the snapshot and projects the
// matched glyph items through the viewport. The result is complete and
// self-contained: rectangles reference nothing but the snapshot they
// were derived from, and a fresh call replaces them wholesale.
//
// Records that miss, records below the minimum clause length and glyph
// items that project to a zero-area rectangle contribute nothing.
func (b *Builder) Build(items []model.GlyphItem, records []clauses.Record, vp viewport.Viewport) []model.HighlightRect {
	colorFn := b.Color
	if colorFn == nil {
		colorFn = taxonomy.Color
	}
	previewRunes := b.PreviewRunes
	if previewRunes <= 0 {
		previewRunes = DefaultPreviewRunes
	}

	ix := locate.NewIndex(items)

	var rects []model.HighlightRect
	for _, rec := range records {
		indices := ix.Locate(rec.Text)
		if len(indices) == 0 {
			continue
		}

		c := colorFn(rec.Category)
		label := tooltipLabel(rec, previewRunes)
		for _, idx := range indices {
			r := vp.Project(items[idx])
			if r.IsEmpty() {
				continue
			}
			rects = append(rects, model.HighlightRect{
				Rect:           r,
				Color:          c,
				Category:       rec.Category,
				TooltipLabel:   label,
				ClauseSequence: rec.SequenceNumber,
			})
		}
	}
	return rects
}

// tooltipLabel is "Category: preview", the preview single-line and cut
// to about previewRunes characters.
func tooltipLabel(rec clauses.Record, previewRunes int) string {
	text := strings.Join(strings.Fields(rec.Text), " ")
	if text == "" {
		return rec.Category
	}
	runes := []rune(text)
	if len(runes) > previewRunes {
		text = string(runes[:previewRunes]) + "..."
	}
	return fmt.Sprintf("%s: %s", rec.Category, text)
}

// Set holds the currently displayed highlight rectangles. Replacement
// is wholesale: readers either see the full previous set or the full
// next one, never a mix. The contained slices are treated as immutable.
type Set struct {
	mu    sync.RWMutex
	rects []model.HighlightRect
}

// Replace installs a new rectangle set.
func (s *Set) Replace(rects []model.HighlightRect) {
	s.mu.Lock()
	s.rects = rects
	s.mu.Unlock()
}

// Clear removes all rectangles.
func (s *Set) Clear() {
	s.Replace(nil)
}

// Current returns the displayed set. Callers must not modify it.
func (s *Set) Current() []model.HighlightRect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rects
}

// HitTest returns the rectangles containing the device point, for
// tooltip lookups. Interaction is read-only; it never mutates the set.
func (s *Set) HitTest(p model.Point) []model.HighlightRect {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []model.HighlightRect
	for _, hr := range s.rects {
		if hr.Contains(p) {
			hits = append(hits, hr)
		}
	}
	return hits
}
