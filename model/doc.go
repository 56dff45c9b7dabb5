// Package model provides the value types shared by the clause alignment
// and highlight overlay pipeline.
//
// This package defines the data structures that flow between the document
// model provider, the clause locator, the geometry mapper and the overlay
// renderer. All of them are plain immutable values; none carry references
// back to the provider that produced them.
//
// # Geometry
//
// Geometric primitives support placement and layout calculations:
//
//   - [Matrix] - 2D affine transformation matrix in [a b c d e f] form
//   - [Point] - 2D point with distance calculation
//   - [Rect] - top-anchored screen rectangle with union and intersection
//
// Glyph placement is baseline-anchored page space while [Rect] lives in
// top-anchored device space; the viewport package performs the conversion.
//
// # Page Content
//
// A [GlyphItem] is an atomic run of characters sharing one affine placement.
// Providers emit glyph items in content order, one slice per page. A glyph
// snapshot is only valid for the page/scale/rotation render that produced
// it and must never be mixed with geometry from another render.
//
// # Highlights
//
// A [HighlightRect] is a fully derived screen rectangle carrying the clause
// category, its color and a tooltip label. Highlight sets are recomputed
// from scratch whenever page, scale or rotation changes.
package model
