package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect represents a rectangle in top-anchored screen space: Y grows
// downward and Top is the smallest Y covered by the rectangle.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// NewRect creates a rectangle from its top-left corner and extents
func NewRect(left, top, width, height float64) Rect {
	return Rect{Left: left, Top: top, Width: width, Height: height}
}

// RectFromPoints creates the axis-aligned rectangle spanning two points
func RectFromPoints(p1, p2 Point) Rect {
	left := math.Min(p1.X, p2.X)
	top := math.Min(p1.Y, p2.Y)
	return Rect{
		Left:   left,
		Top:    top,
		Width:  math.Abs(p2.X - p1.X),
		Height: math.Abs(p2.Y - p1.Y),
	}
}

// Right returns the right edge X coordinate
func (r Rect) Right() float64 {
	return r.Left + r.Width
}

// Bottom returns the bottom edge Y coordinate
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Center returns the center point
func (r Rect) Center() Point {
	return Point{
		X: r.Left + r.Width/2,
		Y: r.Top + r.Height/2,
	}
}

// Contains checks if a point is inside the rectangle
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() &&
		p.Y >= r.Top && p.Y <= r.Bottom()
}

// Intersects checks if two rectangles intersect
func (r Rect) Intersects(other Rect) bool {
	return !(r.Right() < other.Left ||
		r.Left > other.Right() ||
		r.Bottom() < other.Top ||
		r.Top > other.Bottom())
}

// Intersection returns the intersection of two rectangles
func (r Rect) Intersection(other Rect) Rect {
	if !r.Intersects(other) {
		return Rect{}
	}

	left := math.Max(r.Left, other.Left)
	top := math.Max(r.Top, other.Top)
	right := math.Min(r.Right(), other.Right())
	bottom := math.Min(r.Bottom(), other.Bottom())

	return Rect{
		Left:   left,
		Top:    top,
		Width:  right - left,
		Height: bottom - top,
	}
}

// Union returns the smallest rectangle covering both rectangles
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	left := math.Min(r.Left, other.Left)
	top := math.Min(r.Top, other.Top)
	right := math.Max(r.Right(), other.Right())
	bottom := math.Max(r.Bottom(), other.Bottom())

	return Rect{
		Left:   left,
		Top:    top,
		Width:  right - left,
		Height: bottom - top,
	}
}

// Area returns the area of the rectangle
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// IsEmpty returns true if the rectangle has zero or negative extent
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Matrix represents a 2D affine transformation matrix in [a b c d e f]
// form: x' = a*x + c*y + e, y' = b*x + d*y + f.
type Matrix [6]float64

// Identity returns an identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply composes two matrices: the receiver applies first, then other.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotate creates a rotation matrix (angle in radians)
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// IsIdentity returns true if the matrix is an identity matrix
func (m Matrix) IsIdentity() bool {
	return m[0] == 1 && m[1] == 0 && m[2] == 0 && m[3] == 1 && m[4] == 0 && m[5] == 0
}

// Anchor returns the translation component (e, f), the placement origin
// of whatever the matrix positions.
func (m Matrix) Anchor() Point {
	return Point{X: m[4], Y: m[5]}
}

// HorizontalMagnitude returns the length of the transformed X basis
// vector, the on-screen length of one horizontal unit.
func (m Matrix) HorizontalMagnitude() float64 {
	return math.Sqrt(m[0]*m[0] + m[1]*m[1])
}

// VerticalMagnitude returns the length of the transformed Y basis vector.
// For a glyph placement matrix this is the rendered glyph height,
// whatever the rotation or skew.
func (m Matrix) VerticalMagnitude() float64 {
	return math.Sqrt(m[2]*m[2] + m[3]*m[3])
}
