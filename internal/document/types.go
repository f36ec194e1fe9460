package document

// Rect is an axis-aligned rectangle in page-local coordinates.
// X0,Y0 is one corner and X1,Y1 the opposite one; loaders normalize
// rectangles so that X0 <= X1 and Y0 <= Y1.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (float64, float64) {
	return (r.X0 + r.X1) / 2, (r.Y0 + r.Y1) / 2
}

// ContainsPoint reports whether the point (x, y) lies within the
// rectangle, boundary included.
func (r Rect) ContainsPoint(x, y float64) bool {
	return r.X0 <= x && x <= r.X1 && r.Y0 <= y && y <= r.Y1
}

// Intersect returns the intersection of r and other. If the rectangles
// do not overlap the result is empty (zero width or height).
func (r Rect) Intersect(other Rect) Rect {
	out := Rect{
		X0: maxFloat(r.X0, other.X0),
		Y0: maxFloat(r.Y0, other.Y0),
		X1: minFloat(r.X1, other.X1),
		Y1: minFloat(r.Y1, other.Y1),
	}
	if out.X1 < out.X0 {
		out.X1 = out.X0
	}
	if out.Y1 < out.Y0 {
		out.Y1 = out.Y0
	}
	return out
}

// Union returns the smallest rectangle covering both r and other.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		X0: minFloat(r.X0, other.X0),
		Y0: minFloat(r.Y0, other.Y0),
		X1: maxFloat(r.X1, other.X1),
		Y1: maxFloat(r.Y1, other.Y1),
	}
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Normalize returns the rectangle with corners reordered so that
// X0 <= X1 and Y0 <= Y1.
func (r Rect) Normalize() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Token is the smallest positioned unit of text on a page, typically a
// single word. Block, Line and Word are grouping hints from the loader;
// they are not required to be dense or contiguous.
type Token struct {
	Text  string `json:"text"`
	Rect  Rect   `json:"rect"`
	Block int    `json:"block"`
	Line  int    `json:"line"`
	Word  int    `json:"word"`
}

// Field is a named fill-in widget on a page. Fields with an empty name
// are skipped by the mapper and never appear in output.
type Field struct {
	Name string `json:"name"`
	Rect Rect   `json:"rect"`
	Page int    `json:"page"`
}

// Page is a single page of a document: its bounding box, positioned
// tokens and any form field widgets anchored to it. Page geometry uses
// a top-left origin with y increasing downward; loaders convert from
// the underlying file format's convention. Token order carries no
// reading-order guarantee; reading order is reconstructed by the
// consumer.
type Page struct {
	Index  int     `json:"index"`
	Box    Rect    `json:"box"`
	Tokens []Token `json:"tokens"`
	Fields []Field `json:"fields"`
}

// Document is a read-only view of a paginated document. It is built
// once per input file and must not be mutated during a mapping run.
type Document struct {
	Path  string `json:"path"`
	Pages []Page `json:"pages"`
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Page returns the page with the given 0-based index, or nil if the
// index is out of range.
func (d *Document) Page(index int) *Page {
	if index < 0 || index >= len(d.Pages) {
		return nil
	}
	return &d.Pages[index]
}

// FieldCount returns the number of named fields across all pages.
func (d *Document) FieldCount() int {
	n := 0
	for i := range d.Pages {
		for j := range d.Pages[i].Fields {
			if d.Pages[i].Fields[j].Name != "" {
				n++
			}
		}
	}
	return n
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
