package align

import "github.com/a3tai/pdf-field-mapper/internal/document"

// Transform is a per-axis scale and offset mapping source coordinates
// to target coordinates. It models uniform scaling and translation
// only; rotation and shear are out of scope.
type Transform struct {
	Sx float64 `json:"sx"`
	Sy float64 `json:"sy"`
	Dx float64 `json:"dx"`
	Dy float64 `json:"dy"`
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Sx: 1, Sy: 1}
}

// IsIdentity reports whether the transform is the identity.
func (t Transform) IsIdentity() bool {
	return t == Identity()
}

// Apply maps a source-space rectangle forward into target space.
func (t Transform) Apply(r document.Rect) document.Rect {
	return document.Rect{
		X0: r.X0*t.Sx + t.Dx,
		Y0: r.Y0*t.Sy + t.Dy,
		X1: r.X1*t.Sx + t.Dx,
		Y1: r.Y1*t.Sy + t.Dy,
	}
}

// ToSource maps a target-space rectangle back into source space. It is
// the exact algebraic inverse of Apply.
func (t Transform) ToSource(r document.Rect) document.Rect {
	return document.Rect{
		X0: (r.X0 - t.Dx) / t.Sx,
		Y0: (r.Y0 - t.Dy) / t.Sy,
		X1: (r.X1 - t.Dx) / t.Sx,
		Y1: (r.Y1 - t.Dy) / t.Sy,
	}
}
