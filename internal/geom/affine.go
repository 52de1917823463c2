package geom

import "math"

// Affine is a 2D affine transform:
//
//	| A C E |
//	| B D F |
//
// applied as x' = A*x + C*y + E, y' = B*x + D*y + F.
type Affine struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{A: 1, D: 1}
}

// RotateAbout returns the transform that rotates by rad radians around
// pivot p. Positive angles rotate clockwise in the y-down image frame.
func RotateAbout(rad float64, p Vec2) Affine {
	c, s := math.Cos(rad), math.Sin(rad)
	return Affine{
		A: c, C: -s, E: p.X - c*p.X + s*p.Y,
		B: s, D: c, F: p.Y - s*p.X - c*p.Y,
	}
}

// Apply transforms point p.
func (m Affine) Apply(p Vec2) Vec2 {
	return Vec2{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// Invert returns the inverse transform. Rotation-about-point transforms
// are always invertible; a degenerate matrix inverts to identity.
func (m Affine) Invert() Affine {
	det := m.A*m.D - m.B*m.C
	if math.Abs(det) < 1e-12 {
		return Identity()
	}
	inv := 1 / det
	return Affine{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}
}
