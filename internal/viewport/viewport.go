// Package viewport maps between the fixed logical canvas space and an
// arbitrarily sized, arbitrarily dense on-screen viewport. The mapping is
// a single uniform scale plus a letterbox offset, never an anisotropic
// stretch, so the canvas aspect ratio survives any viewport shape.
package viewport

import (
	"math"

	"banner-canvas-engine/internal/geom"
)

// Rect describes the on-screen viewport in layout (CSS) units, plus the
// ratio between the draw surface's backing store and its layout size.
type Rect struct {
	X, Y, W, H float64

	// DevicePixelRatio is backing-store pixels per layout unit.
	// Zero is treated as 1.
	DevicePixelRatio float64
}

func (r Rect) dpr() float64 {
	if r.DevicePixelRatio <= 0 {
		return 1
	}
	return r.DevicePixelRatio
}

// Mapper converts points between logical canvas space and a viewport.
type Mapper struct {
	W, H float64
}

// NewMapper creates a mapper for a W×H logical canvas.
func NewMapper(w, h float64) Mapper {
	return Mapper{W: w, H: h}
}

// Scale returns the uniform logical→layout scale for a viewport.
func (m Mapper) Scale(vp Rect) float64 {
	if m.W <= 0 || m.H <= 0 || vp.W <= 0 || vp.H <= 0 {
		return 1
	}
	return math.Min(vp.W/m.W, vp.H/m.H)
}

// CanvasRect returns where the letterboxed logical canvas lands inside
// the viewport, in layout units.
func (m Mapper) CanvasRect(vp Rect) geom.Rect {
	s := m.Scale(vp)
	w, h := m.W*s, m.H*s
	return geom.Rect{
		X: vp.X + (vp.W-w)/2,
		Y: vp.Y + (vp.H-h)/2,
		W: w,
		H: h,
	}
}

// ToLogical maps a pointer position in layout units to logical canvas
// space. Points outside the canvas rectangle map to coordinates outside
// [0,W]×[0,H]; callers clamp where appropriate.
func (m Mapper) ToLogical(p geom.Vec2, vp Rect) geom.Vec2 {
	s := m.Scale(vp)
	r := m.CanvasRect(vp)
	return geom.Vec2{
		X: (p.X - r.X) / s,
		Y: (p.Y - r.Y) / s,
	}
}

// ToViewport maps a logical point to layout units.
func (m Mapper) ToViewport(p geom.Vec2, vp Rect) geom.Vec2 {
	s := m.Scale(vp)
	r := m.CanvasRect(vp)
	return geom.Vec2{
		X: r.X + p.X*s,
		Y: r.Y + p.Y*s,
	}
}

// ToDevice maps a logical point to backing-store pixels, for hosts whose
// draw surface resolution differs from its layout size.
func (m Mapper) ToDevice(p geom.Vec2, vp Rect) geom.Vec2 {
	v := m.ToViewport(p, vp)
	d := vp.dpr()
	return geom.Vec2{X: v.X * d, Y: v.Y * d}
}

// SurfaceSize returns the backing-store size, in device pixels, that
// keeps the letterboxed canvas crisp at the viewport's density.
func (m Mapper) SurfaceSize(vp Rect) (w, h int) {
	r := m.CanvasRect(vp)
	d := vp.dpr()
	return int(math.Round(r.W * d)), int(math.Round(r.H * d))
}

// LogicalPerLayoutPixel returns how many logical units one layout pixel
// spans, used to convert pixel thresholds (click slop, handle radius)
// into logical tolerances.
func (m Mapper) LogicalPerLayoutPixel(vp Rect) float64 {
	s := m.Scale(vp)
	if s == 0 {
		return 1
	}
	return 1 / s
}
