package render

import (
	"image"
	"image/color"
	"math"

	"banner-canvas-engine/internal/config"
	"banner-canvas-engine/internal/geom"
)

// Edit-mode chrome colors.
var (
	selectionColor = color.NRGBA{79, 158, 232, 255}
	handleFill     = color.NRGBA{255, 255, 255, 255}
	safeZoneColor  = color.NRGBA{255, 196, 0, 220}
	guideColor     = color.NRGBA{232, 79, 158, 255}
)

// HandleSize is the on-canvas edge length of a corner handle, in logical
// units.
const HandleSize = 10.0

// RotationHandleOffset is how far above the box's top edge the rotation
// handle sits, in logical units.
const RotationHandleOffset = 28.0

// SafeZones is the static guide geometry derived from the canvas size:
// the platform avatar circle and the region that stays visible across
// platform crops.
type SafeZones struct {
	AvatarCircle struct {
		Center   geom.Vec2
		Diameter float64
	}
	VisibleRect geom.Rect
}

// ComputeSafeZones derives guide geometry from the configured canvas.
func ComputeSafeZones(cfg config.Config) SafeZones {
	w := float64(cfg.CanvasWidth)
	h := float64(cfg.CanvasHeight)
	var z SafeZones
	z.AvatarCircle.Center = geom.Vec2{X: cfg.ProfileCenterX, Y: cfg.ProfileCenterY}
	z.AvatarCircle.Diameter = cfg.ProfileDiameter
	z.VisibleRect = geom.Rect{
		X: w * 0.125,
		Y: h * 0.06,
		W: w * 0.75,
		H: h * 0.88,
	}
	return z
}

// stamp writes an opaque t×t square centered at (cx, cy).
func stamp(dst *image.NRGBA, cx, cy, t float64, col color.NRGBA) {
	r := t / 2
	x0 := int(math.Floor(cx - r))
	y0 := int(math.Floor(cy - r))
	x1 := int(math.Ceil(cx + r))
	y1 := int(math.Ceil(cy + r))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			blendPixel(dst, x, y, float64(col.R), float64(col.G), float64(col.B), float64(col.A))
		}
	}
}

// drawLine stamps a solid line from a to b with the given thickness.
func drawLine(dst *image.NRGBA, a, b geom.Vec2, t float64, col color.NRGBA) {
	drawDashedLine(dst, a, b, t, col, 0, 0)
}

// drawDashedLine stamps a line with a dash/gap pattern in pixels.
// dash <= 0 draws a solid line.
func drawDashedLine(dst *image.NRGBA, a, b geom.Vec2, t float64, col color.NRGBA, dash, gap float64) {
	d := b.Sub(a)
	length := d.Len()
	if length == 0 {
		stamp(dst, a.X, a.Y, t, col)
		return
	}
	step := t / 2
	if step < 0.5 {
		step = 0.5
	}
	period := dash + gap
	for s := 0.0; s <= length; s += step {
		if dash > 0 && math.Mod(s, period) >= dash {
			continue
		}
		f := s / length
		stamp(dst, a.X+d.X*f, a.Y+d.Y*f, t, col)
	}
}

// strokePolygon connects the points in order, closing the loop.
func strokePolygon(dst *image.NRGBA, pts []geom.Vec2, t float64, col color.NRGBA) {
	for i := range pts {
		drawLine(dst, pts[i], pts[(i+1)%len(pts)], t, col)
	}
}

// strokeDashedRect outlines r with dashed edges.
func strokeDashedRect(dst *image.NRGBA, r geom.Rect, t float64, col color.NRGBA, dash, gap float64) {
	c := r.Corners()
	for i := range c {
		drawDashedLine(dst, c[i], c[(i+1)%4], t, col, dash, gap)
	}
}

// strokeDashedCircle outlines a circle with dashes measured along the
// arc.
func strokeDashedCircle(dst *image.NRGBA, center geom.Vec2, radius, t float64, col color.NRGBA, dash, gap float64) {
	if radius <= 0 {
		return
	}
	step := (t / 2) / radius
	if step <= 0 {
		return
	}
	period := dash + gap
	for a := 0.0; a < 2*math.Pi; a += step {
		s := a * radius
		if dash > 0 && math.Mod(s, period) >= dash {
			continue
		}
		stamp(dst, center.X+radius*math.Cos(a), center.Y+radius*math.Sin(a), t, col)
	}
}

// fillCircle draws an antialiased filled disc.
func fillCircle(dst *image.NRGBA, center geom.Vec2, radius float64, col color.NRGBA) {
	x0 := int(math.Floor(center.X - radius - 1))
	y0 := int(math.Floor(center.Y - radius - 1))
	x1 := int(math.Ceil(center.X + radius + 1))
	y1 := int(math.Ceil(center.Y + radius + 1))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			d := math.Hypot(float64(x)+0.5-center.X, float64(y)+0.5-center.Y)
			cov := geom.Clamp(radius-d+0.5, 0, 1)
			if cov <= 0 {
				continue
			}
			blendPixel(dst, x, y, float64(col.R), float64(col.G), float64(col.B), float64(col.A)*cov)
		}
	}
}

// maskCircle multiplies tile alpha by the coverage of the largest
// inscribed circle, producing the overlay's circular clip.
func maskCircle(tile *image.NRGBA) {
	b := tile.Bounds()
	w, h := b.Dx(), b.Dy()
	cx := float64(w) / 2
	cy := float64(h) / 2
	r := math.Min(cx, cy)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			cov := geom.Clamp(r-d+0.5, 0, 1)
			i := tile.PixOffset(b.Min.X+x, b.Min.Y+y)
			tile.Pix[i+3] = uint8(float64(tile.Pix[i+3])*cov + 0.5)
		}
	}
}
