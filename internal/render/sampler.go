package render

import (
	"image"
	"math"

	"banner-canvas-engine/internal/geom"
)

// sampleClamped performs bilinear filtering at pixel coordinates with
// edge clamping. Accesses tex.Pix directly for performance.
func sampleClamped(tex *image.NRGBA, fx, fy float64) (r, g, b, a float64) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	clampX := func(x int) int {
		if x < 0 {
			return 0
		}
		if x >= w {
			return w - 1
		}
		return x
	}
	clampY := func(y int) int {
		if y < 0 {
			return 0
		}
		if y >= h {
			return h - 1
		}
		return y
	}

	stride := tex.Stride
	pix := tex.Pix
	i00 := clampY(y0)*stride + clampX(x0)*4
	i10 := clampY(y0)*stride + clampX(x0+1)*4
	i01 := clampY(y0+1)*stride + clampX(x0)*4
	i11 := clampY(y0+1)*stride + clampX(x0+1)*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	r = float64(pix[i00])*w00 + float64(pix[i10])*w10 + float64(pix[i01])*w01 + float64(pix[i11])*w11
	g = float64(pix[i00+1])*w00 + float64(pix[i10+1])*w10 + float64(pix[i01+1])*w01 + float64(pix[i11+1])*w11
	b = float64(pix[i00+2])*w00 + float64(pix[i10+2])*w10 + float64(pix[i01+2])*w01 + float64(pix[i11+2])*w11
	a = float64(pix[i00+3])*w00 + float64(pix[i10+3])*w10 + float64(pix[i01+3])*w01 + float64(pix[i11+3])*w11
	return
}

// blendPixel composites a straight-alpha source sample over dst at x, y.
func blendPixel(dst *image.NRGBA, x, y int, sr, sg, sb, sa float64) {
	if sa <= 0 {
		return
	}
	if x < 0 || y < 0 || x >= dst.Rect.Dx() || y >= dst.Rect.Dy() {
		return
	}
	i := dst.PixOffset(x, y)
	da := float64(dst.Pix[i+3]) / 255.0
	na := sa/255.0 + da*(1-sa/255.0)
	if na <= 0 {
		dst.Pix[i] = 0
		dst.Pix[i+1] = 0
		dst.Pix[i+2] = 0
		dst.Pix[i+3] = 0
		return
	}
	s := sa / 255.0
	blend := func(sc float64, dc uint8) uint8 {
		v := (sc*s + float64(dc)*da*(1-s)) / na
		return clamp8(v)
	}
	dst.Pix[i] = blend(sr, dst.Pix[i])
	dst.Pix[i+1] = blend(sg, dst.Pix[i+1])
	dst.Pix[i+2] = blend(sb, dst.Pix[i+2])
	dst.Pix[i+3] = clamp8(na * 255)
}

// compositeOver alpha-blends tile over dst with its top-left at (ox, oy).
// Fast path for unrotated layers.
func compositeOver(dst, tile *image.NRGBA, ox, oy int) {
	tb := tile.Bounds()
	for y := 0; y < tb.Dy(); y++ {
		dy := oy + y
		if dy < 0 || dy >= dst.Rect.Dy() {
			continue
		}
		for x := 0; x < tb.Dx(); x++ {
			dx := ox + x
			if dx < 0 || dx >= dst.Rect.Dx() {
				continue
			}
			si := tile.PixOffset(tb.Min.X+x, tb.Min.Y+y)
			if tile.Pix[si+3] == 0 {
				continue
			}
			blendPixel(dst, dx, dy,
				float64(tile.Pix[si]),
				float64(tile.Pix[si+1]),
				float64(tile.Pix[si+2]),
				float64(tile.Pix[si+3]))
		}
	}
}

// compositeRotated draws tile rotated by rad about pivot (in dst
// coordinates), with the tile's top-left nominally at (ox, oy). Inverse
// mapping with bilinear sampling, so every destination pixel is visited
// exactly once and no holes appear at any angle.
func compositeRotated(dst, tile *image.NRGBA, ox, oy float64, rad float64, pivot geom.Vec2) {
	tb := tile.Bounds()
	tw, th := float64(tb.Dx()), float64(tb.Dy())
	if tw == 0 || th == 0 {
		return
	}

	fwd := geom.RotateAbout(rad, pivot)
	inv := fwd.Invert()

	// Destination bounding box of the rotated tile.
	corners := [4]geom.Vec2{
		fwd.Apply(geom.Vec2{X: ox, Y: oy}),
		fwd.Apply(geom.Vec2{X: ox + tw, Y: oy}),
		fwd.Apply(geom.Vec2{X: ox + tw, Y: oy + th}),
		fwd.Apply(geom.Vec2{X: ox, Y: oy + th}),
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}

	x0 := int(math.Floor(minX)) - 1
	y0 := int(math.Floor(minY)) - 1
	x1 := int(math.Ceil(maxX)) + 1
	y1 := int(math.Ceil(maxY)) + 1
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > dst.Rect.Dx() {
		x1 = dst.Rect.Dx()
	}
	if y1 > dst.Rect.Dy() {
		y1 = dst.Rect.Dy()
	}

	for dy := y0; dy < y1; dy++ {
		for dx := x0; dx < x1; dx++ {
			// Pixel center → tile space.
			p := inv.Apply(geom.Vec2{X: float64(dx) + 0.5, Y: float64(dy) + 0.5})
			tx := p.X - ox
			ty := p.Y - oy
			if tx < -0.5 || ty < -0.5 || tx > tw-0.5 || ty > th-0.5 {
				continue
			}
			sr, sg, sb, sa := sampleClamped(tile, tx-0.5, ty-0.5)

			// Soften the cut edge over the outermost half pixel.
			edge := 1.0
			if tx < 0 {
				edge *= 1 + tx*2
			}
			if ty < 0 {
				edge *= 1 + ty*2
			}
			if tx > tw-1 {
				edge *= 1 - (tx-(tw-1))*2
			}
			if ty > th-1 {
				edge *= 1 - (ty-(th-1))*2
			}
			if edge < 0 {
				continue
			}
			blendPixel(dst, dx, dy, sr, sg, sb, sa*edge)
		}
	}
}
