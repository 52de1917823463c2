// Package render turns a scene snapshot into pixels. The renderer is a
// pure function of (snapshot, asset cache, mode, options): identical
// inputs produce pixel-identical output. Edit mode layers interactive
// chrome on top; export mode emits only background and layers.
package render

import (
	"image"
	"math"

	"banner-canvas-engine/internal/asset"
	"banner-canvas-engine/internal/config"
	"banner-canvas-engine/internal/geom"
	"banner-canvas-engine/internal/scene"
	"banner-canvas-engine/internal/typeface"
)

// Mode selects the output contract.
type Mode int

const (
	ModeEdit Mode = iota
	ModeExport
)

// Options tunes edit-mode chrome. Export mode ignores all of it.
type Options struct {
	ShowSafeZones bool
	SelectedID    string

	// Center guide lines lit up by the interaction controller when a
	// drag passes near the canvas center.
	CenterGuideV bool
	CenterGuideH bool
}

// Renderer composites scenes for one canvas configuration.
type Renderer struct {
	cfg   config.Config
	faces *typeface.Registry
	zones SafeZones
}

// New creates a renderer.
func New(cfg config.Config, faces *typeface.Registry) *Renderer {
	return &Renderer{cfg: cfg, faces: faces, zones: ComputeSafeZones(cfg)}
}

// Faces exposes the renderer's font registry, shared with hit-testing.
func (r *Renderer) Faces() *typeface.Registry { return r.faces }

// Zones exposes the derived safe-zone geometry.
func (r *Renderer) Zones() SafeZones { return r.zones }

// Render paints the snapshot at exactly CanvasWidth×CanvasHeight.
// Sources that are still loading or broken are omitted, never
// substituted: a bad layer can't blank the frame.
func (r *Renderer) Render(snap scene.Snapshot, assets *asset.Loader, mode Mode, opts Options) *image.NRGBA {
	ss := float64(r.cfg.Supersample)
	if ss < 1 {
		ss = 1
	}
	w := int(float64(r.cfg.CanvasWidth) * ss)
	h := int(float64(r.cfg.CanvasHeight) * ss)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	r.fillBackground(out, snap, assets, w, h)

	for i := range snap.Layers {
		r.drawLayer(out, &snap.Layers[i], assets, ss)
	}

	if mode == ModeEdit {
		r.drawProfileOverlay(out, snap, assets, ss)
		if opts.ShowSafeZones {
			r.drawSafeZones(out, ss)
		}
		if opts.CenterGuideV || opts.CenterGuideH {
			r.drawCenterGuides(out, opts, ss)
		}
		if opts.SelectedID != "" {
			if l := snap.Layer(opts.SelectedID); l != nil {
				r.drawSelection(out, l, ss)
			}
		}
	}

	if ss > 1 {
		out = Downsample(out, r.cfg.CanvasWidth, r.cfg.CanvasHeight)
	}
	return out
}

func (r *Renderer) fillBackground(out *image.NRGBA, snap scene.Snapshot, assets *asset.Loader, w, h int) {
	c := ParseColor(r.cfg.BackgroundColor)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = c.R
		out.Pix[i+1] = c.G
		out.Pix[i+2] = c.B
		out.Pix[i+3] = 255
	}
	if snap.Background == "" {
		return
	}
	bg := assets.Get(snap.Background)
	if bg == nil {
		return
	}
	fitted := CoverFit(bg, w, h)
	// Composited, not copied: a background with transparency blends over
	// the neutral fill instead of punching holes in the artifact.
	compositeOver(out, fitted, 0, 0)
}

func (r *Renderer) drawLayer(out *image.NRGBA, l *scene.Layer, assets *asset.Loader, ss float64) {
	var tile *image.NRGBA
	switch l.Kind {
	case scene.KindImage:
		tex := assets.Get(l.Content)
		if tex == nil {
			return
		}
		tile = ScaleTo(tex, int(l.Width*ss+0.5), int(l.Height*ss+0.5))
	default:
		var err error
		tile, err = textTile(l, r.faces, ss)
		if err != nil {
			return
		}
	}

	ox := l.X * ss
	oy := l.Y * ss
	rad := geom.Deg2Rad(l.Rotation)
	if math.Abs(rad) < 1e-9 {
		compositeOver(out, tile, int(math.Round(ox)), int(math.Round(oy)))
		return
	}
	// Pivot at the tile's own center: rotation never orbits the canvas.
	pivot := geom.Vec2{
		X: ox + float64(tile.Bounds().Dx())/2,
		Y: oy + float64(tile.Bounds().Dy())/2,
	}
	compositeRotated(out, tile, ox, oy, rad, pivot)
}

// drawProfileOverlay previews where the platform composites the viewer's
// avatar. Guide only: the export path never calls this.
func (r *Renderer) drawProfileOverlay(out *image.NRGBA, snap scene.Snapshot, assets *asset.Loader, ss float64) {
	if snap.ProfileSource == "" {
		return
	}
	tex := assets.Get(snap.ProfileSource)
	if tex == nil {
		return
	}
	t := snap.Profile
	d := r.cfg.ProfileDiameter * t.Scale * ss
	if d < 1 {
		return
	}
	cx := (r.cfg.ProfileCenterX + t.X) * ss
	cy := (r.cfg.ProfileCenterY + t.Y) * ss

	tile := CoverFit(tex, int(d+0.5), int(d+0.5))
	maskCircle(tile)
	compositeOver(out, tile, int(cx-d/2+0.5), int(cy-d/2+0.5))
}

func (r *Renderer) drawSafeZones(out *image.NRGBA, ss float64) {
	t := 1.5 * ss
	dash, gap := 6*ss, 5*ss

	c := r.zones.AvatarCircle
	strokeDashedCircle(out,
		geom.Vec2{X: c.Center.X * ss, Y: c.Center.Y * ss},
		c.Diameter/2*ss, t, safeZoneColor, dash, gap)

	v := r.zones.VisibleRect
	strokeDashedRect(out,
		geom.Rect{X: v.X * ss, Y: v.Y * ss, W: v.W * ss, H: v.H * ss},
		t, safeZoneColor, dash, gap)
}

func (r *Renderer) drawCenterGuides(out *image.NRGBA, opts Options, ss float64) {
	w := float64(r.cfg.CanvasWidth) * ss
	h := float64(r.cfg.CanvasHeight) * ss
	t := 1.0 * ss
	if opts.CenterGuideV {
		drawDashedLine(out, geom.Vec2{X: w / 2}, geom.Vec2{X: w / 2, Y: h}, t, guideColor, 8*ss, 6*ss)
	}
	if opts.CenterGuideH {
		drawDashedLine(out, geom.Vec2{Y: h / 2}, geom.Vec2{X: w, Y: h / 2}, t, guideColor, 8*ss, 6*ss)
	}
}

func (r *Renderer) drawSelection(out *image.NRGBA, l *scene.Layer, ss float64) {
	corners := RotatedCorners(l, r.faces)
	pts := make([]geom.Vec2, 4)
	for i, c := range corners {
		pts[i] = geom.Vec2{X: c.X * ss, Y: c.Y * ss}
	}
	strokePolygon(out, pts, 1.5*ss, selectionColor)

	// Corner handles.
	hs := HandleSize * ss
	for _, p := range pts {
		stamp(out, p.X, p.Y, hs, handleFill)
		stamp(out, p.X, p.Y, hs/2, selectionColor)
	}

	// Rotation handle above the top edge, following the layer's tilt.
	topMid := geom.Vec2{X: (pts[0].X + pts[1].X) / 2, Y: (pts[0].Y + pts[1].Y) / 2}
	center := geom.Vec2{
		X: (pts[0].X + pts[2].X) / 2,
		Y: (pts[0].Y + pts[2].Y) / 2,
	}
	dir := topMid.Sub(center)
	n := dir.Len()
	if n < 1e-6 {
		dir = geom.Vec2{Y: -1}
		n = 1
	}
	handle := geom.Vec2{
		X: topMid.X + dir.X/n*RotationHandleOffset*ss,
		Y: topMid.Y + dir.Y/n*RotationHandleOffset*ss,
	}
	drawLine(out, topMid, handle, 1.5*ss, selectionColor)
	fillCircle(out, handle, hs/2, handleFill)
	fillCircle(out, handle, hs/4, selectionColor)
}

// RotationHandlePos returns the rotation handle's logical position for a
// layer, shared between drawing and hit-testing.
func RotationHandlePos(l *scene.Layer, faces *typeface.Registry) geom.Vec2 {
	corners := RotatedCorners(l, faces)
	topMid := geom.Vec2{X: (corners[0].X + corners[1].X) / 2, Y: (corners[0].Y + corners[1].Y) / 2}
	center := geom.Vec2{X: (corners[0].X + corners[2].X) / 2, Y: (corners[0].Y + corners[2].Y) / 2}
	dir := topMid.Sub(center)
	n := dir.Len()
	if n < 1e-6 {
		return geom.Vec2{X: topMid.X, Y: topMid.Y - RotationHandleOffset}
	}
	return geom.Vec2{
		X: topMid.X + dir.X/n*RotationHandleOffset,
		Y: topMid.Y + dir.Y/n*RotationHandleOffset,
	}
}
