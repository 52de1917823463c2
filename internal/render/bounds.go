package render

import (
	"banner-canvas-engine/internal/geom"
	"banner-canvas-engine/internal/scene"
	"banner-canvas-engine/internal/typeface"
)

// LayerBounds returns the unrotated bounding box of a layer in logical
// space. Image layers carry explicit geometry; text layers derive theirs
// from glyph metrics, so font or content edits move the box while X, Y
// stay the anchor.
func LayerBounds(l *scene.Layer, faces *typeface.Registry) geom.Rect {
	switch l.Kind {
	case scene.KindImage:
		return geom.Rect{X: l.X, Y: l.Y, W: l.Width, H: l.Height}
	default:
		m, err := faces.Measure(l.Content, l.FontFamily, l.FontWeight, l.FontSize)
		if err != nil {
			return geom.Rect{X: l.X, Y: l.Y, W: l.FontSize, H: l.FontSize}
		}
		w := m.Width
		if w < 1 {
			// Empty text still needs a selectable box.
			w = l.FontSize / 2
		}
		return geom.Rect{X: l.X, Y: l.Y, W: w, H: m.Height}
	}
}

// RotatedCorners returns a layer's bounding-box corners after rotating
// about the box center, in TL, TR, BR, BL order.
func RotatedCorners(l *scene.Layer, faces *typeface.Registry) [4]geom.Vec2 {
	box := LayerBounds(l, faces)
	m := geom.RotateAbout(geom.Deg2Rad(l.Rotation), box.Center())
	corners := box.Corners()
	for i := range corners {
		corners[i] = m.Apply(corners[i])
	}
	return corners
}
