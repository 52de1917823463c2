// Package interact is the pointer state machine that turns raw pointer
// events into scene commands: selection, dragging, corner resizing and
// rotation. Gestures preview live against the store and collapse into a
// single committed update on pointer-up.
package interact

import (
	"math"

	"banner-canvas-engine/internal/config"
	"banner-canvas-engine/internal/geom"
	"banner-canvas-engine/internal/render"
	"banner-canvas-engine/internal/scene"
	"banner-canvas-engine/internal/typeface"
	"banner-canvas-engine/internal/viewport"
)

// State is the controller's gesture state.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateResizing
	StateRotating
	StateOverlayDragging
)

// Handle identifies a selection handle. Corner order matches
// geom.Rect.Corners: TL, TR, BR, BL.
type Handle int

const (
	HandleNone Handle = iota - 1
	HandleTL
	HandleTR
	HandleBR
	HandleBL
	HandleRotate
)

// Controller runs the Idle/Dragging/Resizing/Rotating machine. All
// methods must be called from the host's event-handling goroutine; the
// machine itself holds no lock.
type Controller struct {
	store  *scene.Store
	faces  *typeface.Registry
	cfg    config.Config
	mapper viewport.Mapper

	state  State
	handle Handle
	active string

	start        geom.Vec2
	moved        bool
	startLayer   scene.Layer
	startProfile scene.ProfileTransform
	startAngle   float64

	guideV, guideH bool
}

// New creates a controller bound to a store.
func New(store *scene.Store, faces *typeface.Registry, cfg config.Config) *Controller {
	w, h := store.Size()
	return &Controller{
		store:  store,
		faces:  faces,
		cfg:    cfg,
		mapper: viewport.NewMapper(w, h),
		state:  StateIdle,
		handle: HandleNone,
	}
}

// State returns the current gesture state.
func (c *Controller) State() State { return c.state }

// ActiveLayer returns the layer id of the gesture in progress, if any.
func (c *Controller) ActiveLayer() string { return c.active }

// Guides reports which center guides the current drag should light up.
func (c *Controller) Guides() (vertical, horizontal bool) {
	return c.guideV, c.guideH
}

// PointerDown begins a gesture from a pointer position in viewport
// layout units.
func (c *Controller) PointerDown(pos geom.Vec2, vp viewport.Rect) {
	c.Down(c.mapper.ToLogical(pos, vp))
}

// PointerMove advances the gesture.
func (c *Controller) PointerMove(pos geom.Vec2, vp viewport.Rect) {
	c.Move(c.mapper.ToLogical(pos, vp))
}

// Down is PointerDown with an already-logical point.
func (c *Controller) Down(p geom.Vec2) {
	snap := c.store.Snapshot()
	c.start = p
	c.moved = false
	c.guideV = false
	c.guideH = false

	// Handles of the selected layer win over any body hit beneath them.
	if snap.Selected != "" {
		if sel := snap.Layer(snap.Selected); sel != nil {
			if h := c.hitHandle(sel, p); h != HandleNone {
				c.active = sel.ID
				c.startLayer = *sel
				c.handle = h
				if h == HandleRotate {
					c.state = StateRotating
					box := render.LayerBounds(sel, c.faces)
					c.startAngle = p.Sub(box.Center()).Angle()
				} else {
					c.state = StateResizing
				}
				return
			}
		}
	}

	// Topmost layer whose rotated box contains the point.
	for i := len(snap.Layers) - 1; i >= 0; i-- {
		l := &snap.Layers[i]
		if c.hitBody(l, p) {
			c.store.SetSelection(l.ID)
			c.active = l.ID
			c.startLayer = *l
			c.state = StateDragging
			return
		}
	}

	// The profile overlay is draggable like a layer, but only as a guide.
	if snap.ProfileSource != "" && c.hitOverlay(snap, p) {
		c.startProfile = snap.Profile
		c.state = StateOverlayDragging
		return
	}

	c.store.SetSelection("")
	c.state = StateIdle
}

// Move is PointerMove with an already-logical point.
func (c *Controller) Move(p geom.Vec2) {
	if c.state == StateIdle {
		return
	}
	delta := p.Sub(c.start)
	if !c.moved && delta.Len() < c.cfg.ClickThreshold {
		// Below the click threshold this is still "select only".
		return
	}
	c.moved = true

	switch c.state {
	case StateDragging:
		x := c.startLayer.X + delta.X
		y := c.startLayer.Y + delta.Y
		c.store.ApplyGesture(c.active, scene.Patch{X: &x, Y: &y})
		c.updateGuides(x, y)
	case StateResizing:
		c.resizeTo(p)
	case StateRotating:
		c.rotateTo(p)
	case StateOverlayDragging:
		t := c.startProfile
		t.X += delta.X
		t.Y += delta.Y
		c.store.ApplyProfileGesture(t)
	}
}

// Up ends the gesture, committing it as a single store update when the
// pointer actually moved.
func (c *Controller) Up() {
	switch c.state {
	case StateDragging:
		if c.moved {
			c.store.CommitGesture(c.active, "drag")
		}
	case StateResizing:
		if c.moved {
			c.store.CommitGesture(c.active, "resize")
		}
	case StateRotating:
		if c.moved {
			c.store.CommitGesture(c.active, "rotate")
		}
	case StateOverlayDragging:
		if c.moved {
			c.store.CommitProfileGesture()
		}
	}
	c.reset()
}

// Cancel abandons the gesture, restoring the pre-gesture geometry.
func (c *Controller) Cancel() {
	switch c.state {
	case StateDragging, StateResizing, StateRotating:
		if c.moved {
			l := c.startLayer
			c.store.ApplyGesture(c.active, scene.Patch{
				X: &l.X, Y: &l.Y,
				Width: &l.Width, Height: &l.Height,
				FontSize: &l.FontSize,
				Rotation: &l.Rotation,
			})
		}
	case StateOverlayDragging:
		if c.moved {
			c.store.ApplyProfileGesture(c.startProfile)
		}
	}
	c.reset()
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.handle = HandleNone
	c.active = ""
	c.moved = false
	c.guideV = false
	c.guideH = false
}

// hitHandle tests the selection handles in logical space.
func (c *Controller) hitHandle(l *scene.Layer, p geom.Vec2) Handle {
	r := c.cfg.HandleHitRadius
	if p.Sub(render.RotationHandlePos(l, c.faces)).Len() <= r {
		return HandleRotate
	}
	corners := render.RotatedCorners(l, c.faces)
	for i, corner := range corners {
		if p.Sub(corner).Len() <= r {
			return Handle(i)
		}
	}
	return HandleNone
}

// hitBody tests a layer's bounding box with the point rotated back into
// the box's axis-aligned local space.
func (c *Controller) hitBody(l *scene.Layer, p geom.Vec2) bool {
	box := render.LayerBounds(l, c.faces)
	if l.Rotation != 0 {
		inv := geom.RotateAbout(geom.Deg2Rad(l.Rotation), box.Center()).Invert()
		p = inv.Apply(p)
	}
	return box.Contains(p)
}

func (c *Controller) hitOverlay(snap scene.Snapshot, p geom.Vec2) bool {
	center := geom.Vec2{
		X: c.cfg.ProfileCenterX + snap.Profile.X,
		Y: c.cfg.ProfileCenterY + snap.Profile.Y,
	}
	radius := c.cfg.ProfileDiameter * snap.Profile.Scale / 2
	return p.Sub(center).Len() <= radius
}

// resizeTo recomputes geometry while the anchor corner opposite the
// grabbed handle stays fixed, in the layer's unrotated local space.
func (c *Controller) resizeTo(p geom.Vec2) {
	start := c.startLayer
	box := geom.Rect{X: start.X, Y: start.Y, W: start.Width, H: start.Height}
	if start.Kind == scene.KindText {
		box = render.LayerBounds(&start, c.faces)
	}
	corners := box.Corners()
	anchor := corners[(int(c.handle)+2)%4]

	local := p
	if start.Rotation != 0 {
		inv := geom.RotateAbout(geom.Deg2Rad(start.Rotation), box.Center()).Invert()
		local = inv.Apply(p)
	}

	if start.Kind == scene.KindText {
		// Text auto-sizes its box, so the gesture scales the font.
		startDist := c.start.Sub(anchor).Len()
		if start.Rotation != 0 {
			inv := geom.RotateAbout(geom.Deg2Rad(start.Rotation), box.Center()).Invert()
			startDist = inv.Apply(c.start).Sub(anchor).Len()
		}
		if startDist < 1 {
			return
		}
		size := start.FontSize * local.Sub(anchor).Len() / startDist
		size = math.Max(size, c.cfg.MinFontSize)
		c.store.ApplyGesture(c.active, scene.Patch{FontSize: &size})
		return
	}

	w := math.Max(math.Abs(local.X-anchor.X), c.cfg.MinLayerSize)
	h := math.Max(math.Abs(local.Y-anchor.Y), c.cfg.MinLayerSize)
	// Keep the anchor corner fixed even when the clamp kicks in.
	var x, y float64
	if local.X < anchor.X {
		x = anchor.X - w
	} else {
		x = anchor.X
	}
	if local.Y < anchor.Y {
		y = anchor.Y - h
	} else {
		y = anchor.Y
	}

	if start.Rotation != 0 {
		// Rotation pivots about the box center, and the resize moved the
		// center. Shift the box so the anchor corner's rotated position
		// stays where it was before the gesture.
		rad := geom.Deg2Rad(start.Rotation)
		want := geom.RotateAbout(rad, box.Center()).Apply(anchor)
		center := geom.Vec2{X: x + w/2, Y: y + h/2}
		got := geom.RotateAbout(rad, center).Apply(anchor)
		x += want.X - got.X
		y += want.Y - got.Y
	}
	c.store.ApplyGesture(c.active, scene.Patch{X: &x, Y: &y, Width: &w, Height: &h})
}

// rotateTo sets rotation from the pointer's angle about the layer
// center, relative to the angle at gesture start. No snapping.
func (c *Controller) rotateTo(p geom.Vec2) {
	box := render.LayerBounds(&c.startLayer, c.faces)
	a := p.Sub(box.Center()).Angle()
	deg := c.startLayer.Rotation + (a-c.startAngle)*180/math.Pi
	c.store.ApplyGesture(c.active, scene.Patch{Rotation: &deg})
}

// updateGuides lights the center guides when the dragged layer's center
// comes within tolerance of the canvas center.
func (c *Controller) updateGuides(x, y float64) {
	l := c.startLayer
	l.X = x
	l.Y = y
	center := render.LayerBounds(&l, c.faces).Center()
	w, h := c.store.Size()
	c.guideV = math.Abs(center.X-w/2) <= c.cfg.CenterTolerance
	c.guideH = math.Abs(center.Y-h/2) <= c.cfg.CenterTolerance
}
