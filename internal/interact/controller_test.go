package interact

import (
	"math"
	"testing"

	"banner-canvas-engine/internal/config"
	"banner-canvas-engine/internal/geom"
	"banner-canvas-engine/internal/render"
	"banner-canvas-engine/internal/scene"
	"banner-canvas-engine/internal/typeface"
)

var testFaces = typeface.NewRegistry()

func newTestController() (*Controller, *scene.Store) {
	var cfg config.Config
	cfg.Resolve(config.Flags{})
	store := scene.NewStore(scene.Options{
		Width:        float64(cfg.CanvasWidth),
		Height:       float64(cfg.CanvasHeight),
		MinLayerSize: cfg.MinLayerSize,
		MinFontSize:  cfg.MinFontSize,
	})
	return New(store, testFaces, cfg), store
}

func layerCorners(store *scene.Store, id string) [4]geom.Vec2 {
	snap := store.Snapshot()
	return render.RotatedCorners(snap.Layer(id), testFaces)
}

func dragEntries(s *scene.Store, op string) int {
	var n int
	for _, e := range s.Journal() {
		if e.Op == op {
			n++
		}
	}
	return n
}

func TestDragMovesLayerAndCommitsOnce(t *testing.T) {
	c, store := newTestController()
	id := store.AddLayer(scene.Layer{Kind: scene.KindText, X: 100, Y: 100, Content: "HELLO", FontSize: 60})

	c.Down(geom.Vec2{X: 110, Y: 110})
	if c.State() != StateDragging {
		t.Fatalf("state = %v, want dragging", c.State())
	}
	if store.Snapshot().Selected != id {
		t.Fatal("press did not select the layer")
	}

	c.Move(geom.Vec2{X: 130, Y: 100})
	c.Move(geom.Vec2{X: 160, Y: 90})
	c.Up()

	l := store.Snapshot().Layer(id)
	if l.X != 150 || l.Y != 80 {
		t.Errorf("layer at (%v, %v), want (150, 80)", l.X, l.Y)
	}
	if l.Content != "HELLO" || l.FontSize != 60 || l.Rotation != 0 {
		t.Errorf("drag altered non-positional fields: %+v", l)
	}
	if got := dragEntries(store, "drag"); got != 1 {
		t.Errorf("drag committed %d journal entries, want 1", got)
	}
}

func TestClickBelowThresholdSelectsOnly(t *testing.T) {
	c, store := newTestController()
	id := store.AddLayer(scene.Layer{Kind: scene.KindImage, X: 100, Y: 100, Width: 200, Height: 100, Content: "x.png"})

	c.Down(geom.Vec2{X: 150, Y: 150})
	c.Move(geom.Vec2{X: 151, Y: 151}) // under the click threshold
	c.Up()

	if store.Snapshot().Selected != id {
		t.Error("click did not select")
	}
	l := store.Snapshot().Layer(id)
	if l.X != 100 || l.Y != 100 {
		t.Errorf("click moved the layer to (%v, %v)", l.X, l.Y)
	}
	if got := dragEntries(store, "drag"); got != 0 {
		t.Errorf("click produced %d drag entries", got)
	}
}

func TestEmptyPressClearsSelection(t *testing.T) {
	c, store := newTestController()
	id := store.AddLayer(scene.Layer{Kind: scene.KindImage, X: 100, Y: 100, Width: 50, Height: 50, Content: "x.png"})
	store.SetSelection(id)

	c.Down(geom.Vec2{X: 1500, Y: 380})
	c.Up()
	if store.Snapshot().Selected != "" {
		t.Error("press on empty canvas kept the selection")
	}
}

func TestTopmostLayerWinsTieBreak(t *testing.T) {
	c, store := newTestController()
	store.AddLayer(scene.Layer{Kind: scene.KindImage, X: 100, Y: 100, Width: 200, Height: 100, Content: "under.png"})
	top := store.AddLayer(scene.Layer{Kind: scene.KindImage, X: 100, Y: 100, Width: 200, Height: 100, Content: "over.png"})

	c.Down(geom.Vec2{X: 150, Y: 150})
	c.Up()
	if got := store.Snapshot().Selected; got != top {
		t.Errorf("selected %q, want topmost %q", got, top)
	}
}

func TestResizeClampsAtMinimumWithFixedAnchor(t *testing.T) {
	c, store := newTestController()
	id := store.AddLayer(scene.Layer{Kind: scene.KindImage, X: 100, Y: 100, Width: 200, Height: 200, Content: "x.png"})
	store.SetSelection(id)

	// Grab the bottom-right handle and collapse past the opposite corner.
	c.Down(geom.Vec2{X: 300, Y: 300})
	if c.State() != StateResizing {
		t.Fatalf("state = %v, want resizing", c.State())
	}
	c.Move(geom.Vec2{X: 105, Y: 105})

	l := store.Snapshot().Layer(id)
	if l.Width != 20 || l.Height != 20 {
		t.Errorf("size %vx%v, want clamp to 20x20", l.Width, l.Height)
	}
	if l.X != 100 || l.Y != 100 {
		t.Errorf("anchor corner drifted to (%v, %v)", l.X, l.Y)
	}

	// Back above the minimum the gesture tracks the pointer exactly.
	c.Move(geom.Vec2{X: 150, Y: 150})
	c.Up()
	l = store.Snapshot().Layer(id)
	if l.Width != 50 || l.Height != 50 || l.X != 100 || l.Y != 100 {
		t.Errorf("resize result %+v", l)
	}
	if got := dragEntries(store, "resize"); got != 1 {
		t.Errorf("resize committed %d entries, want 1", got)
	}
}

func TestResizeRotatedLayerHoldsAnchorInWorldSpace(t *testing.T) {
	c, store := newTestController()
	id := store.AddLayer(scene.Layer{Kind: scene.KindImage, X: 100, Y: 100, Width: 200, Height: 100, Content: "x.png", Rotation: 90})
	store.SetSelection(id)

	corners := layerCorners(store, id)
	anchor := corners[0] // opposite the grabbed bottom-right handle

	c.Down(corners[2])
	if c.State() != StateResizing {
		t.Fatalf("state = %v, want resizing", c.State())
	}
	c.Move(geom.Vec2{X: 130, Y: 300})
	c.Up()

	l := store.Snapshot().Layer(id)
	if math.Abs(l.Width-250) > 1e-6 || math.Abs(l.Height-120) > 1e-6 {
		t.Errorf("size %vx%v, want 250x120", l.Width, l.Height)
	}
	after := layerCorners(store, id)[0]
	if math.Abs(after.X-anchor.X) > 1e-6 || math.Abs(after.Y-anchor.Y) > 1e-6 {
		t.Errorf("anchor corner drifted: before %+v, after %+v", anchor, after)
	}
	if math.Abs(l.X-65) > 1e-6 || math.Abs(l.Y-115) > 1e-6 {
		t.Errorf("box origin (%v, %v), want (65, 115)", l.X, l.Y)
	}
}

func TestHandleBeatsCoveringLayerBody(t *testing.T) {
	c, store := newTestController()
	a := store.AddLayer(scene.Layer{Kind: scene.KindImage, X: 100, Y: 100, Width: 100, Height: 100, Content: "a.png"})
	store.AddLayer(scene.Layer{Kind: scene.KindImage, X: 0, Y: 0, Width: 1584, Height: 396, Content: "cover.png"})
	store.SetSelection(a)

	// (200, 200) is a's bottom-right corner and inside the covering layer.
	c.Down(geom.Vec2{X: 200, Y: 200})
	if c.State() != StateResizing || c.ActiveLayer() != a {
		t.Errorf("state=%v active=%q, want resize on the selected layer", c.State(), c.ActiveLayer())
	}
	c.Cancel()
}

func TestTextResizeScalesFontSize(t *testing.T) {
	c, store := newTestController()
	id := store.AddLayer(scene.Layer{Kind: scene.KindText, X: 100, Y: 100, Content: "HELLO", FontSize: 40})
	store.SetSelection(id)

	corners := layerCorners(store, id)
	br := corners[2]
	tl := corners[0]

	c.Down(br)
	if c.State() != StateResizing {
		t.Fatalf("state = %v, want resizing", c.State())
	}
	// Pull the corner to twice its distance from the anchor.
	far := geom.Vec2{X: tl.X + (br.X-tl.X)*2, Y: tl.Y + (br.Y-tl.Y)*2}
	c.Move(far)
	c.Up()

	l := store.Snapshot().Layer(id)
	if math.Abs(l.FontSize-80) > 0.5 {
		t.Errorf("font size %v, want ~80", l.FontSize)
	}
}

func TestTextResizeRespectsMinimumFontSize(t *testing.T) {
	c, store := newTestController()
	id := store.AddLayer(scene.Layer{Kind: scene.KindText, X: 100, Y: 100, Content: "HELLO", FontSize: 40})
	store.SetSelection(id)

	corners := layerCorners(store, id)
	c.Down(corners[2])
	// Collapse onto the anchor corner.
	c.Move(geom.Vec2{X: corners[0].X + 1, Y: corners[0].Y + 1})
	c.Up()

	if got := store.Snapshot().Layer(id).FontSize; got < 8 {
		t.Errorf("font size %v fell below the minimum", got)
	}
}

func TestRotateGesture(t *testing.T) {
	c, store := newTestController()
	id := store.AddLayer(scene.Layer{Kind: scene.KindImage, X: 100, Y: 100, Width: 200, Height: 100, Content: "x.png"})
	store.SetSelection(id)

	// Rotation handle sits above the top edge midpoint.
	c.Down(geom.Vec2{X: 200, Y: 72})
	if c.State() != StateRotating {
		t.Fatalf("state = %v, want rotating", c.State())
	}

	// Swing the pointer a quarter turn clockwise about the center (200, 150).
	c.Move(geom.Vec2{X: 278, Y: 150})
	c.Up()

	got := store.Snapshot().Layer(id).Rotation
	if math.Abs(got-90) > 1e-6 {
		t.Errorf("rotation %v, want 90", got)
	}
	if n := dragEntries(store, "rotate"); n != 1 {
		t.Errorf("rotate committed %d entries, want 1", n)
	}
}

func TestCancelRestoresGeometry(t *testing.T) {
	c, store := newTestController()
	id := store.AddLayer(scene.Layer{Kind: scene.KindImage, X: 100, Y: 100, Width: 200, Height: 100, Content: "x.png"})

	c.Down(geom.Vec2{X: 150, Y: 150})
	c.Move(geom.Vec2{X: 400, Y: 300})
	c.Cancel()

	l := store.Snapshot().Layer(id)
	if l.X != 100 || l.Y != 100 || l.Width != 200 || l.Height != 100 {
		t.Errorf("cancel left the layer at %+v", l)
	}
	if n := dragEntries(store, "drag"); n != 0 {
		t.Errorf("cancelled gesture wrote %d journal entries", n)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v after cancel", c.State())
	}
}

func TestOverlayDragUpdatesProfileTransform(t *testing.T) {
	c, store := newTestController()
	store.SetProfileOverlay("me.png")

	// Default overlay center for the 1584x396 canvas.
	center := geom.Vec2{X: 158.4, Y: 308.88}
	c.Down(center)
	if c.State() != StateOverlayDragging {
		t.Fatalf("state = %v, want overlay drag", c.State())
	}
	c.Move(geom.Vec2{X: center.X + 30, Y: center.Y - 10})
	c.Up()

	p := store.Snapshot().Profile
	if math.Abs(p.X-30) > 1e-9 || math.Abs(p.Y+10) > 1e-9 {
		t.Errorf("profile transform %+v, want offset (30, -10)", p)
	}
}

func TestCenterGuidesLightUpNearCanvasCenter(t *testing.T) {
	c, store := newTestController()
	store.AddLayer(scene.Layer{Kind: scene.KindImage, X: 100, Y: 100, Width: 100, Height: 100, Content: "x.png"})

	c.Down(geom.Vec2{X: 150, Y: 150})
	// Layer center lands at (792, 198) exactly.
	c.Move(geom.Vec2{X: 792, Y: 198})
	v, h := c.Guides()
	if !v || !h {
		t.Errorf("guides = (%v, %v), want both lit", v, h)
	}

	c.Move(geom.Vec2{X: 400, Y: 198})
	v, h = c.Guides()
	if v || !h {
		t.Errorf("guides = (%v, %v), want horizontal only", v, h)
	}
	c.Up()
}
