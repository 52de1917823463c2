package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"banner-canvas-engine/internal/asset"
	"banner-canvas-engine/internal/config"
	"banner-canvas-engine/internal/scene"
	"banner-canvas-engine/internal/typeface"
)

func testRenderer() *Renderer {
	var cfg config.Config
	cfg.Resolve(config.Flags{})
	return New(cfg, typeface.NewRegistry())
}

func solidDataURI(t *testing.T, c color.NRGBA, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func loadAll(t *testing.T, snap scene.Snapshot) *asset.Loader {
	t.Helper()
	l := asset.NewLoader(asset.Options{})
	if err := l.Ensure(context.Background(), snap.Sources()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	return l
}

func pixelAt(img *image.NRGBA, x, y int) color.NRGBA {
	i := img.PixOffset(x, y)
	return color.NRGBA{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
}

func TestEmptySceneFillsBackgroundColor(t *testing.T) {
	r := testRenderer()
	snap := scene.Snapshot{Width: 1584, Height: 396}
	out := r.Render(snap, asset.NewLoader(asset.Options{}), ModeExport, Options{})

	if out.Bounds().Dx() != 1584 || out.Bounds().Dy() != 396 {
		t.Fatalf("output size %v", out.Bounds())
	}
	want := color.NRGBA{0x1f, 0x24, 0x30, 0xff}
	for _, p := range []image.Point{{0, 0}, {1583, 0}, {0, 395}, {792, 198}, {1583, 395}} {
		if got := pixelAt(out, p.X, p.Y); got != want {
			t.Fatalf("pixel %v = %v, want %v", p, got, want)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r := testRenderer()
	snap := scene.Snapshot{
		Width: 1584, Height: 396,
		Layers: []scene.Layer{
			{ID: "t1", Kind: scene.KindText, X: 100, Y: 80, Content: "Hello\nBanner", FontSize: 48, Color: "#ffffff", Rotation: 12},
		},
	}
	loader := loadAll(t, snap)

	a := r.Render(snap, loader, ModeEdit, Options{SelectedID: "t1", ShowSafeZones: true})
	b := r.Render(snap, loader, ModeEdit, Options{SelectedID: "t1", ShowSafeZones: true})
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("identical inputs produced different pixels")
	}
}

func TestExportIgnoresChromeOptions(t *testing.T) {
	r := testRenderer()
	snap := scene.Snapshot{
		Width: 1584, Height: 396,
		Layers: []scene.Layer{
			{ID: "t1", Kind: scene.KindText, X: 200, Y: 150, Content: "chrome", FontSize: 40, Color: "#ffcc00"},
		},
		Selected: "t1",
	}
	loader := loadAll(t, snap)

	plain := r.Render(snap, loader, ModeExport, Options{})
	noisy := r.Render(snap, loader, ModeExport, Options{
		SelectedID: "t1", ShowSafeZones: true, CenterGuideV: true, CenterGuideH: true,
	})
	if !bytes.Equal(plain.Pix, noisy.Pix) {
		t.Error("export output depends on edit-mode options")
	}
}

func TestExportOmitsProfileOverlay(t *testing.T) {
	r := testRenderer()
	avatar := solidDataURI(t, color.NRGBA{0, 200, 0, 255}, 64, 64)

	with := scene.Snapshot{
		Width: 1584, Height: 396,
		ProfileSource: avatar,
		Profile:       scene.ProfileTransform{X: 10, Y: 5, Scale: 1.2},
	}
	without := scene.Snapshot{Width: 1584, Height: 396}
	loader := loadAll(t, with)

	a := r.Render(with, loader, ModeExport, Options{})
	b := r.Render(without, loader, ModeExport, Options{})
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("profile overlay leaked into the export artifact")
	}

	// Edit mode does draw it, so the two paths genuinely diverge.
	edit := r.Render(with, loader, ModeEdit, Options{})
	if bytes.Equal(a.Pix, edit.Pix) {
		t.Error("edit mode did not draw the profile overlay")
	}
}

func TestZOrderTopLayerWins(t *testing.T) {
	r := testRenderer()
	red := solidDataURI(t, color.NRGBA{255, 0, 0, 255}, 4, 4)
	blue := solidDataURI(t, color.NRGBA{0, 0, 255, 255}, 4, 4)

	snap := scene.Snapshot{
		Width: 1584, Height: 396,
		Layers: []scene.Layer{
			{ID: "under", Kind: scene.KindImage, X: 100, Y: 100, Width: 200, Height: 100, Content: red},
			{ID: "over", Kind: scene.KindImage, X: 150, Y: 120, Width: 200, Height: 100, Content: blue},
		},
	}
	loader := loadAll(t, snap)
	out := r.Render(snap, loader, ModeExport, Options{})

	if got := pixelAt(out, 120, 130); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("uncovered region = %v, want red", got)
	}
	if got := pixelAt(out, 250, 150); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("overlap region = %v, want blue on top", got)
	}
}

func TestUnreadySourceIsOmitted(t *testing.T) {
	r := testRenderer()
	snap := scene.Snapshot{
		Width: 1584, Height: 396,
		Layers: []scene.Layer{
			{ID: "ghost", Kind: scene.KindImage, X: 100, Y: 100, Width: 200, Height: 100, Content: "https://example.com/missing.png"},
		},
	}
	// Nothing loaded: the layer must vanish, not blank or distort the frame.
	empty := asset.NewLoader(asset.Options{})
	got := r.Render(snap, empty, ModeExport, Options{})
	want := r.Render(scene.Snapshot{Width: 1584, Height: 396}, empty, ModeExport, Options{})
	if !bytes.Equal(got.Pix, want.Pix) {
		t.Error("unready layer altered the frame")
	}
}

func TestRotatedCornersPointReflection(t *testing.T) {
	faces := typeface.NewRegistry()
	l := scene.Layer{Kind: scene.KindImage, X: 100, Y: 100, Width: 200, Height: 100, Rotation: 180}

	corners := RotatedCorners(&l, faces)
	// 180° about the center swaps each corner with its opposite.
	plain := scene.Layer{Kind: scene.KindImage, X: 100, Y: 100, Width: 200, Height: 100}
	straight := RotatedCorners(&plain, faces)
	for i := range corners {
		opp := straight[(i+2)%4]
		if math.Abs(corners[i].X-opp.X) > 1e-6 || math.Abs(corners[i].Y-opp.Y) > 1e-6 {
			t.Errorf("corner %d = %+v, want %+v", i, corners[i], opp)
		}
	}
}

func TestCoverFitBackground(t *testing.T) {
	r := testRenderer()
	// Source is taller than the canvas aspect: cover must crop, not squash.
	bg := solidDataURI(t, color.NRGBA{10, 120, 210, 255}, 100, 100)
	snap := scene.Snapshot{Width: 1584, Height: 396, Background: bg}
	loader := loadAll(t, snap)

	out := r.Render(snap, loader, ModeExport, Options{})
	want := color.NRGBA{10, 120, 210, 255}
	for _, p := range []image.Point{{0, 0}, {1583, 395}, {792, 198}} {
		if got := pixelAt(out, p.X, p.Y); got != want {
			t.Errorf("background pixel %v = %v, want %v", p, got, want)
		}
	}
}

func TestTranslucentBackgroundBlendsOverFill(t *testing.T) {
	r := testRenderer()
	bg := solidDataURI(t, color.NRGBA{255, 0, 0, 128}, 10, 10)
	snap := scene.Snapshot{Width: 1584, Height: 396, Background: bg}
	loader := loadAll(t, snap)

	out := r.Render(snap, loader, ModeExport, Options{})
	got := pixelAt(out, 792, 198)
	if got.A != 255 {
		t.Fatalf("translucent background left alpha %d in the artifact", got.A)
	}
	// Half red over the #1f2430 fill.
	want := color.NRGBA{143, 18, 24, 255}
	if absDiff(got.R, want.R) > 1 || absDiff(got.G, want.G) > 1 || absDiff(got.B, want.B) > 1 {
		t.Errorf("blended pixel %v, want ~%v", got, want)
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestSupersampleKeepsOutputSize(t *testing.T) {
	var cfg config.Config
	cfg.Supersample = 2
	cfg.Resolve(config.Flags{})
	r := New(cfg, typeface.NewRegistry())

	out := r.Render(scene.Snapshot{Width: 1584, Height: 396}, asset.NewLoader(asset.Options{}), ModeExport, Options{})
	if out.Bounds().Dx() != 1584 || out.Bounds().Dy() != 396 {
		t.Errorf("supersampled output not downsampled to canvas size: %v", out.Bounds())
	}
}

func TestRotationHandleAboveUnrotatedLayer(t *testing.T) {
	faces := typeface.NewRegistry()
	l := scene.Layer{Kind: scene.KindImage, X: 100, Y: 100, Width: 200, Height: 100}
	p := RotationHandlePos(&l, faces)
	if math.Abs(p.X-200) > 1e-6 || math.Abs(p.Y-(100-RotationHandleOffset)) > 1e-6 {
		t.Errorf("handle at %+v", p)
	}
}
