// bannerview is an interactive host for the composition engine: it
// paints the edit-mode render into a window and forwards mouse input to
// the interaction controller.
//
// Keys: Z toggles safe zones, T adds a text layer, Q adds a QR layer,
// C centers the selected layer, DEL deletes it, S saves the design,
// E exports a PNG next to the design file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"banner-canvas-engine/internal/asset"
	"banner-canvas-engine/internal/config"
	"banner-canvas-engine/internal/design"
	"banner-canvas-engine/internal/engine"
	"banner-canvas-engine/internal/geom"
	"banner-canvas-engine/internal/scene"
	"banner-canvas-engine/internal/viewport"
)

const (
	windowWidth  = 1280
	windowHeight = 480
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	designFile := flag.String("design", "banner.yaml", "Design file to open/save")
	qrURL := flag.String("qr", "https://example.com", "URL for the Q key's QR layer")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{})

	eng := engine.New(cfg)

	if _, err := os.Stat(*designFile); err == nil {
		doc, err := design.Read(*designFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading design: %v\n", err)
			os.Exit(1)
		}
		if err := doc.Apply(eng.Store); err != nil {
			fmt.Fprintf(os.Stderr, "Error applying design: %v\n", err)
			os.Exit(1)
		}
	}

	if err := eng.EnsureAssets(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading assets: %v\n", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Banner Canvas")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	showSafeZones := true
	lastSafeZones := showSafeZones
	var lastVersion uint64
	var tex rl.Texture2D
	haveTex := false

	// Redraw only when the store version moves; pointer moves during a
	// drag bump it, panel-less frames reuse the texture.
	refresh := func() {
		img := eng.RenderEdit(showSafeZones)
		rlImg := rl.NewImageFromImage(img)
		if haveTex {
			rl.UnloadTexture(tex)
		}
		tex = rl.LoadTextureFromImage(rlImg)
		rl.UnloadImage(rlImg)
		haveTex = true
	}

	vp := viewport.Rect{W: windowWidth, H: windowHeight, DevicePixelRatio: 1}

	for !rl.WindowShouldClose() {
		mouse := rl.GetMousePosition()
		pos := geom.Vec2{X: float64(mouse.X), Y: float64(mouse.Y)}

		if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			eng.Controller.PointerDown(pos, vp)
		}
		if rl.IsMouseButtonDown(rl.MouseLeftButton) {
			eng.Controller.PointerMove(pos, vp)
		}
		if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
			eng.Controller.Up()
		}

		handleKeys(eng, *designFile, *qrURL, &showSafeZones)

		snap := eng.Store.Snapshot()
		if snap.Version != lastVersion || showSafeZones != lastSafeZones || !haveTex {
			lastVersion = snap.Version
			lastSafeZones = showSafeZones
			eng.EnsureAssets(context.Background())
			refresh()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Color{R: 28, G: 30, B: 34, A: 255})

		canvas := eng.Mapper.CanvasRect(vp)
		src := rl.Rectangle{Width: float32(tex.Width), Height: float32(tex.Height)}
		dst := rl.Rectangle{
			X: float32(canvas.X), Y: float32(canvas.Y),
			Width: float32(canvas.W), Height: float32(canvas.H),
		}
		rl.DrawTexturePro(tex, src, dst, rl.Vector2{}, 0, rl.White)
		rl.DrawRectangleLinesEx(dst, 1, rl.Color{R: 90, G: 90, B: 90, A: 255})

		status := fmt.Sprintf("layers: %d | selected: %s | safe zones: %v",
			len(snap.Layers), orNone(snap.Selected), showSafeZones)
		rl.DrawText(status, 10, windowHeight-24, 10, rl.LightGray)

		rl.EndDrawing()
	}

	if haveTex {
		rl.UnloadTexture(tex)
	}
}

func handleKeys(eng *engine.Engine, designFile, qrURL string, showSafeZones *bool) {
	switch {
	case rl.IsKeyPressed(rl.KeyZ):
		*showSafeZones = !*showSafeZones
	case rl.IsKeyPressed(rl.KeyT):
		id := eng.Store.AddLayer(scene.Layer{
			Kind:     scene.KindText,
			X:        600,
			Y:        160,
			Content:  "Your headline",
			FontSize: 60,
			Color:    "#ffffff",
		})
		eng.Store.SetSelection(id)
	case rl.IsKeyPressed(rl.KeyQ):
		src, err := asset.QRSource(qrURL, 256)
		if err != nil {
			fmt.Fprintf(os.Stderr, "QR: %v\n", err)
			return
		}
		id := eng.Store.AddLayer(scene.Layer{
			Kind:    scene.KindImage,
			X:       1380,
			Y:       180,
			Width:   160,
			Height:  160,
			Content: src,
		})
		eng.Store.SetSelection(id)
	case rl.IsKeyPressed(rl.KeyC):
		if sel := eng.Store.Snapshot().Selected; sel != "" {
			eng.CenterLayer(sel, scene.AxisBoth)
		}
	case rl.IsKeyPressed(rl.KeyDelete):
		if sel := eng.Store.Snapshot().Selected; sel != "" {
			eng.Store.DeleteLayer(sel)
		}
	case rl.IsKeyPressed(rl.KeyS):
		if err := design.Write(design.FromSnapshot(eng.Store.Snapshot()), designFile); err != nil {
			fmt.Fprintf(os.Stderr, "Save: %v\n", err)
		} else {
			fmt.Printf("Saved %s\n", designFile)
		}
	case rl.IsKeyPressed(rl.KeyE):
		data, err := eng.Serializer.PNG(eng.Store.Snapshot())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export: %v\n", err)
			return
		}
		out := strings.TrimSuffix(designFile, ".yaml") + ".png"
		if err := os.WriteFile(out, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Export: %v\n", err)
			return
		}
		fmt.Printf("Exported %s\n", out)
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
