package batch

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"banner-canvas-engine/internal/config"
	"banner-canvas-engine/internal/design"
)

func writeDesign(t *testing.T, dir, name string, doc *design.Document) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := design.Write(doc, path); err != nil {
		t.Fatalf("write design: %v", err)
	}
	return path
}

func TestRunExportsDesigns(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	good := writeDesign(t, dir, "good.yaml", &design.Document{
		Version: "1",
		Layers: []design.Layer{
			{Kind: "text", X: 100, Y: 100, Content: "Batch", FontSize: 48, Color: "#ffffff"},
		},
	})
	bad := writeDesign(t, dir, "bad.yaml", &design.Document{
		Version: "1",
		Layers:  []design.Layer{{Kind: "hologram", Content: "?"}},
	})

	var cfg Config
	cfg.EngineConfig.Resolve(config.Flags{})
	cfg.OutputDir = outDir
	cfg.Workers = 2
	cfg.Quiet = true

	results := Run(cfg, []string{good, bad})
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}

	if !results[0].Success {
		t.Fatalf("good design failed: %s", results[0].Error)
	}
	f, err := os.Open(results[0].Output)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output not a png: %v", err)
	}
	if img.Bounds().Dx() != 1584 || img.Bounds().Dy() != 396 {
		t.Errorf("output size %v", img.Bounds())
	}

	if results[1].Success || results[1].Error == "" {
		t.Errorf("bad design not reported: %+v", results[1])
	}
}

func TestRunWebPFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeDesign(t, dir, "only.yaml", &design.Document{
		Version: "1",
		Layers:  []design.Layer{{Kind: "text", X: 50, Y: 50, Content: "webp", FontSize: 30}},
	})

	var cfg Config
	cfg.EngineConfig.Resolve(config.Flags{})
	cfg.OutputDir = dir
	cfg.Format = "webp"
	cfg.Quiet = true

	results := Run(cfg, []string{path})
	if !results[0].Success {
		t.Fatalf("export failed: %s", results[0].Error)
	}
	data, err := os.ReadFile(results[0].Output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) < 12 || !bytes.Equal(data[:4], []byte("RIFF")) {
		t.Errorf("not a webp container: % x", data[:12])
	}
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	results := []Result{
		{Design: "/abs/a.yaml", Output: "/abs/out/a.png", Success: true},
		{Design: "/abs/b.yaml", Error: "design: parse b.yaml: boom"},
	}
	if err := WriteManifest(path, results); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("manifest not json: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Design != "a.yaml" || entries[0].Image != "a.png" || !entries[0].Success {
		t.Errorf("first entry: %+v", entries[0])
	}
	if entries[1].Success || entries[1].Error == "" || entries[1].Image != "" {
		t.Errorf("second entry: %+v", entries[1])
	}
}
