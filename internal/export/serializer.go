// Package export produces the downloadable artifact: a clean
// export-mode render at exactly canvas resolution, encoded as PNG or
// WebP. Export refuses to run while any referenced source is still
// loading or broken, so a partial frame never ships.
package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"

	"banner-canvas-engine/internal/asset"
	"banner-canvas-engine/internal/render"
	"banner-canvas-engine/internal/scene"
)

// BlockedError reports why an export could not proceed.
type BlockedError struct {
	Pending []string
	Broken  []string
}

func (e *BlockedError) Error() string {
	var parts []string
	if len(e.Pending) > 0 {
		parts = append(parts, fmt.Sprintf("%d source(s) still loading", len(e.Pending)))
	}
	if len(e.Broken) > 0 {
		parts = append(parts, fmt.Sprintf("%d source(s) broken", len(e.Broken)))
	}
	return "export: blocked: " + strings.Join(parts, ", ")
}

// Serializer renders and encodes export artifacts.
type Serializer struct {
	renderer *render.Renderer
	assets   *asset.Loader
}

// New creates a serializer over a renderer and its asset cache.
func New(renderer *render.Renderer, assets *asset.Loader) *Serializer {
	return &Serializer{renderer: renderer, assets: assets}
}

// Image renders the snapshot in export mode. It fails with a
// *BlockedError when any referenced source is pending or broken.
func (s *Serializer) Image(snap scene.Snapshot) (*image.NRGBA, error) {
	if err := s.check(snap); err != nil {
		return nil, err
	}
	return s.renderer.Render(snap, s.assets, render.ModeExport, render.Options{}), nil
}

// PNG returns the export artifact as encoded PNG bytes.
func (s *Serializer) PNG(snap scene.Snapshot) ([]byte, error) {
	img, err := s.Image(snap)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("export: png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI returns the export artifact as a base64 PNG data URI, the
// form browsers download directly.
func (s *Serializer) DataURI(snap scene.Snapshot) (string, error) {
	data, err := s.PNG(snap)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// WebP writes the export artifact as WebP.
func (s *Serializer) WebP(w io.Writer, snap scene.Snapshot) error {
	img, err := s.Image(snap)
	if err != nil {
		return err
	}
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("export: webp encode: %w", err)
	}
	return nil
}

// check walks every source the snapshot references. The profile overlay
// is excluded: it never appears in the artifact, so its readiness cannot
// block an export.
func (s *Serializer) check(snap scene.Snapshot) error {
	var blocked BlockedError
	consider := func(src string) {
		if src == "" {
			return
		}
		switch s.assets.State(src) {
		case asset.StateReady:
		case asset.StateBroken:
			blocked.Broken = append(blocked.Broken, src)
		default:
			blocked.Pending = append(blocked.Pending, src)
		}
	}
	consider(snap.Background)
	for i := range snap.Layers {
		if snap.Layers[i].Kind == scene.KindImage {
			consider(snap.Layers[i].Content)
		}
	}
	if len(blocked.Pending) > 0 || len(blocked.Broken) > 0 {
		return &blocked
	}
	return nil
}
