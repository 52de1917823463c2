// Package engine wires the scene store, asset loader, renderer,
// interaction controller and export serializer into the capability
// object a host owns. The engine never schedules its own redraws: hosts
// subscribe to store changes and call Render on their own cadence,
// typically once per frame.
package engine

import (
	"context"
	"image"

	"banner-canvas-engine/internal/asset"
	"banner-canvas-engine/internal/config"
	"banner-canvas-engine/internal/export"
	"banner-canvas-engine/internal/interact"
	"banner-canvas-engine/internal/render"
	"banner-canvas-engine/internal/scene"
	"banner-canvas-engine/internal/typeface"
	"banner-canvas-engine/internal/viewport"
)

// Engine is the composition engine's capability object.
type Engine struct {
	Cfg        config.Config
	Store      *scene.Store
	Loader     *asset.Loader
	Faces      *typeface.Registry
	Renderer   *render.Renderer
	Controller *interact.Controller
	Serializer *export.Serializer
	Mapper     viewport.Mapper
}

// Option customizes engine construction.
type Option func(*asset.Options)

// WithFetcher injects a resolver for remote URL sources.
func WithFetcher(f asset.Fetcher) Option {
	return func(o *asset.Options) { o.Fetcher = f }
}

// WithWarn overrides the asset warning sink.
func WithWarn(fn func(source string, err error)) Option {
	return func(o *asset.Options) { o.Warn = fn }
}

// New builds an engine for the given configuration. cfg should already
// be resolved.
func New(cfg config.Config, opts ...Option) *Engine {
	var aopts asset.Options
	for _, o := range opts {
		o(&aopts)
	}
	if aopts.Concurrency == 0 {
		aopts.Concurrency = cfg.Workers
	}

	store := scene.NewStore(scene.Options{
		Width:        float64(cfg.CanvasWidth),
		Height:       float64(cfg.CanvasHeight),
		MinLayerSize: cfg.MinLayerSize,
		MinFontSize:  cfg.MinFontSize,
	})
	faces := typeface.NewRegistry()
	loader := asset.NewLoader(aopts)
	renderer := render.New(cfg, faces)

	return &Engine{
		Cfg:        cfg,
		Store:      store,
		Loader:     loader,
		Faces:      faces,
		Renderer:   renderer,
		Controller: interact.New(store, faces, cfg),
		Serializer: export.New(renderer, loader),
		Mapper:     viewport.NewMapper(float64(cfg.CanvasWidth), float64(cfg.CanvasHeight)),
	}
}

// EnsureAssets decodes every source the current scene references and
// waits for them to settle. Call before the first paint and after
// source-changing commands; redraws during a gesture hit only the cache.
func (e *Engine) EnsureAssets(ctx context.Context) error {
	return e.Loader.Ensure(ctx, e.Store.Snapshot().Sources())
}

// RenderEdit paints the interactive view, filling selection and center
// guide options from live state.
func (e *Engine) RenderEdit(showSafeZones bool) *image.NRGBA {
	snap := e.Store.Snapshot()
	v, h := e.Controller.Guides()
	return e.Renderer.Render(snap, e.Loader, render.ModeEdit, render.Options{
		ShowSafeZones: showSafeZones,
		SelectedID:    snap.Selected,
		CenterGuideV:  v,
		CenterGuideH:  h,
	})
}

// ExportImage renders the clean artifact, or fails with
// *export.BlockedError while assets are pending or broken.
func (e *Engine) ExportImage() (*image.NRGBA, error) {
	return e.Serializer.Image(e.Store.Snapshot())
}

// ExportDataURI returns the artifact as a base64 PNG data URI.
func (e *Engine) ExportDataURI() (string, error) {
	return e.Serializer.DataURI(e.Store.Snapshot())
}

// CenterLayer is the one-shot snap-to-center command. The effective
// bounding box is measured here because text boxes derive from glyph
// metrics.
func (e *Engine) CenterLayer(id string, axis scene.Axis) error {
	snap := e.Store.Snapshot()
	l := snap.Layer(id)
	if l == nil {
		return e.Store.CenterLayer(id, axis, 0, 0)
	}
	box := render.LayerBounds(l, e.Faces)
	return e.Store.CenterLayer(id, axis, box.W, box.H)
}

// Subscribe forwards to the store's change notification.
func (e *Engine) Subscribe(fn func()) func() {
	return e.Store.Subscribe(fn)
}
