package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"banner-canvas-engine/internal/asset"
	"banner-canvas-engine/internal/config"
	"banner-canvas-engine/internal/design"
	"banner-canvas-engine/internal/export"
	"banner-canvas-engine/internal/render"
	"banner-canvas-engine/internal/scene"
	"banner-canvas-engine/internal/typeface"
)

// Config holds all shared resources for a batch export run.
type Config struct {
	EngineConfig config.Config
	OutputDir    string
	Fetcher      asset.Fetcher
	Format       string // "png" or "webp"
	Workers      int
	Quiet        bool
}

// Result holds the outcome of exporting one design.
type Result struct {
	Design  string
	Output  string
	Success bool
	Error   string
}

// Run exports all design files using a worker pool.
func Run(cfg Config, designs []string) []Result {
	total := len(designs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 && !cfg.Quiet {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f designs/sec\n", p, total, rate)
				}
			}
		}
	}()

	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	// Faces parse once and are shared; each worker gets its own store
	// and loader so designs never share mutable state.
	faces := typeface.NewRegistry()

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processDesign(cfg, faces, designs[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range designs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processDesign(cfg Config, faces *typeface.Registry, path string) Result {
	fail := func(err error) Result {
		return Result{Design: path, Error: err.Error()}
	}

	doc, err := design.Read(path)
	if err != nil {
		return fail(err)
	}

	store := scene.NewStore(scene.Options{
		Width:        float64(cfg.EngineConfig.CanvasWidth),
		Height:       float64(cfg.EngineConfig.CanvasHeight),
		MinLayerSize: cfg.EngineConfig.MinLayerSize,
		MinFontSize:  cfg.EngineConfig.MinFontSize,
	})
	if err := doc.Apply(store); err != nil {
		return fail(err)
	}

	loader := asset.NewLoader(asset.Options{Fetcher: cfg.Fetcher})
	snap := store.Snapshot()
	if err := loader.Ensure(context.Background(), snap.Sources()); err != nil {
		return fail(err)
	}

	renderer := render.New(cfg.EngineConfig, faces)
	ser := export.New(renderer, loader)

	format := cfg.Format
	if format == "" {
		format = "png"
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(cfg.OutputDir, base+"."+format)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fail(err)
	}

	switch format {
	case "webp":
		f, err := os.Create(outPath)
		if err != nil {
			return fail(err)
		}
		defer f.Close()
		if err := ser.WebP(f, snap); err != nil {
			return fail(err)
		}
	default:
		data, err := ser.PNG(snap)
		if err != nil {
			return fail(err)
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fail(err)
		}
	}

	return Result{Design: path, Output: outPath, Success: true}
}
