package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"banner-canvas-engine/internal/batch"
	"banner-canvas-engine/internal/config"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	designDir := flag.String("designs", "", "Directory of design .yaml files (or pass files as args)")
	outputDir := flag.String("output", "renders", "Output directory")
	format := flag.String("format", "png", "Output format: png or webp")
	workers := flag.Int("workers", 0, "Number of worker goroutines")
	width := flag.Int("width", 0, "Canvas width (default: 1584)")
	height := flag.Int("height", 0, "Canvas height (default: 396)")
	supersample := flag.Int("supersample", 0, "Supersample factor (default: 1)")
	quality := flag.Int("quality", 0, "WebP quality 1-100 (default: 90)")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Width:       *width,
		Height:      *height,
		Supersample: *supersample,
		Quality:     *quality,
		Workers:     *workers,
	})

	// Collect design files
	designs := flag.Args()
	if *designDir != "" {
		entries, err := os.ReadDir(*designDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading designs dir: %v\n", err)
			os.Exit(1)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if ext == ".yaml" || ext == ".yml" {
				designs = append(designs, filepath.Join(*designDir, e.Name()))
			}
		}
		sort.Strings(designs)
	}

	if len(designs) == 0 {
		fmt.Println("No designs to export.")
		os.Exit(0)
	}

	if *format != "png" && *format != "webp" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", *format)
		os.Exit(1)
	}

	fmt.Printf("Banner Export → %s\n", strings.ToUpper(*format))
	fmt.Printf("Canvas: %dx%d, Designs: %d, Workers: %d\n",
		cfg.CanvasWidth, cfg.CanvasHeight, len(designs), cfg.Workers)
	fmt.Printf("Output: %s\n", *outputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{
		EngineConfig: cfg,
		OutputDir:    *outputDir,
		Format:       *format,
		Workers:      cfg.Workers,
	}, designs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Exported: %d/%d\n", success, len(designs))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", filepath.Base(e.Design), e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(*outputDir, "manifest.json")
	os.MkdirAll(*outputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
