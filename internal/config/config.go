package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds canvas geometry and interaction/export settings.
type Config struct {
	// Logical canvas size. All layer coordinates live in this space.
	CanvasWidth  int `json:"canvas_width"`
	CanvasHeight int `json:"canvas_height"`

	// Interaction settings, in logical units.
	MinLayerSize    float64 `json:"min_layer_size"`
	MinFontSize     float64 `json:"min_font_size"`
	HandleHitRadius float64 `json:"handle_hit_radius"`
	ClickThreshold  float64 `json:"click_threshold"`
	CenterTolerance float64 `json:"center_tolerance"`

	// Profile overlay default placement. Zero values are derived from
	// the canvas size in Resolve.
	ProfileDiameter float64 `json:"profile_diameter"`
	ProfileCenterX  float64 `json:"profile_center_x"`
	ProfileCenterY  float64 `json:"profile_center_y"`

	// Default background fill when no background source is set.
	BackgroundColor string `json:"background_color"`

	// Render/export settings.
	Supersample int `json:"supersample"`
	WebPQuality int `json:"webp_quality"`
	Workers     int `json:"workers"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Width       int
	Height      int
	Supersample int
	Quality     int
	Workers     int
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero.
func (c *Config) Resolve(flags Flags) {
	if flags.Width > 0 {
		c.CanvasWidth = flags.Width
	}
	if flags.Height > 0 {
		c.CanvasHeight = flags.Height
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.Quality > 0 {
		c.WebPQuality = flags.Quality
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.CanvasWidth <= 0 {
		c.CanvasWidth = 1584
	}
	if c.CanvasHeight <= 0 {
		c.CanvasHeight = 396
	}

	if c.MinLayerSize <= 0 {
		c.MinLayerSize = 20
	}
	if c.MinFontSize <= 0 {
		c.MinFontSize = 8
	}
	if c.HandleHitRadius <= 0 {
		c.HandleHitRadius = 12
	}
	if c.ClickThreshold <= 0 {
		c.ClickThreshold = 3
	}
	if c.CenterTolerance <= 0 {
		c.CenterTolerance = 6
	}

	// Platform avatar sits in the bottom-left region of the banner.
	h := float64(c.CanvasHeight)
	w := float64(c.CanvasWidth)
	if c.ProfileDiameter <= 0 {
		c.ProfileDiameter = 0.7 * h
	}
	if c.ProfileCenterX <= 0 {
		c.ProfileCenterX = 0.1 * w
	}
	if c.ProfileCenterY <= 0 {
		c.ProfileCenterY = 0.78 * h
	}

	if c.BackgroundColor == "" {
		c.BackgroundColor = "#1f2430"
	}

	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.WebPQuality <= 0 {
		c.WebPQuality = 90
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
}
