// Package design serializes a scene as a YAML design document, the
// hand-off format between the editor, the batch exporter and whatever
// storage a host wraps around the engine.
package design

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"banner-canvas-engine/internal/scene"
)

// Document is a complete saved design.
type Document struct {
	Version    string   `yaml:"version"`
	Background string   `yaml:"background,omitempty"`
	Profile    *Profile `yaml:"profile,omitempty"`
	Layers     []Layer  `yaml:"layers"`
}

// Profile is the overlay source plus its placement transform.
type Profile struct {
	Source string  `yaml:"source"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Scale  float64 `yaml:"scale"`
}

// Layer is one serialized layer.
type Layer struct {
	Kind     string  `yaml:"kind"` // "text" or "image"
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation,omitempty"`
	Content  string  `yaml:"content"`

	FontSize   float64 `yaml:"font_size,omitempty"`
	FontFamily string  `yaml:"font_family,omitempty"`
	FontWeight int     `yaml:"font_weight,omitempty"`
	Color      string  `yaml:"color,omitempty"`
	TextAlign  string  `yaml:"text_align,omitempty"`

	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
}

// Read loads a design document from a YAML file.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("design: read %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("design: parse %s: %w", path, err)
	}
	return &doc, nil
}

// Write saves a design document as YAML.
func Write(doc *Document, path string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("design: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("design: write %s: %w", path, err)
	}
	return nil
}

// Apply populates a store from the document. Existing store content is
// left in place; callers start from a fresh store for a clean load.
func (d *Document) Apply(store *scene.Store) error {
	store.SetBackground(d.Background)
	if d.Profile != nil {
		store.SetProfileOverlay(d.Profile.Source)
		store.SetProfileTransform(scene.ProfileTransform{
			X: d.Profile.X, Y: d.Profile.Y, Scale: d.Profile.Scale,
		})
	}
	for i := range d.Layers {
		dl := &d.Layers[i]
		l := scene.Layer{
			X:        dl.X,
			Y:        dl.Y,
			Rotation: dl.Rotation,
			Content:  dl.Content,
		}
		switch dl.Kind {
		case "text":
			l.Kind = scene.KindText
			l.FontSize = dl.FontSize
			l.FontFamily = dl.FontFamily
			l.FontWeight = dl.FontWeight
			l.Color = dl.Color
			l.TextAlign = scene.Align(dl.TextAlign)
		case "image":
			l.Kind = scene.KindImage
			l.Width = dl.Width
			l.Height = dl.Height
		default:
			return fmt.Errorf("design: layer %d: unknown kind %q", i, dl.Kind)
		}
		store.AddLayer(l)
	}
	return nil
}

// FromSnapshot captures a store snapshot as a document.
func FromSnapshot(snap scene.Snapshot) *Document {
	doc := &Document{
		Version:    "1",
		Background: snap.Background,
	}
	if snap.ProfileSource != "" {
		doc.Profile = &Profile{
			Source: snap.ProfileSource,
			X:      snap.Profile.X,
			Y:      snap.Profile.Y,
			Scale:  snap.Profile.Scale,
		}
	}
	for i := range snap.Layers {
		l := &snap.Layers[i]
		dl := Layer{
			X:        l.X,
			Y:        l.Y,
			Rotation: l.Rotation,
			Content:  l.Content,
		}
		if l.Kind == scene.KindText {
			dl.Kind = "text"
			dl.FontSize = l.FontSize
			dl.FontFamily = l.FontFamily
			dl.FontWeight = l.FontWeight
			dl.Color = l.Color
			dl.TextAlign = string(l.TextAlign)
		} else {
			dl.Kind = "image"
			dl.Width = l.Width
			dl.Height = l.Height
		}
		doc.Layers = append(doc.Layers, dl)
	}
	return doc
}
