package typeface

import (
	"strings"

	"golang.org/x/image/font"
)

// Metrics describes the measured bounding box of a text block.
// Width/Height are in logical pixels; Ascent is the distance from the
// top of the box to the first baseline.
type Metrics struct {
	Width      float64
	Height     float64
	Ascent     float64
	LineHeight float64
	LineWidths []float64
}

// Measure computes glyph-metric bounds for content rendered with the
// given face settings. Content may span multiple lines; an empty string
// still yields one line height so empty text layers stay selectable.
func (r *Registry) Measure(content, family string, weight int, size float64) (Metrics, error) {
	face, err := r.Face(family, weight, size)
	if err != nil {
		return Metrics{}, err
	}

	fm := face.Metrics()
	ascent := fixedToFloat(fm.Ascent)
	lineHeight := fixedToFloat(fm.Height)
	if lineHeight <= 0 {
		lineHeight = ascent + fixedToFloat(fm.Descent)
	}

	lines := strings.Split(content, "\n")
	m := Metrics{
		Ascent:     ascent,
		LineHeight: lineHeight,
		LineWidths: make([]float64, len(lines)),
	}
	d := font.Drawer{Face: face}
	for i, line := range lines {
		w := fixedToFloat(d.MeasureString(line))
		m.LineWidths[i] = w
		if w > m.Width {
			m.Width = w
		}
	}
	m.Height = lineHeight * float64(len(lines))
	return m, nil
}
