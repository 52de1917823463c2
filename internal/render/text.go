package render

import (
	"image"

	"golang.org/x/image/font"

	"banner-canvas-engine/internal/scene"
	"banner-canvas-engine/internal/typeface"
)

// textTile rasterizes a text layer's content into a tight tile at ss×
// resolution. Alignment places each line within the measured box: left
// lines start at the box edge, centered and right lines are offset by
// the width difference, which matches anchoring the draw position at
// x, x + width/2 and x + width respectively.
func textTile(l *scene.Layer, faces *typeface.Registry, ss float64) (*image.NRGBA, error) {
	size := l.FontSize * ss
	m, err := faces.Measure(l.Content, l.FontFamily, l.FontWeight, size)
	if err != nil {
		return nil, err
	}
	face, err := faces.Face(l.FontFamily, l.FontWeight, size)
	if err != nil {
		return nil, err
	}

	w := int(m.Width + 1)
	h := int(m.Height + 1)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	tile := image.NewNRGBA(image.Rect(0, 0, w, h))

	col := ParseColor(l.Color)
	d := font.Drawer{
		Dst:  tile,
		Src:  image.NewUniform(col),
		Face: face,
	}

	lines := splitLines(l.Content)
	for i, line := range lines {
		if line == "" {
			continue
		}
		var offX float64
		switch l.TextAlign {
		case scene.AlignCenter:
			offX = (m.Width - m.LineWidths[i]) / 2
		case scene.AlignRight:
			offX = m.Width - m.LineWidths[i]
		}
		d.Dot.X = typeface.FloatToFixed(offX)
		d.Dot.Y = typeface.FloatToFixed(m.Ascent + float64(i)*m.LineHeight)
		d.DrawString(line)
	}
	return tile, nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}
