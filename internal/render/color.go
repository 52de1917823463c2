package render

import (
	"fmt"
	"image/color"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"transparent": {0, 0, 0, 0},
}

// ParseColor parses #RGB, #RRGGBB, #RRGGBBAA or a small set of CSS color
// names. Unparseable values fall back to opaque white so a bad style
// field never blanks a text layer.
func ParseColor(s string) color.NRGBA {
	c, err := parseColor(s)
	if err != nil {
		return color.NRGBA{255, 255, 255, 255}
	}
	return c
}

func parseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("render: bad color %q", s)
	}
	hex := s[1:]
	switch len(hex) {
	case 3:
		r, g, b, err := nib3(hex)
		if err != nil {
			return color.NRGBA{}, err
		}
		return color.NRGBA{r * 17, g * 17, b * 17, 255}, nil
	case 6, 8:
		var v [4]uint8
		v[3] = 255
		for i := 0; i < len(hex)/2; i++ {
			hi, err1 := nibble(hex[i*2])
			lo, err2 := nibble(hex[i*2+1])
			if err1 != nil || err2 != nil {
				return color.NRGBA{}, fmt.Errorf("render: bad color %q", s)
			}
			v[i] = hi<<4 | lo
		}
		return color.NRGBA{v[0], v[1], v[2], v[3]}, nil
	}
	return color.NRGBA{}, fmt.Errorf("render: bad color %q", s)
}

func nib3(hex string) (r, g, b uint8, err error) {
	r, err = nibble(hex[0])
	if err != nil {
		return
	}
	g, err = nibble(hex[1])
	if err != nil {
		return
	}
	b, err = nibble(hex[2])
	return
}

func nibble(c byte) (uint8, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	}
	return 0, fmt.Errorf("render: bad hex digit %q", c)
}
