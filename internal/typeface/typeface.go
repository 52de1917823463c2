// Package typeface manages font faces and text measurement for the
// canvas engine. The Go font family ships embedded as the default, so
// text metrics are available from the first paint without any host
// font-loading handshake; hosts register additional families from TTF/OTF
// bytes before using them in layers.
package typeface

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// DefaultFamily is used when a layer names no family or an unknown one.
const DefaultFamily = "Go"

// BoldWeight is the CSS-style weight at which the bold variant kicks in.
const BoldWeight = 600

type variant struct {
	regular *sfnt.Font
	bold    *sfnt.Font
}

type faceKey struct {
	family string
	bold   bool
	size   int // quarter-pixels
}

// Registry is a concurrency-safe font and face cache.
type Registry struct {
	mu       sync.Mutex
	families map[string]*variant
	faces    map[faceKey]font.Face
}

// NewRegistry creates a registry with the embedded Go fonts registered
// as "Go", "Go Mono" and "Go Italic".
func NewRegistry() *Registry {
	r := &Registry{
		families: make(map[string]*variant),
		faces:    make(map[faceKey]font.Face),
	}
	must := func(b []byte) *sfnt.Font {
		f, err := opentype.Parse(b)
		if err != nil {
			panic(fmt.Sprintf("typeface: embedded font: %v", err))
		}
		return f
	}
	r.families[norm("Go")] = &variant{regular: must(goregular.TTF), bold: must(gobold.TTF)}
	r.families[norm("Go Mono")] = &variant{regular: must(gomono.TTF)}
	r.families[norm("Go Italic")] = &variant{regular: must(goitalic.TTF)}
	return r
}

// Register parses TTF/OTF bytes and registers them under the family
// name. A second call with bold=true adds the bold variant.
func (r *Registry) Register(family string, data []byte, bold bool) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("typeface: parse %s: %w", family, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.families[norm(family)]
	if v == nil {
		v = &variant{}
		r.families[norm(family)] = v
	}
	if bold {
		v.bold = f
	} else {
		v.regular = f
	}
	return nil
}

// Has reports whether a family is registered.
func (r *Registry) Has(family string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.families[norm(family)] != nil
}

// Face returns a cached face for (family, weight, size). Unknown
// families fall back to the default family; weights at or above
// BoldWeight select the bold variant when one exists.
func (r *Registry) Face(family string, weight int, size float64) (font.Face, error) {
	if size <= 0 {
		size = 12
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	v := r.families[norm(family)]
	if v == nil {
		v = r.families[norm(DefaultFamily)]
	}
	bold := weight >= BoldWeight && v.bold != nil
	key := faceKey{family: norm(family), bold: bold, size: int(size*4 + 0.5)}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}

	src := v.regular
	if bold {
		src = v.bold
	}
	if src == nil {
		src = v.bold
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("typeface: face %s@%.1f: %w", family, size, err)
	}
	r.faces[key] = face
	return face, nil
}

func norm(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}
