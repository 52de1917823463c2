package scene

// LayerKind discriminates the two layer variants.
type LayerKind int

const (
	KindText LayerKind = iota
	KindImage
)

// Align is the horizontal text anchor mode.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Layer is a single text or image element in logical canvas space.
// X, Y is the top-left of the bounding box; Rotation is in degrees about
// the box center. Text layers derive their box from glyph metrics at draw
// time, so Width/Height are meaningful for image layers only.
type Layer struct {
	ID       string
	Kind     LayerKind
	X, Y     float64
	Rotation float64

	// Content is the text string for text layers, or the image source
	// reference (file path, data URI or remote URL) for image layers.
	Content string

	// Text styling.
	FontSize   float64
	FontFamily string
	FontWeight int
	Color      string
	TextAlign  Align

	// Image geometry. Always positive.
	Width, Height float64
}

// ProfileTransform offsets and scales the profile overlay relative to its
// default placement.
type ProfileTransform struct {
	X     float64
	Y     float64
	Scale float64
}

// Patch is a partial layer update. Nil fields are left unchanged.
type Patch struct {
	X          *float64
	Y          *float64
	Rotation   *float64
	Content    *string
	FontSize   *float64
	FontFamily *string
	FontWeight *int
	Color      *string
	TextAlign  *Align
	Width      *float64
	Height     *float64
}

// Axis selects the canvas axis for one-shot centering.
type Axis int

const (
	AxisHorizontal Axis = iota
	AxisVertical
	AxisBoth
)
