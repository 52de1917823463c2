package typeface

import "golang.org/x/image/math/fixed"

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// FloatToFixed converts logical pixels to 26.6 fixed point.
func FloatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v*64 + 0.5)
}
