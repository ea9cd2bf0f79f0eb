// Package colorutil provides shared color utilities for diagram processing.
package colorutil

// HSVRange is an inclusive band in OpenCV HSV space (H 0-180, S 0-255, V 0-255).
type HSVRange struct {
	Lower [3]float64 `yaml:"lower" mapstructure:"lower"`
	Upper [3]float64 `yaml:"upper" mapstructure:"upper"`
}

// LabelBand isolates the saturated, reasonably bright strokes site labels are
// rendered with, and drops the white background and grey gridlines.
var LabelBand = HSVRange{
	Lower: [3]float64{0, 38, 120},
	Upper: [3]float64{179, 255, 255},
}

// Valid reports whether every lower bound is within range and not above its upper bound.
func (r HSVRange) Valid() bool {
	limits := [3]float64{180, 255, 255}
	for i := range limits {
		if r.Lower[i] < 0 || r.Upper[i] > limits[i] || r.Lower[i] > r.Upper[i] {
			return false
		}
	}
	return true
}
