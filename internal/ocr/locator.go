package ocr

import "image"

// LabelLocator finds where a node's site label is printed, given the node's
// pixel box.
type LabelLocator interface {
	Locate(node image.Rectangle) image.Rectangle
}

// BelowLeftLocator places the label in a band under the node that starts
// LeftPad pixels left of it, for diagrams that print ids left-aligned below
// each glyph.
type BelowLeftLocator struct {
	// Gap is the number of rows between the node's bottom edge and the band.
	Gap       int `yaml:"gap" mapstructure:"gap"`
	Height    int `yaml:"height" mapstructure:"height"`
	LeftPad   int `yaml:"leftPad" mapstructure:"leftPad"`
	RightTrim int `yaml:"rightTrim" mapstructure:"rightTrim"`
}

// DefaultLocator matches the stock diagram renderer.
var DefaultLocator = BelowLeftLocator{Gap: 1, Height: 22, LeftPad: 30, RightTrim: 1}

func (l BelowLeftLocator) Locate(node image.Rectangle) image.Rectangle {
	top := node.Max.Y + l.Gap
	return image.Rectangle{
		Min: image.Point{X: node.Min.X - l.LeftPad, Y: top},
		Max: image.Point{X: node.Max.X - l.RightTrim, Y: top + l.Height},
	}
}
