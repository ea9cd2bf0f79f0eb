// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"image"
	"math"
)

// Point2D represents a 2D point with floating-point pixel coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Nearest returns the index of the point closest to p and its distance.
// Ties resolve to the lowest index. It returns -1 for an empty slice.
func (p Point2D) Nearest(points []Point2D) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, q := range points {
		if d := p.Distance(q); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// Box is an axis-aligned box in corner form (x_min, y_min, x_max, y_max),
// the layout detectors report as "xyxy".
type Box struct {
	XMin float64 `json:"x_min"`
	YMin float64 `json:"y_min"`
	XMax float64 `json:"x_max"`
	YMax float64 `json:"y_max"`
}

// NewBox creates a new Box from its corners.
func NewBox(xMin, yMin, xMax, yMax float64) Box {
	return Box{XMin: xMin, YMin: yMin, XMax: xMax, YMax: yMax}
}

// Width returns the horizontal extent.
func (b Box) Width() float64 { return b.XMax - b.XMin }

// Height returns the vertical extent.
func (b Box) Height() float64 { return b.YMax - b.YMin }

// Center returns the center point of the box.
func (b Box) Center() Point2D {
	return Point2D{X: (b.XMin + b.XMax) / 2, Y: (b.YMin + b.YMax) / 2}
}

// TopLeft returns the (x_min, y_min) corner.
func (b Box) TopLeft() Point2D {
	return Point2D{X: b.XMin, Y: b.YMin}
}

// BottomRight returns the (x_max, y_max) corner.
func (b Box) BottomRight() Point2D {
	return Point2D{X: b.XMax, Y: b.YMax}
}

// Pixels truncates the box to integer pixel coordinates.
func (b Box) Pixels() image.Rectangle {
	return image.Rect(int(b.XMin), int(b.YMin), int(b.XMax), int(b.YMax))
}

// ToRect converts to center+size form.
func (b Box) ToRect() Rect {
	c := b.Center()
	return Rect{X: c.X, Y: c.Y, Width: b.Width(), Height: b.Height()}
}

// Rect is a box in center+size form (cx, cy, w, h), the layout detectors
// report as "xywh".
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X, Y: r.Y}
}

// ToBox converts to corner form.
func (r Rect) ToBox() Box {
	return Box{
		XMin: r.X - r.Width/2,
		YMin: r.Y - r.Height/2,
		XMax: r.X + r.Width/2,
		YMax: r.Y + r.Height/2,
	}
}
