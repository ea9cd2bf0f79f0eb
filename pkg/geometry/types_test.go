package geometry

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint2D_Nearest(t *testing.T) {
	tests := []struct {
		name      string
		point     Point2D
		points    []Point2D
		expectIdx int
		expectD   float64
	}{
		{
			name:      "empty",
			point:     NewPoint2D(0, 0),
			expectIdx: -1,
			expectD:   math.Inf(1),
		},
		{
			name:      "closest wins",
			point:     NewPoint2D(10, 10),
			points:    []Point2D{{X: 0, Y: 0}, {X: 13, Y: 14}, {X: 100, Y: 100}},
			expectIdx: 1,
			expectD:   5,
		},
		{
			name:      "ties resolve to lowest index",
			point:     NewPoint2D(0, 0),
			points:    []Point2D{{X: 3, Y: 4}, {X: -3, Y: -4}},
			expectIdx: 0,
			expectD:   5,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			idx, d := tc.point.Nearest(tc.points)
			assert.Equal(t, tc.expectIdx, idx)
			assert.Equal(t, tc.expectD, d)
		})
	}
}

func TestBox(t *testing.T) {
	assert := assert.New(t)

	b := NewBox(10, 20, 30, 60)
	assert.Equal(20.0, b.Width())
	assert.Equal(40.0, b.Height())
	assert.Equal(NewPoint2D(20, 40), b.Center())
	assert.Equal(NewRect(20, 40, 20, 40), b.ToRect())
	assert.Equal(b, b.ToRect().ToBox())
	assert.Equal(image.Rect(10, 20, 30, 60), NewBox(10.9, 20.2, 30.7, 60.1).Pixels())
}
