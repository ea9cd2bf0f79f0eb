package predict

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"pof-predictor/internal/poferrors"
)

func TestSigmoid(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(0.5, Sigmoid(0))
	assert.InDelta(0.952574, Sigmoid(3), 1e-6)
	assert.InDelta(1-Sigmoid(2), Sigmoid(-2), 1e-12)
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		name       string
		nodeLogits []float64
		graphLogit float64
		ids        []string
		expect     func(t *testing.T, p Prediction, err error)
	}{
		{
			name:       "highest node wins",
			nodeLogits: []float64{-2, 3, 0.1},
			graphLogit: 1,
			ids:        []string{"A", "B", "C"},
			expect: func(t *testing.T, p Prediction, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("B", p.SiteID)
				assert.Equal(Sigmoid(3), p.Probability)
				assert.False(p.Indeterminate)
			},
		},
		{
			name:       "graph head gates node scores",
			nodeLogits: []float64{-2, 30, 0.1},
			graphLogit: -0.01,
			ids:        []string{"A", "B", "C"},
			expect: func(t *testing.T, p Prediction, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(IndeterminateID, p.SiteID)
				assert.True(p.Indeterminate)
				assert.Equal(Sigmoid(-0.01), p.Probability)
			},
		},
		{
			name:       "exactly one half is trusted",
			nodeLogits: []float64{1, 1},
			graphLogit: 0,
			ids:        []string{"A", "B"},
			expect: func(t *testing.T, p Prediction, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("A", p.SiteID)
			},
		},
		{
			name:       "saturated logits",
			nodeLogits: []float64{math.Inf(-1), 800},
			graphLogit: 800,
			ids:        []string{"A", "B"},
			expect: func(t *testing.T, p Prediction, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("B", p.SiteID)
				assert.Equal(1.0, p.Probability)
			},
		},
		{
			name:       "length mismatch",
			nodeLogits: []float64{1},
			graphLogit: 2,
			ids:        []string{"A", "B"},
			expect: func(t *testing.T, p Prediction, err error) {
				assert.True(t, poferrors.IsKind(err, poferrors.KindInternal))
			},
		},
		{
			name:       "no nodes",
			graphLogit: 2,
			expect: func(t *testing.T, p Prediction, err error) {
				assert.True(t, poferrors.IsKind(err, poferrors.KindInternal))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Interpret(tc.nodeLogits, tc.graphLogit, tc.ids)
			tc.expect(t, p, err)
		})
	}
}
