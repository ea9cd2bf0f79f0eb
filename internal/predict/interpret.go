// Package predict runs the graph model and turns its two heads into a
// point-of-failure verdict.
package predict

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"pof-predictor/internal/poferrors"
)

// IndeterminateID is returned when the model does not believe the graph
// contains a point of failure.
const IndeterminateID = "indeterminate"

// HasPOFThreshold is the graph-level probability at which per-node scores are
// trusted.
const HasPOFThreshold = 0.5

// Prediction is the interpreted model output.
type Prediction struct {
	SiteID        string  `json:"site_id"`
	Probability   float64 `json:"probability"`
	Indeterminate bool    `json:"indeterminate"`
}

// Sigmoid is the logistic function.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Interpret gates the per-node logits on the graph-level logit. Below
// HasPOFThreshold the verdict is indeterminate with the graph probability;
// otherwise it is the highest scoring node and its probability.
func Interpret(nodeLogits []float64, graphLogit float64, ids []string) (Prediction, error) {
	if len(nodeLogits) != len(ids) {
		return Prediction{}, poferrors.Newf(poferrors.KindInternal, "%d node logits for %d nodes", len(nodeLogits), len(ids))
	}

	hasPOF := Sigmoid(graphLogit)
	if hasPOF < HasPOFThreshold {
		return Prediction{SiteID: IndeterminateID, Probability: hasPOF, Indeterminate: true}, nil
	}

	if len(ids) == 0 {
		return Prediction{}, poferrors.New(poferrors.KindInternal, "no node logits")
	}

	probs := make([]float64, len(nodeLogits))
	for i, l := range nodeLogits {
		probs[i] = Sigmoid(l)
	}
	best := floats.MaxIdx(probs)

	return Prediction{SiteID: ids[best], Probability: probs[best]}, nil
}
