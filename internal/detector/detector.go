// Package detector finds node and link glyphs in a topology diagram.
package detector

import (
	"context"

	"gocv.io/x/gocv"

	"pof-predictor/internal/topology"
)

//go:generate mockgen -destination mocks/detector_mock.go -source detector.go -package mocks

// Detector runs object detection on a decoded BGR image.
type Detector interface {
	Predict(ctx context.Context, img gocv.Mat) (*topology.DetectionResult, error)
}
