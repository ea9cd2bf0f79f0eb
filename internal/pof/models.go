// Package pof predicts the point of failure in a topology diagram.
package pof

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"gocv.io/x/gocv"

	"pof-predictor/internal/config"
	"pof-predictor/internal/detector"
	"pof-predictor/internal/ocr"
	"pof-predictor/internal/predict"
	"pof-predictor/pkg/colorutil"
	"pof-predictor/pkg/geometry"
)

//go:generate mockgen -destination mocks/models_mock.go -source models.go -package mocks

// SiteIDReader reads the label printed next to a node.
type SiteIDReader interface {
	ReadSiteID(img gocv.Mat, box geometry.Box) (string, error)
}

// Models are loaded once and shared by every request. Nothing mutates them
// after construction.
type Models struct {
	Detector detector.Detector
	Reader   SiteIDReader
	GNN      predict.GNN

	closers []func() error
}

// Validate checks that every model is present.
func (m *Models) Validate() error {
	switch {
	case m.Detector == nil:
		return errors.New("models require a detector")
	case m.Reader == nil:
		return errors.New("models require a site id reader")
	case m.GNN == nil:
		return errors.New("models require a gnn")
	}
	return nil
}

// Close releases the native resources of loaded models.
func (m *Models) Close() error {
	var result *multierror.Error
	for _, c := range m.closers {
		if err := c(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// LoadModels loads the detector and OCR engine and connects the GNN client.
func LoadModels(cfg *config.Config) (*Models, error) {
	yolo, err := detector.NewYOLO(detector.Config{
		ModelPath:      cfg.Detector.ModelPath,
		ClassNamesPath: cfg.Detector.ClassNamesPath,
		InputSize:      cfg.Detector.InputSize,
		Confidence:     cfg.Detector.Confidence,
		IoU:            cfg.Detector.IoU,
	})
	if err != nil {
		return nil, fmt.Errorf("load detector: %w", err)
	}

	engine, err := ocr.NewEngine(ocr.EngineConfig{
		Language:  cfg.OCR.Language,
		Whitelist: cfg.OCR.Whitelist,
	})
	if err != nil {
		yolo.Close()
		return nil, fmt.Errorf("load ocr engine: %w", err)
	}

	reader := ocr.NewReader(ocr.ReaderConfig{
		Locator: ocr.BelowLeftLocator{
			Gap:       cfg.OCR.Locator.Gap,
			Height:    cfg.OCR.Locator.Height,
			LeftPad:   cfg.OCR.Locator.LeftPad,
			RightTrim: cfg.OCR.Locator.RightTrim,
		},
		Band:    colorutil.HSVRange{Lower: cfg.OCR.BandLower, Upper: cfg.OCR.BandUpper},
		Upscale: cfg.OCR.Upscale,
	}, engine)

	return &Models{
		Detector: yolo,
		Reader:   reader,
		GNN:      predict.NewRemoteGNN(cfg.GNN.Endpoint, cfg.GNN.Timeout),
		closers:  []func() error{yolo.Close, engine.Close},
	}, nil
}
