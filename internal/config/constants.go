package config

import "time"

const (
	// DefaultServerAddr is default address for the prediction API.
	DefaultServerAddr = ":8000"

	// DefaultMetricsAddr is default address for metrics server.
	DefaultMetricsAddr = ":9090"

	DefaultLogDir  = "/var/log/pof-predictor"
	DefaultDataDir = "/var/lib/pof-predictor"

	// Log rotation keeps five 10 MB files.
	DefaultLogRotateMaxSize    = 10
	DefaultLogRotateMaxAge     = 30
	DefaultLogRotateMaxBackups = 5
)

// Detector defaults follow the ultralytics Python path, not the 640 / 0.5 / 0.4 of the C++ agent.
const (
	DefaultDetectorModelPath      = "models/yolov8l.onnx"
	DefaultDetectorClassNamesPath = "models/classes.txt"
	DefaultDetectorInputSize      = 800
	DefaultDetectorConfidence     = 0.25
	DefaultDetectorIoU            = 0.7
)

const (
	// DefaultOCRLanguage is the Tesseract model trained on diagram labels.
	DefaultOCRLanguage  = "pof_ocr"
	DefaultOCRWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"
	DefaultOCRUpscale   = 3.0
)

var (
	DefaultOCRBandLower = [3]float64{0, 38, 120}
	DefaultOCRBandUpper = [3]float64{179, 255, 255}
)

const (
	DefaultLocatorGap       = 1
	DefaultLocatorHeight    = 22
	DefaultLocatorLeftPad   = 30
	DefaultLocatorRightTrim = 1
)

const (
	DefaultGraphMaxEdgeDistance = 50.0
	DefaultGraphDownFlagScore   = 80
)

const (
	DefaultMatchInclusionScore  = 70
	DefaultMatchAcceptanceScore = 80
)

const (
	DefaultGNNEndpoint = "http://127.0.0.1:8500/v1/infer"
	DefaultGNNTimeout  = 10 * time.Second
)

const (
	// DefaultConfigPath is read when --config is not given.
	DefaultConfigPath = "/etc/pof-predictor/pofd.yaml"

	// EnvPrefix prefixes every environment override, e.g. POF_GNN_ENDPOINT.
	EnvPrefix = "pof"
)
