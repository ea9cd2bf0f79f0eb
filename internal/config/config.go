// Package config holds the pofd configuration file schema.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"

	"pof-predictor/pkg/colorutil"
)

type Config struct {
	// Base options.
	BaseOptions `yaml:",inline" mapstructure:",squash"`

	// Server configuration.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Metrics configuration.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`

	// Detector configuration.
	Detector DetectorConfig `yaml:"detector" mapstructure:"detector"`

	// OCR configuration.
	OCR OCRConfig `yaml:"ocr" mapstructure:"ocr"`

	// Graph builder configuration.
	Graph GraphConfig `yaml:"graph" mapstructure:"graph"`

	// Match configuration.
	Match MatchConfig `yaml:"match" mapstructure:"match"`

	// GNN configuration.
	GNN GNNConfig `yaml:"gnn" mapstructure:"gnn"`

	// Archive configuration.
	Archive ArchiveConfig `yaml:"archive" mapstructure:"archive"`
}

type BaseOptions struct {
	// Console logs to stderr instead of files.
	Console bool `yaml:"console" mapstructure:"console"`

	// Verbose enables debug logs.
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

type ServerConfig struct {
	// Addr is the listen address of the prediction API.
	Addr string `yaml:"addr" mapstructure:"addr"`

	// Server log directory.
	LogDir string `yaml:"logDir" mapstructure:"logDir"`

	// Maximum size in megabytes of log files before rotation.
	LogMaxSize int `yaml:"logMaxSize" mapstructure:"logMaxSize"`

	// Maximum number of days to retain old log files.
	LogMaxAge int `yaml:"logMaxAge" mapstructure:"logMaxAge"`

	// Maximum number of old log files to keep.
	LogMaxBackups int `yaml:"logMaxBackups" mapstructure:"logMaxBackups"`

	// Server storage data directory.
	DataDir string `yaml:"dataDir" mapstructure:"dataDir"`
}

type MetricsConfig struct {
	// Enable metrics service.
	Enable bool `yaml:"enable" mapstructure:"enable"`

	// Metrics service address.
	Addr string `yaml:"addr" mapstructure:"addr"`
}

type DetectorConfig struct {
	// ModelPath is the YOLOv8 ONNX export.
	ModelPath string `yaml:"modelPath" mapstructure:"modelPath"`

	// ClassNamesPath lists one class per line in class id order.
	ClassNamesPath string `yaml:"classNamesPath" mapstructure:"classNamesPath"`

	// InputSize is the square network input edge.
	InputSize int `yaml:"inputSize" mapstructure:"inputSize"`

	// Confidence is the minimum class score kept.
	Confidence float64 `yaml:"confidence" mapstructure:"confidence"`

	// IoU is the non-maximum suppression overlap threshold.
	IoU float64 `yaml:"iou" mapstructure:"iou"`
}

type OCRConfig struct {
	// Language is the Tesseract traineddata name.
	Language string `yaml:"language" mapstructure:"language"`

	Whitelist string `yaml:"whitelist" mapstructure:"whitelist"`

	// BandLower and BandUpper bound the label color in OpenCV HSV.
	BandLower [3]float64 `yaml:"bandLower" mapstructure:"bandLower"`
	BandUpper [3]float64 `yaml:"bandUpper" mapstructure:"bandUpper"`

	Upscale float64 `yaml:"upscale" mapstructure:"upscale"`

	// Locator places the label relative to its node.
	Locator LocatorConfig `yaml:"locator" mapstructure:"locator"`
}

type LocatorConfig struct {
	Gap       int `yaml:"gap" mapstructure:"gap"`
	Height    int `yaml:"height" mapstructure:"height"`
	LeftPad   int `yaml:"leftPad" mapstructure:"leftPad"`
	RightTrim int `yaml:"rightTrim" mapstructure:"rightTrim"`
}

type GraphConfig struct {
	// MaxEdgeDistance is the largest endpoint to node center distance in pixels.
	MaxEdgeDistance float64 `yaml:"maxEdgeDistance" mapstructure:"maxEdgeDistance"`

	// DownFlagScore is the similarity that marks a node as the down site.
	DownFlagScore int `yaml:"downFlagScore" mapstructure:"downFlagScore"`
}

type MatchConfig struct {
	// InclusionScore admits an identifier as a candidate.
	InclusionScore int `yaml:"inclusionScore" mapstructure:"inclusionScore"`

	// AcceptanceScore is required of the best candidate.
	AcceptanceScore int `yaml:"acceptanceScore" mapstructure:"acceptanceScore"`
}

type GNNConfig struct {
	// Endpoint is the model server inference URL.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type ArchiveConfig struct {
	// Enable keeps every image that produced a prediction.
	Enable bool `yaml:"enable" mapstructure:"enable"`

	// Dir defaults to <dataDir>/images.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// New default configuration.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          DefaultServerAddr,
			LogDir:        DefaultLogDir,
			LogMaxSize:    DefaultLogRotateMaxSize,
			LogMaxAge:     DefaultLogRotateMaxAge,
			LogMaxBackups: DefaultLogRotateMaxBackups,
			DataDir:       DefaultDataDir,
		},
		Metrics: MetricsConfig{
			Enable: false,
			Addr:   DefaultMetricsAddr,
		},
		Detector: DetectorConfig{
			ModelPath:      DefaultDetectorModelPath,
			ClassNamesPath: DefaultDetectorClassNamesPath,
			InputSize:      DefaultDetectorInputSize,
			Confidence:     DefaultDetectorConfidence,
			IoU:            DefaultDetectorIoU,
		},
		OCR: OCRConfig{
			Language:  DefaultOCRLanguage,
			Whitelist: DefaultOCRWhitelist,
			BandLower: DefaultOCRBandLower,
			BandUpper: DefaultOCRBandUpper,
			Upscale:   DefaultOCRUpscale,
			Locator: LocatorConfig{
				Gap:       DefaultLocatorGap,
				Height:    DefaultLocatorHeight,
				LeftPad:   DefaultLocatorLeftPad,
				RightTrim: DefaultLocatorRightTrim,
			},
		},
		Graph: GraphConfig{
			MaxEdgeDistance: DefaultGraphMaxEdgeDistance,
			DownFlagScore:   DefaultGraphDownFlagScore,
		},
		Match: MatchConfig{
			InclusionScore:  DefaultMatchInclusionScore,
			AcceptanceScore: DefaultMatchAcceptanceScore,
		},
		GNN: GNNConfig{
			Endpoint: DefaultGNNEndpoint,
			Timeout:  DefaultGNNTimeout,
		},
		Archive: ArchiveConfig{
			Enable: true,
		},
	}
}

// Validate config parameters. Every problem is reported, not just the first.
func (cfg *Config) Validate() error {
	var result *multierror.Error

	if cfg.Server.Addr == "" {
		result = multierror.Append(result, errors.New("server requires parameter addr"))
	}

	if cfg.Metrics.Enable && cfg.Metrics.Addr == "" {
		result = multierror.Append(result, errors.New("metrics requires parameter addr"))
	}

	if cfg.Detector.ModelPath == "" {
		result = multierror.Append(result, errors.New("detector requires parameter modelPath"))
	}
	if cfg.Detector.ClassNamesPath == "" {
		result = multierror.Append(result, errors.New("detector requires parameter classNamesPath"))
	}
	if cfg.Detector.InputSize <= 0 || cfg.Detector.InputSize%32 != 0 {
		result = multierror.Append(result, errors.New("detector requires parameter inputSize to be a positive multiple of 32"))
	}
	if !unit(cfg.Detector.Confidence) {
		result = multierror.Append(result, errors.New("detector requires parameter confidence in [0, 1]"))
	}
	if !unit(cfg.Detector.IoU) {
		result = multierror.Append(result, errors.New("detector requires parameter iou in [0, 1]"))
	}

	if cfg.OCR.Language == "" {
		result = multierror.Append(result, errors.New("ocr requires parameter language"))
	}
	if band := (colorutil.HSVRange{Lower: cfg.OCR.BandLower, Upper: cfg.OCR.BandUpper}); !band.Valid() {
		result = multierror.Append(result, fmt.Errorf("ocr band %v-%v is not a valid hsv range", band.Lower, band.Upper))
	}
	if cfg.OCR.Upscale <= 0 {
		result = multierror.Append(result, errors.New("ocr requires parameter upscale"))
	}
	if cfg.OCR.Locator.Height <= 0 {
		result = multierror.Append(result, errors.New("ocr locator requires parameter height"))
	}

	if cfg.Graph.MaxEdgeDistance <= 0 {
		result = multierror.Append(result, errors.New("graph requires parameter maxEdgeDistance"))
	}
	if !score(cfg.Graph.DownFlagScore) {
		result = multierror.Append(result, errors.New("graph requires parameter downFlagScore in [0, 100]"))
	}

	if !score(cfg.Match.InclusionScore) || !score(cfg.Match.AcceptanceScore) {
		result = multierror.Append(result, errors.New("match requires scores in [0, 100]"))
	}
	if cfg.Match.AcceptanceScore < cfg.Match.InclusionScore {
		result = multierror.Append(result, errors.New("match requires acceptanceScore not below inclusionScore"))
	}

	if u, err := url.Parse(cfg.GNN.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		result = multierror.Append(result, errors.New("gnn requires parameter endpoint to be an absolute url"))
	}
	if cfg.GNN.Timeout <= 0 {
		result = multierror.Append(result, errors.New("gnn requires parameter timeout"))
	}

	if cfg.Archive.Enable && cfg.Archive.Dir == "" && cfg.Server.DataDir == "" {
		result = multierror.Append(result, errors.New("archive requires parameter dir or server.dataDir"))
	}

	return result.ErrorOrNil()
}

// Convert fills values derived from other settings.
func (cfg *Config) Convert() error {
	if cfg.Archive.Dir == "" && cfg.Server.DataDir != "" {
		cfg.Archive.Dir = filepath.Join(cfg.Server.DataDir, "images")
	}

	if cfg.OCR.Whitelist == "" {
		cfg.OCR.Whitelist = DefaultOCRWhitelist
	}

	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

func score(v int) bool {
	return v >= 0 && v <= 100
}
