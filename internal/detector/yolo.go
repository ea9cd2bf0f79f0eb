package detector

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"pof-predictor/internal/logger"
	"pof-predictor/internal/topology"
)

// Config locates the model and sets its decoding thresholds.
type Config struct {
	// ModelPath is a YOLOv8 network exported to ONNX.
	ModelPath string `yaml:"modelPath" mapstructure:"modelPath"`

	// ClassNamesPath lists one class name per line, in class id order.
	ClassNamesPath string `yaml:"classNamesPath" mapstructure:"classNamesPath"`

	// InputSize is the square network input edge in pixels.
	InputSize int `yaml:"inputSize" mapstructure:"inputSize"`

	Confidence float64 `yaml:"confidence" mapstructure:"confidence"`
	IoU        float64 `yaml:"iou" mapstructure:"iou"`
}

// YOLO runs a YOLOv8 ONNX network through OpenCV's DNN module.
type YOLO struct {
	cfg   Config
	names map[int]string

	// mu serializes forward passes; a gocv Net holds per-call state.
	mu  sync.Mutex
	net gocv.Net
}

// NewYOLO loads the network and its class names.
func NewYOLO(cfg Config) (*YOLO, error) {
	names, err := loadClassNames(cfg.ClassNamesPath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("detector model: %w", err)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load detector model from %s", cfg.ModelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, fmt.Errorf("set detector backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, fmt.Errorf("set detector target: %w", err)
	}

	logger.Infof("loaded detector %s with %d classes", cfg.ModelPath, len(names))
	return &YOLO{cfg: cfg, names: names, net: net}, nil
}

// Close releases the network.
func (y *YOLO) Close() error {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.net.Close()
}

// Names returns the class id to name table.
func (y *YOLO) Names() map[int]string {
	return y.names
}

func (y *YOLO) Predict(ctx context.Context, img gocv.Mat) (*topology.DetectionResult, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := image.Pt(y.cfg.InputSize, y.cfg.InputSize)
	blob := gocv.BlobFromImage(img, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	y.mu.Lock()
	y.net.SetInput(blob, "")
	out := y.net.Forward("")
	y.mu.Unlock()
	defer out.Close()

	dims := out.Size()
	if len(dims) != 3 || dims[1] != 4+len(y.names) {
		return nil, fmt.Errorf("unexpected detector output shape %v for %d classes", dims, len(y.names))
	}

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read detector output: %w", err)
	}

	xFactor := float64(img.Cols()) / float64(y.cfg.InputSize)
	yFactor := float64(img.Rows()) / float64(y.cfg.InputSize)
	dets, err := decodeOutput(data, len(y.names), dims[2], xFactor, yFactor, y.cfg.Confidence)
	if err != nil {
		return nil, err
	}

	return &topology.DetectionResult{
		Names:      y.names,
		Detections: nms(dets, y.cfg.IoU),
	}, nil
}

func loadClassNames(path string) (map[int]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class list: %w", err)
	}
	defer f.Close()

	names := map[int]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names[len(names)] = name
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read class list: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("class list %s is empty", path)
	}

	return names, nil
}
