// Command ocrprobe runs detection and label OCR on one diagram and prints the
// site id read for every node. It is meant for tuning the label locator and
// color band against new diagram styles.
//
// Usage: ocrprobe [options] <diagram.png>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gocv.io/x/gocv"

	"pof-predictor/internal/config"
	"pof-predictor/internal/detector"
	"pof-predictor/internal/imageio"
	"pof-predictor/internal/ocr"
	"pof-predictor/internal/taxonomy"
	"pof-predictor/internal/topology"
	"pof-predictor/pkg/colorutil"
	"pof-predictor/pkg/geometry"
)

// Probe is the OCR outcome for one node.
type Probe struct {
	Class      string       `json:"class"`
	Confidence float64      `json:"confidence"`
	Box        geometry.Box `json:"box"`
	SiteID     string       `json:"site_id"`
	LabelPath  string       `json:"label_path,omitempty"`
}

var (
	flagModel   = flag.String("model", config.DefaultDetectorModelPath, "Detector ONNX model")
	flagClasses = flag.String("classes", config.DefaultDetectorClassNamesPath, "Detector class names, one per line")
	flagSize    = flag.Int("size", config.DefaultDetectorInputSize, "Detector input size")
	flagConf    = flag.Float64("conf", config.DefaultDetectorConfidence, "Detector confidence threshold")
	flagLang    = flag.String("lang", config.DefaultOCRLanguage, "Tesseract language")
	flagSatMin  = flag.Float64("sat-min", colorutil.LabelBand.Lower[1], "Minimum label saturation")
	flagValMin  = flag.Float64("val-min", colorutil.LabelBand.Lower[2], "Minimum label value")
	flagScale   = flag.Float64("scale", ocr.DefaultUpscale, "Label upscale factor")
	flagDebug   = flag.String("debug-dir", "", "Save every binarized label to this directory")
	flagJSON    = flag.String("json", "", "Output results to JSON file")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <diagram.png>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	probes, err := run(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printProbes(probes)

	if *flagJSON != "" {
		if err := outputJSON(probes, *flagJSON); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nResults written to: %s\n", *flagJSON)
	}
}

func run(path string) ([]Probe, error) {
	data, err := imageio.Load(path)
	if err != nil {
		return nil, err
	}
	img, info, err := imageio.Decode(data)
	defer img.Close()
	if err != nil {
		return nil, err
	}
	fmt.Printf("Loaded %s: %dx%d %s\n", path, info.Width, info.Height, info.Format)

	yolo, err := detector.NewYOLO(detector.Config{
		ModelPath:      *flagModel,
		ClassNamesPath: *flagClasses,
		InputSize:      *flagSize,
		Confidence:     *flagConf,
		IoU:            config.DefaultDetectorIoU,
	})
	if err != nil {
		return nil, err
	}
	defer yolo.Close()

	cfg := ocr.DefaultEngineConfig()
	cfg.Language = *flagLang
	engine, err := ocr.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	band := colorutil.LabelBand
	band.Lower[1], band.Lower[2] = *flagSatMin, *flagValMin
	if !band.Valid() {
		return nil, fmt.Errorf("invalid color band %v", band)
	}
	reader := ocr.NewReader(ocr.ReaderConfig{Locator: ocr.DefaultLocator, Band: band, Upscale: *flagScale}, engine)

	result, err := yolo.Predict(context.Background(), img)
	if err != nil {
		return nil, err
	}

	if *flagDebug != "" {
		if err := os.MkdirAll(*flagDebug, 0755); err != nil {
			return nil, err
		}
	}

	var probes []Probe
	for i, det := range result.Detections {
		name := result.ClassName(det)
		class, err := taxonomy.ParseClass(name)
		if err != nil || class.Kind != taxonomy.ClassNode {
			continue
		}

		probe := Probe{Class: name, Confidence: det.Confidence, Box: det.XYXY}
		probe.SiteID, err = reader.ReadSiteID(img, det.XYXY)
		if err != nil {
			return nil, fmt.Errorf("read %s at %v: %w", name, det.XYXY, err)
		}
		if *flagDebug != "" {
			probe.LabelPath, err = saveLabel(reader, img, det, filepath.Join(*flagDebug, fmt.Sprintf("%03d_%s.png", i, name)))
			if err != nil {
				return nil, err
			}
		}
		probes = append(probes, probe)
	}

	sort.SliceStable(probes, func(i, j int) bool {
		if probes[i].Box.YMin != probes[j].Box.YMin {
			return probes[i].Box.YMin < probes[j].Box.YMin
		}
		return probes[i].Box.XMin < probes[j].Box.XMin
	})
	return probes, nil
}

func saveLabel(reader *ocr.Reader, img gocv.Mat, det topology.Detection, path string) (string, error) {
	label, err := reader.Crop(img, det.XYXY)
	if err != nil || label == nil {
		return "", err
	}
	return path, os.WriteFile(path, label.PNG, 0644)
}

func printProbes(probes []Probe) {
	fmt.Printf("\n%-16s %6s  %-28s %s\n", "CLASS", "CONF", "BOX", "SITE ID")
	for _, p := range probes {
		fmt.Printf("%-16s %6.2f  (%4.0f,%4.0f)-(%4.0f,%4.0f)    %s\n",
			p.Class, p.Confidence, p.Box.XMin, p.Box.YMin, p.Box.XMax, p.Box.YMax, p.SiteID)
	}

	var unread int
	for _, p := range probes {
		if p.SiteID == ocr.InvalidID || p.SiteID == ocr.OutOfBoundsID {
			unread++
		}
	}
	fmt.Printf("\n%d nodes, %d unread\n", len(probes), unread)
}

func outputJSON(probes []Probe, path string) error {
	data, err := json.MarshalIndent(probes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
