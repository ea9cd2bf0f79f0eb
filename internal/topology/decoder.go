package topology

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"pof-predictor/internal/logger"
	"pof-predictor/internal/poferrors"
	"pof-predictor/internal/taxonomy"
	"pof-predictor/pkg/geometry"
)

// SiteIDReader reads the identifier printed next to a node box.
type SiteIDReader interface {
	ReadSiteID(box geometry.Box) (string, error)
}

// SiteIDReaderFunc adapts a function to SiteIDReader.
type SiteIDReaderFunc func(box geometry.Box) (string, error)

func (f SiteIDReaderFunc) ReadSiteID(box geometry.Box) (string, error) {
	return f(box)
}

// Decoder classifies detections into nodes and edges.
type Decoder struct {
	// OnUnknownClass, if set, is called for every detection whose class is
	// outside the taxonomy. Such detections are skipped.
	OnUnknownClass func(name string)
}

// NewDecoder returns a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode classifies every detection in iteration order. Node identifiers come
// from reader. hasImage tells an empty result for a real image apart from a
// missing image.
func (d *Decoder) Decode(result *DetectionResult, hasImage bool, reader SiteIDReader) ([]Node, []Edge, error) {
	if result == nil || len(result.Detections) == 0 {
		if hasImage {
			return nil, nil, poferrors.New(poferrors.KindInvalidImage, "nothing detected in image")
		}
		return nil, nil, poferrors.New(poferrors.KindInvalidImage, "no image")
	}

	var (
		nodes  []Node
		edges  []Edge
		counts = map[string]int{}
	)

	for _, det := range result.Detections {
		name := result.ClassName(det)
		class, err := taxonomy.ParseClass(name)
		if err != nil {
			logger.With("class", name, "classID", det.ClassID).Warnf("skip detection: %s", err)
			if d.OnUnknownClass != nil {
				d.OnUnknownClass(name)
			}
			continue
		}
		counts[name]++

		switch class.Kind {
		case taxonomy.ClassLink:
			edges = append(edges, Edge{
				Color:     class.Color,
				Endpoints: [2]geometry.Point2D{det.XYXY.TopLeft(), det.XYXY.BottomRight()},
			})
		case taxonomy.ClassNode:
			id, err := reader.ReadSiteID(det.XYXY)
			if err != nil {
				return nil, nil, readError(err)
			}
			nodes = append(nodes, Node{
				ID:     id,
				Type:   class.Type,
				Color:  class.Color,
				Center: det.XYWH.Center(),
				BBox:   det.XYXY,
			})
		}
	}

	logger.Infof("detections: %s", summarize(counts))

	if len(nodes) == 0 {
		return nil, nil, poferrors.New(poferrors.KindInvalidImage, "no nodes found")
	}

	return nodes, edges, nil
}

// readError keeps classified reader failures and files everything else,
// including an unavailable OCR engine, under InvalidImage.
func readError(err error) error {
	var perr *poferrors.Error
	if errors.As(err, &perr) {
		return err
	}
	return poferrors.Wrap(poferrors.KindInvalidImage, err, "read site id")
}

// summarize renders class counts as "2 Link_Red, 1 RTN_Green".
func summarize(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%d %s", counts[name], name)
	}
	return strings.Join(parts, ", ")
}
