// Package topology turns raw detector output for one diagram into typed node
// and link records.
package topology

import (
	"pof-predictor/internal/taxonomy"
	"pof-predictor/pkg/geometry"
)

// Detection is one box reported by the detector. Confidence has already
// passed the detector's own threshold.
type Detection struct {
	ClassID    int           `json:"class_id"`
	Confidence float64       `json:"confidence"`
	XYXY       geometry.Box  `json:"xyxy"`
	XYWH       geometry.Rect `json:"xywh"`
}

// DetectionResult is the detector output for a single image.
type DetectionResult struct {
	// Names maps class ids to class names such as "RTN_Green".
	Names      map[int]string `json:"names"`
	Detections []Detection    `json:"detections"`
}

// ClassName returns the name of a detection's class.
func (r *DetectionResult) ClassName(d Detection) string {
	return r.Names[d.ClassID]
}

// Node is a network element glyph with the site identifier printed under it.
type Node struct {
	// ID is whatever OCR read, possibly garbage or a sentinel.
	ID     string
	Type   taxonomy.NodeType
	Color  taxonomy.Color
	Center geometry.Point2D
	BBox   geometry.Box
}

// Edge is a link glyph. Endpoints are the corners of its detection box.
type Edge struct {
	Color     taxonomy.Color
	Endpoints [2]geometry.Point2D
}

// Centers returns the node centers in node order.
func Centers(nodes []Node) []geometry.Point2D {
	centers := make([]geometry.Point2D, len(nodes))
	for i, n := range nodes {
		centers[i] = n.Center
	}
	return centers
}

// IDs returns the node identifiers in node order.
func IDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
