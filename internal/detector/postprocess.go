package detector

import (
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"

	"pof-predictor/internal/topology"
	"pof-predictor/pkg/geometry"
)

// decodeOutput reads a YOLOv8 head laid out as [4+classes, proposals]
// (cx, cy, w, h, score per class) and keeps proposals whose best class
// score exceeds minScore. Boxes are scaled from network input to image pixels.
func decodeOutput(data []float32, classes, proposals int, xFactor, yFactor, minScore float64) ([]topology.Detection, error) {
	if want := (4 + classes) * proposals; len(data) != want {
		return nil, fmt.Errorf("detector output has %d values, want %d", len(data), want)
	}

	at := func(channel, i int) float64 {
		return float64(data[channel*proposals+i])
	}

	var dets []topology.Detection
	for i := 0; i < proposals; i++ {
		classID, score := -1, 0.0
		for c := 0; c < classes; c++ {
			if s := at(4+c, i); classID < 0 || s > score {
				classID, score = c, s
			}
		}
		if score <= minScore {
			continue
		}

		rect := geometry.NewRect(at(0, i)*xFactor, at(1, i)*yFactor, at(2, i)*xFactor, at(3, i)*yFactor)
		dets = append(dets, topology.Detection{
			ClassID:    classID,
			Confidence: score,
			XYXY:       rect.ToBox(),
			XYWH:       rect,
		})
	}

	return dets, nil
}

// nms runs OpenCV non-maximum suppression separately for every class, so a
// link never suppresses the node it touches. Survivors are ordered by
// descending score.
func nms(dets []topology.Detection, iou float64) []topology.Detection {
	var classes []int
	members := map[int][]int{}
	for i, d := range dets {
		if _, ok := members[d.ClassID]; !ok {
			classes = append(classes, d.ClassID)
		}
		members[d.ClassID] = append(members[d.ClassID], i)
	}

	kept := make([]topology.Detection, 0, len(dets))
	for _, class := range classes {
		idx := members[class]
		boxes := make([]image.Rectangle, len(idx))
		scores := make([]float32, len(idx))
		for j, i := range idx {
			boxes[j] = dets[i].XYXY.Pixels()
			scores[j] = float32(dets[i].Confidence)
		}

		// NMSBoxes fills a prefix of indices; -1 marks the unused tail.
		indices := make([]int, len(idx))
		for j := range indices {
			indices[j] = -1
		}
		gocv.NMSBoxes(boxes, scores, 0, float32(iou), indices)

		for _, j := range indices {
			if j < 0 {
				break
			}
			kept = append(kept, dets[idx[j]])
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Confidence > kept[j].Confidence
	})
	return kept
}
