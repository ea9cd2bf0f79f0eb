package topology

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"pof-predictor/internal/poferrors"
	"pof-predictor/internal/taxonomy"
	"pof-predictor/pkg/geometry"
)

var names = map[int]string{
	0: "RTN_Green",
	1: "ATN_Red",
	2: "Link_Blue",
	3: "Legend_Green",
}

func detection(classID int, box geometry.Box) Detection {
	return Detection{ClassID: classID, Confidence: 0.9, XYXY: box, XYWH: box.ToRect()}
}

// idsByX names each node after the left edge of its box.
func idsByX(ids map[float64]string) SiteIDReader {
	return SiteIDReaderFunc(func(box geometry.Box) (string, error) {
		return ids[box.XMin], nil
	})
}

func TestDecoder_Decode(t *testing.T) {
	tests := []struct {
		name     string
		result   *DetectionResult
		hasImage bool
		reader   SiteIDReader
		expect   func(t *testing.T, nodes []Node, edges []Edge, unknown []string, err error)
	}{
		{
			name: "nodes and links in detection order",
			result: &DetectionResult{
				Names: names,
				Detections: []Detection{
					detection(0, geometry.NewBox(100, 100, 120, 120)),
					detection(2, geometry.NewBox(120, 108, 200, 112)),
					detection(1, geometry.NewBox(200, 100, 220, 120)),
				},
			},
			hasImage: true,
			reader:   idsByX(map[float64]string{100: "AK0031", 200: "AK0032"}),
			expect: func(t *testing.T, nodes []Node, edges []Edge, unknown []string, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal([]string{"AK0031", "AK0032"}, IDs(nodes))
				assert.Equal(taxonomy.RTN, nodes[0].Type)
				assert.Equal(taxonomy.Green, nodes[0].Color)
				assert.Equal(geometry.NewPoint2D(110, 110), nodes[0].Center)
				assert.Equal(taxonomy.ATN, nodes[1].Type)
				assert.Equal(taxonomy.Red, nodes[1].Color)
				assert.Len(edges, 1)
				assert.Equal(taxonomy.Blue, edges[0].Color)
				assert.Equal([2]geometry.Point2D{{X: 120, Y: 108}, {X: 200, Y: 112}}, edges[0].Endpoints)
				assert.Empty(unknown)
			},
		},
		{
			name: "unknown classes are skipped and reported",
			result: &DetectionResult{
				Names: names,
				Detections: []Detection{
					detection(3, geometry.NewBox(0, 0, 10, 10)),
					detection(0, geometry.NewBox(100, 100, 120, 120)),
					detection(9, geometry.NewBox(0, 0, 10, 10)),
				},
			},
			hasImage: true,
			reader:   idsByX(map[float64]string{100: "AK0031"}),
			expect: func(t *testing.T, nodes []Node, edges []Edge, unknown []string, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Len(nodes, 1)
				assert.Empty(edges)
				assert.Equal([]string{"Legend_Green", ""}, unknown)
			},
		},
		{
			name:     "empty detector output",
			result:   &DetectionResult{Names: names},
			hasImage: true,
			reader:   idsByX(nil),
			expect: func(t *testing.T, nodes []Node, edges []Edge, unknown []string, err error) {
				assert.True(t, poferrors.IsKind(err, poferrors.KindInvalidImage))
			},
		},
		{
			name: "links only",
			result: &DetectionResult{
				Names:      names,
				Detections: []Detection{detection(2, geometry.NewBox(0, 0, 50, 5))},
			},
			hasImage: true,
			reader:   idsByX(nil),
			expect: func(t *testing.T, nodes []Node, edges []Edge, unknown []string, err error) {
				assert := assert.New(t)
				assert.True(poferrors.IsKind(err, poferrors.KindInvalidImage))
				assert.Contains(err.Error(), "no nodes found")
				assert.Nil(nodes)
				assert.Nil(edges)
			},
		},
		{
			name: "engine failure becomes invalid image",
			result: &DetectionResult{
				Names:      names,
				Detections: []Detection{detection(0, geometry.NewBox(100, 100, 120, 120))},
			},
			hasImage: true,
			reader: SiteIDReaderFunc(func(geometry.Box) (string, error) {
				return "", errors.New("tesseract not installed")
			}),
			expect: func(t *testing.T, nodes []Node, edges []Edge, unknown []string, err error) {
				assert.True(t, poferrors.IsKind(err, poferrors.KindInvalidImage))
			},
		},
		{
			name: "classified reader errors pass through",
			result: &DetectionResult{
				Names:      names,
				Detections: []Detection{detection(0, geometry.NewBox(100, 100, 120, 120))},
			},
			hasImage: true,
			reader: SiteIDReaderFunc(func(geometry.Box) (string, error) {
				return "", poferrors.New(poferrors.KindInternal, "boom")
			}),
			expect: func(t *testing.T, nodes []Node, edges []Edge, unknown []string, err error) {
				assert.True(t, poferrors.IsKind(err, poferrors.KindInternal))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var unknown []string
			d := &Decoder{OnUnknownClass: func(name string) { unknown = append(unknown, name) }}
			nodes, edges, err := d.Decode(tc.result, tc.hasImage, tc.reader)
			tc.expect(t, nodes, edges, unknown, err)
		})
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "2 Link_Red, 1 RTN_Green", summarize(map[string]int{"RTN_Green": 1, "Link_Red": 2}))
	assert.Equal(t, "", summarize(nil))
}
