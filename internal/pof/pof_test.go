package pof_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"pof-predictor/internal/archive"
	detectormocks "pof-predictor/internal/detector/mocks"
	"pof-predictor/internal/graph"
	"pof-predictor/internal/pof"
	"pof-predictor/internal/pof/mocks"
	"pof-predictor/internal/poferrors"
	"pof-predictor/internal/predict"
	predictmocks "pof-predictor/internal/predict/mocks"
	"pof-predictor/internal/topology"
	"pof-predictor/pkg/geometry"
)

func diagramPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 320, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func detection(class int, xMin, yMin, xMax, yMax float64) topology.Detection {
	box := geometry.NewBox(xMin, yMin, xMax, yMax)
	return topology.Detection{ClassID: class, Confidence: 0.9, XYXY: box, XYWH: box.ToRect()}
}

// twoSites is a router and an ATN joined by one link.
func twoSites() *topology.DetectionResult {
	return &topology.DetectionResult{
		Names: map[int]string{0: "Router_Green", 1: "ATN_Red", 2: "Link_Blue", 3: "Legend"},
		Detections: []topology.Detection{
			detection(0, 40, 40, 60, 60),
			detection(1, 240, 40, 260, 60),
			detection(2, 50, 50, 250, 50),
			detection(3, 0, 180, 10, 190),
		},
	}
}

var siteIDs = map[float64]string{40: "AK0031", 240: "AK0032"}

type fixture struct {
	detector *detectormocks.MockDetector
	reader   *mocks.MockSiteIDReader
	gnn      *predictmocks.MockGNN
	pipeline *pof.Pipeline
}

func newFixture(ctl *gomock.Controller) *fixture {
	f := &fixture{
		detector: detectormocks.NewMockDetector(ctl),
		reader:   mocks.NewMockSiteIDReader(ctl),
		gnn:      predictmocks.NewMockGNN(ctl),
	}
	f.pipeline = pof.NewPipeline(&pof.Models{
		Detector: f.detector,
		Reader:   f.reader,
		GNN:      f.gnn,
	}, pof.DefaultOptions())
	return f
}

func (f *fixture) expectDecode() {
	f.detector.EXPECT().Predict(gomock.Any(), gomock.Any()).Return(twoSites(), nil).AnyTimes()
	f.reader.EXPECT().ReadSiteID(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ gocv.Mat, box geometry.Box) (string, error) {
			return siteIDs[box.XMin], nil
		}).AnyTimes()
}

func (f *fixture) expectInfer(nodeLogits []float64, graphLogit float64) {
	f.gnn.EXPECT().Infer(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, g *graph.Graph) (*predict.Output, error) {
			if err := g.Validate(); err != nil {
				return nil, err
			}
			return &predict.Output{NodeLogits: nodeLogits, GraphLogit: graphLogit}, nil
		}).AnyTimes()
}

func TestPipeline_Run(t *testing.T) {
	image := diagramPNG(t)

	tests := []struct {
		name   string
		input  *pof.Input
		mock   func(f *fixture)
		expect func(t *testing.T, res *pof.Result, err error)
	}{
		{
			name:  "predicts the most likely node",
			input: &pof.Input{TaskID: "t", OrderID: "o", SiteID: "AK0031", Image: image},
			mock: func(f *fixture) {
				f.expectDecode()
				f.expectInfer([]float64{-2, 3}, 4)
			},
			expect: func(t *testing.T, res *pof.Result, err error) {
				assert := assert.New(t)
				require.NoError(t, err)
				assert.Equal("AK0032", res.Prediction.SiteID)
				assert.False(res.Prediction.Indeterminate)
				assert.InDelta(predict.Sigmoid(3), res.Prediction.Probability, 1e-9)
				assert.Equal("AK0031", res.Match.ID)
				assert.Equal(100, res.Match.Score)
				assert.Equal(2, res.Nodes)
				assert.Equal(1, res.Links)
				assert.Equal(2, res.Arcs)
				assert.Equal("png", res.Image.Format)
			},
		},
		{
			name:  "indeterminate below threshold",
			input: &pof.Input{SiteID: "AK0031", Image: image},
			mock: func(f *fixture) {
				f.expectDecode()
				f.expectInfer([]float64{5, 5}, -1)
			},
			expect: func(t *testing.T, res *pof.Result, err error) {
				require.NoError(t, err)
				assert.True(t, res.Prediction.Indeterminate)
				assert.Equal(t, predict.IndeterminateID, res.Prediction.SiteID)
			},
		},
		{
			name:  "empty image",
			input: &pof.Input{SiteID: "AK0031"},
			mock:  func(f *fixture) {},
			expect: func(t *testing.T, res *pof.Result, err error) {
				assert.Nil(t, res)
				assert.True(t, poferrors.IsKind(err, poferrors.KindInvalidImage))
			},
		},
		{
			name:  "bytes that are not an image",
			input: &pof.Input{SiteID: "AK0031", Image: []byte("not an image")},
			mock:  func(f *fixture) {},
			expect: func(t *testing.T, res *pof.Result, err error) {
				assert.True(t, poferrors.IsKind(err, poferrors.KindInvalidImage))
			},
		},
		{
			name:  "blank site id",
			input: &pof.Input{SiteID: "  ", Image: image},
			mock:  func(f *fixture) {},
			expect: func(t *testing.T, res *pof.Result, err error) {
				assert.True(t, poferrors.IsKind(err, poferrors.KindNoSiteID))
			},
		},
		{
			name:  "site id not in diagram",
			input: &pof.Input{SiteID: "QQ1111", Image: image},
			mock:  func(f *fixture) { f.expectDecode() },
			expect: func(t *testing.T, res *pof.Result, err error) {
				assert.True(t, poferrors.IsKind(err, poferrors.KindSiteIDNotFound))
			},
		},
		{
			name:  "no nodes detected",
			input: &pof.Input{SiteID: "AK0031", Image: image},
			mock: func(f *fixture) {
				f.detector.EXPECT().Predict(gomock.Any(), gomock.Any()).Return(&topology.DetectionResult{}, nil)
			},
			expect: func(t *testing.T, res *pof.Result, err error) {
				assert.True(t, poferrors.IsKind(err, poferrors.KindInvalidImage))
			},
		},
		{
			name:  "detector failure",
			input: &pof.Input{SiteID: "AK0031", Image: image},
			mock: func(f *fixture) {
				f.detector.EXPECT().Predict(gomock.Any(), gomock.Any()).Return(nil, errors.New("forward failed"))
			},
			expect: func(t *testing.T, res *pof.Result, err error) {
				assert := assert.New(t)
				assert.Equal(poferrors.KindUnknown, poferrors.KindOf(err))
				assert.Contains(err.Error(), "forward failed")
			},
		},
		{
			name:  "gnn failure",
			input: &pof.Input{SiteID: "AK0031", Image: image},
			mock: func(f *fixture) {
				f.expectDecode()
				f.gnn.EXPECT().Infer(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
			},
			expect: func(t *testing.T, res *pof.Result, err error) {
				assert.ErrorContains(t, err, "infer: connection refused")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()

			f := newFixture(ctl)
			tc.mock(f)
			res, err := f.pipeline.Run(context.Background(), tc.input)
			tc.expect(t, res, err)
		})
	}
}

func TestPipeline_RunIsRepeatable(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	f := newFixture(ctl)
	f.expectDecode()
	f.expectInfer([]float64{1.5, -0.5}, 2)

	in := &pof.Input{SiteID: "AK0031", Image: diagramPNG(t)}
	first, err := f.pipeline.Run(context.Background(), in)
	require.NoError(t, err)
	second, err := f.pipeline.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestService_Predict(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	f := newFixture(ctl)
	f.expectDecode()
	f.expectInfer([]float64{0, 2}, 1)

	dir := t.TempDir()
	created := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	svc := pof.NewService(f.pipeline,
		pof.WithArchive(archive.New(dir)),
		pof.WithClock(func() time.Time { return created }))

	resp, err := svc.Predict(context.Background(), &pof.Request{
		SiteID:      "AK0031",
		OrderID:     "WO-1",
		ImageBase64: base64.StdEncoding.EncodeToString(diagramPNG(t)),
	})
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal("AK0031", resp.SiteID)
	assert.Equal("WO-1", resp.OrderID)
	assert.Equal("AK0032", resp.POF)
	assert.Equal(pof.Certainty(predict.Sigmoid(2)), resp.Certainty)
	assert.NotEmpty(resp.TaskID)
	assert.Equal(created, resp.CreatedAt)

	records, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec, err := archive.Load(records[0])
	require.NoError(t, err)
	assert.Equal(resp.TaskID, rec.TaskID)
	assert.Equal("AK0032", rec.POF)
	_, err = os.Stat(rec.GetImagePath(records[0]))
	assert.NoError(err)
}

func TestService_PredictRejectsBadBase64(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	svc := pof.NewService(newFixture(ctl).pipeline)
	_, err := svc.Predict(context.Background(), &pof.Request{
		SiteID:      "AK0031",
		OrderID:     "WO-1",
		ImageBase64: "%%%",
	})
	assert.True(t, poferrors.IsKind(err, poferrors.KindInvalidImage))
}

func TestCertainty(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(88.08, pof.Certainty(0.880797))
	assert.Equal(50.0, pof.Certainty(0.5))
	assert.Equal(100.0, pof.Certainty(1))
}

func TestModels_Validate(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	f := newFixture(ctl)
	assert := assert.New(t)
	assert.NoError((&pof.Models{Detector: f.detector, Reader: f.reader, GNN: f.gnn}).Validate())
	assert.EqualError((&pof.Models{Reader: f.reader, GNN: f.gnn}).Validate(), "models require a detector")
	assert.EqualError((&pof.Models{Detector: f.detector, GNN: f.gnn}).Validate(), "models require a site id reader")
	assert.EqualError((&pof.Models{Detector: f.detector, Reader: f.reader}).Validate(), "models require a gnn")
	assert.NoError((&pof.Models{}).Close())
}
