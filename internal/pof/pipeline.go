package pof

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/looplab/fsm"
	"gocv.io/x/gocv"

	"pof-predictor/internal/graph"
	"pof-predictor/internal/imageio"
	"pof-predictor/internal/logger"
	"pof-predictor/internal/match"
	"pof-predictor/internal/metrics"
	"pof-predictor/internal/poferrors"
	"pof-predictor/internal/predict"
	"pof-predictor/internal/topology"
	"pof-predictor/pkg/geometry"
)

// Pipeline states.
const (
	StateValidating    = "Validating"
	StateDetecting     = "Detecting"
	StateDecoding      = "Decoding"
	StateBuildingGraph = "BuildingGraph"
	StateMatching      = "Matching"
	StateInferring     = "Inferring"
	StateInterpreting  = "Interpreting"
	StateDone          = "Done"
	StateFailed        = "Failed"
)

// Pipeline events.
const (
	EventDetect    = "Detect"
	EventDecode    = "Decode"
	EventBuild     = "Build"
	EventMatch     = "Match"
	EventInfer     = "Infer"
	EventInterpret = "Interpret"
	EventFinish    = "Finish"
	EventFail      = "Fail"
)

// Options tune the deterministic stages.
type Options struct {
	Graph graph.Options
	Match match.Matcher
}

// DefaultOptions returns the thresholds the models were trained with.
func DefaultOptions() Options {
	return Options{
		Graph: graph.DefaultOptions(),
		Match: *match.New(),
	}
}

// Input is one prediction request.
type Input struct {
	TaskID  string
	OrderID string
	SiteID  string
	Image   []byte
}

// Result is a finished prediction.
type Result struct {
	Prediction predict.Prediction
	Match      match.Candidate
	Image      imageio.Info
	Nodes      int
	Links      int
	Arcs       int
}

// Pipeline runs validation, detection, decoding, graph building, matching,
// inference and interpretation in order. Any failing stage ends the run.
type Pipeline struct {
	models  *Models
	decoder *topology.Decoder
	builder *graph.Builder
	matcher *match.Matcher
}

// NewPipeline returns a Pipeline over shared models.
func NewPipeline(models *Models, opts Options) *Pipeline {
	matcher := opts.Match
	return &Pipeline{
		models: models,
		decoder: &topology.Decoder{
			OnUnknownClass: func(name string) {
				metrics.UnknownClassCount.WithLabelValues(name).Inc()
			},
		},
		builder: graph.NewBuilder(opts.Graph),
		matcher: &matcher,
	}
}

func newFSM(log *logger.SugaredLoggerOnWith) *fsm.FSM {
	running := []string{
		StateValidating, StateDetecting, StateDecoding, StateBuildingGraph,
		StateMatching, StateInferring, StateInterpreting,
	}

	return fsm.NewFSM(
		StateValidating,
		fsm.Events{
			{Name: EventDetect, Src: []string{StateValidating}, Dst: StateDetecting},
			{Name: EventDecode, Src: []string{StateDetecting}, Dst: StateDecoding},
			{Name: EventBuild, Src: []string{StateDecoding}, Dst: StateBuildingGraph},
			{Name: EventMatch, Src: []string{StateBuildingGraph}, Dst: StateMatching},
			{Name: EventInfer, Src: []string{StateMatching}, Dst: StateInferring},
			{Name: EventInterpret, Src: []string{StateInferring}, Dst: StateInterpreting},
			{Name: EventFinish, Src: []string{StateInterpreting}, Dst: StateDone},
			{Name: EventFail, Src: running, Dst: StateFailed},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) {
				log.Debugf("pipeline %s -> %s", e.Src, e.Dst)
			},
		},
	)
}

// run is the state of one pipeline invocation.
type run struct {
	fsm *fsm.FSM
	log *logger.SugaredLoggerOnWith
}

// stage runs fn in the current state and, on success, fires next.
func (r *run) stage(fn func() error, next string) error {
	state := r.fsm.Current()
	start := time.Now()
	err := fn()
	metrics.StageDuration.WithLabelValues(state).Observe(time.Since(start).Seconds())

	if err != nil {
		kind := poferrors.KindOf(err)
		metrics.PredictFailureCount.WithLabelValues(kind.String(), state).Inc()
		if ferr := r.fsm.Event(EventFail); ferr != nil {
			r.log.Errorf("fail transition from %s: %v", state, ferr)
		}
		if kind.UserFacing() {
			r.log.Warnf("%s failed: %v", state, err)
		} else {
			r.log.Errorf("%s failed: %v", state, err)
		}
		return err
	}

	if err := r.fsm.Event(next); err != nil {
		return poferrors.Wrap(poferrors.KindInternal, err, fmt.Sprintf("transition %s from %s", next, state))
	}
	return nil
}

// Run predicts the point of failure for one diagram.
func (p *Pipeline) Run(ctx context.Context, in *Input) (*Result, error) {
	log := logger.WithRequest(in.TaskID, in.OrderID, in.SiteID)
	r := &run{fsm: newFSM(log), log: log}
	res := &Result{}

	var (
		img       = gocv.NewMat()
		detection *topology.DetectionResult
		nodes     []topology.Node
		edges     []topology.Edge
		g         *graph.Graph
		out       *predict.Output
	)
	defer func() { img.Close() }()

	stages := []struct {
		fn   func() error
		next string
	}{
		{func() error {
			if len(in.Image) == 0 {
				return poferrors.New(poferrors.KindInvalidImage, "image is empty")
			}
			if strings.TrimSpace(in.SiteID) == "" {
				return poferrors.New(poferrors.KindNoSiteID, "site id is empty")
			}

			decoded, info, err := imageio.Decode(in.Image)
			img.Close()
			img = decoded
			res.Image = info
			return err
		}, EventDetect},
		{func() (err error) {
			detection, err = p.models.Detector.Predict(ctx, img)
			if err != nil {
				return fmt.Errorf("detect: %w", err)
			}
			return nil
		}, EventDecode},
		{func() (err error) {
			reader := topology.SiteIDReaderFunc(func(box geometry.Box) (string, error) {
				return p.models.Reader.ReadSiteID(img, box)
			})
			nodes, edges, err = p.decoder.Decode(detection, true, reader)
			res.Nodes, res.Links = len(nodes), len(edges)
			return err
		}, EventBuild},
		{func() error {
			built, et, err := p.builder.Build(nodes, edges, in.SiteID)
			if err != nil {
				return err
			}
			g = built
			res.Arcs = et.Len()
			metrics.NodeCount.Observe(float64(len(nodes)))
			metrics.EdgeCount.WithLabelValues("accepted").Add(float64(et.Len() / 2))
			metrics.EdgeCount.WithLabelValues("discarded").Add(float64(et.Discarded))
			return nil
		}, EventMatch},
		{func() (err error) {
			res.Match, err = p.matcher.Match(in.SiteID, g.NodeIDs)
			if err == nil {
				log.Infof("site %s matched %s (%d%%)", in.SiteID, res.Match.ID, res.Match.Score)
			}
			return err
		}, EventInfer},
		{func() (err error) {
			out, err = p.models.GNN.Infer(ctx, g)
			if err != nil {
				return fmt.Errorf("infer: %w", err)
			}
			return nil
		}, EventInterpret},
		{func() (err error) {
			res.Prediction, err = predict.Interpret(out.NodeLogits, out.GraphLogit, g.NodeIDs)
			return err
		}, EventFinish},
	}

	for _, s := range stages {
		if err := r.stage(s.fn, s.next); err != nil {
			return nil, err
		}
	}

	log.Infof("pof %s with probability %.4f over %d nodes and %d arcs",
		res.Prediction.SiteID, res.Prediction.Probability, res.Nodes, res.Arcs)
	return res, nil
}
