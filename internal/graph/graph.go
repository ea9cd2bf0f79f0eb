// Package graph builds the node feature matrix and edge tensors the GNN
// consumes from decoded diagram nodes and links.
package graph

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"pof-predictor/internal/logger"
	"pof-predictor/internal/match"
	"pof-predictor/internal/poferrors"
	"pof-predictor/internal/taxonomy"
	"pof-predictor/internal/topology"
	"pof-predictor/pkg/geometry"
)

const (
	// DefaultMaxEdgeDistance is how far, in pixels, a link endpoint may sit
	// from the node center it snaps to.
	DefaultMaxEdgeDistance = 50.0

	// DefaultDownFlagScore is the similarity at which a node is flagged as
	// the reported down site.
	DefaultDownFlagScore = 80
)

// Options tune the builder.
type Options struct {
	MaxEdgeDistance float64 `yaml:"maxEdgeDistance" mapstructure:"maxEdgeDistance"`
	DownFlagScore   int     `yaml:"downFlagScore" mapstructure:"downFlagScore"`
}

// DefaultOptions returns the thresholds the model was trained with.
func DefaultOptions() Options {
	return Options{
		MaxEdgeDistance: DefaultMaxEdgeDistance,
		DownFlagScore:   DefaultDownFlagScore,
	}
}

// Builder turns decoded topology into tensors.
type Builder struct {
	opts Options
}

// NewBuilder returns a Builder using opts.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// NodeTensor holds one feature row per node, in node order.
type NodeTensor struct {
	X       *mat.Dense
	Centers []geometry.Point2D
	IDs     []string
}

// CreateNodeTensor encodes each node as type one-hot, color one-hot and a
// down flag. The flag is set when the node's identifier scores at least
// DownFlagScore against downID.
func (b *Builder) CreateNodeTensor(nodes []topology.Node, downID string) (*NodeTensor, error) {
	if len(nodes) == 0 {
		return nil, poferrors.New(poferrors.KindInvalidImage, "no nodes found")
	}

	width := taxonomy.NodeFeatureWidth
	data := make([]float64, 0, len(nodes)*width)
	for _, n := range nodes {
		data = append(data, n.Type.OneHot()...)
		data = append(data, n.Color.OneHot()...)
		down := 0.0
		if match.Ratio(downID, n.ID) >= b.opts.DownFlagScore {
			down = 1
		}
		data = append(data, down)
	}

	return &NodeTensor{
		X:       mat.NewDense(len(nodes), width, data),
		Centers: topology.Centers(nodes),
		IDs:     topology.IDs(nodes),
	}, nil
}

// EdgeTensor is a directed arc list. Index[0][i] -> Index[1][i] carries
// Attr[i]. Every accepted link appears as two arcs.
type EdgeTensor struct {
	Index [2][]int
	Attr  [][]float64

	// Discarded counts links that did not snap to two distinct nodes.
	Discarded int
}

// Len returns the number of directed arcs.
func (e *EdgeTensor) Len() int {
	return len(e.Index[0])
}

// IndexShape returns the edge_index shape, always [2, E].
func (e *EdgeTensor) IndexShape() [2]int {
	return [2]int{2, e.Len()}
}

// AttrShape returns the edge_attr shape, always [E, EdgeFeatureWidth].
func (e *EdgeTensor) AttrShape() [2]int {
	return [2]int{len(e.Attr), taxonomy.EdgeFeatureWidth}
}

// CreateEdgesTensor snaps both endpoints of every link to the nearest node
// center. A link is kept when both endpoints lie within MaxEdgeDistance and
// resolve to different nodes.
func (b *Builder) CreateEdgesTensor(edges []topology.Edge, centers []geometry.Point2D) *EdgeTensor {
	et := &EdgeTensor{
		Index: [2][]int{{}, {}},
		Attr:  [][]float64{},
	}
	if len(edges) == 0 || len(centers) == 0 {
		et.Discarded = len(edges)
		return et
	}

	for i, e := range edges {
		src, srcDist := e.Endpoints[0].Nearest(centers)
		dst, dstDist := e.Endpoints[1].Nearest(centers)

		switch {
		case srcDist > b.opts.MaxEdgeDistance || dstDist > b.opts.MaxEdgeDistance:
			logger.Debugf("discard link %d: endpoints %.1fpx and %.1fpx from nearest nodes", i, srcDist, dstDist)
			et.Discarded++
			continue
		case src == dst:
			logger.Debugf("discard link %d: both endpoints snap to node %d", i, src)
			et.Discarded++
			continue
		}

		attr := e.Color.OneHot()
		et.Index[0] = append(et.Index[0], src, dst)
		et.Index[1] = append(et.Index[1], dst, src)
		et.Attr = append(et.Attr, attr, append([]float64(nil), attr...))
	}

	if et.Discarded > 0 {
		logger.Warnf("discarded %d of %d links", et.Discarded, len(edges))
	}

	return et
}

// Validate checks the arc list against a graph of numNodes nodes.
func (e *EdgeTensor) Validate(numNodes int) error {
	if len(e.Index[0]) != len(e.Index[1]) {
		return poferrors.Newf(poferrors.KindInternal, "edge_index rows disagree: %d sources, %d targets", len(e.Index[0]), len(e.Index[1]))
	}
	if len(e.Attr) != e.Len() {
		return poferrors.Newf(poferrors.KindInternal, "edge_attr has %d rows for %d arcs", len(e.Attr), e.Len())
	}

	for i := 0; i < e.Len(); i++ {
		src, dst := e.Index[0][i], e.Index[1][i]
		if src < 0 || src >= numNodes || dst < 0 || dst >= numNodes {
			return poferrors.Newf(poferrors.KindInternal, "arc %d (%d->%d) outside %d nodes", i, src, dst, numNodes)
		}
		if src == dst {
			return poferrors.Newf(poferrors.KindInternal, "arc %d is a self-loop on node %d", i, src)
		}
		if len(e.Attr[i]) != taxonomy.EdgeFeatureWidth {
			return poferrors.Newf(poferrors.KindInternal, "arc %d has %d attributes, want %d", i, len(e.Attr[i]), taxonomy.EdgeFeatureWidth)
		}
	}

	return nil
}

// Graph is the unit handed to the GNN.
type Graph struct {
	X         *mat.Dense
	EdgeIndex [2][]int
	EdgeAttr  [][]float64
	NodeIDs   []string
}

// Validate checks that the graph has nodes and consistent shapes.
func (g *Graph) Validate() error {
	if g.X == nil {
		return poferrors.New(poferrors.KindInternal, "graph has no node features")
	}

	rows, cols := g.X.Dims()
	if rows == 0 || rows != len(g.NodeIDs) {
		return poferrors.Newf(poferrors.KindInternal, "graph has %d feature rows for %d node ids", rows, len(g.NodeIDs))
	}
	if cols != taxonomy.NodeFeatureWidth {
		return poferrors.Newf(poferrors.KindInternal, "graph has %d node features, want %d", cols, taxonomy.NodeFeatureWidth)
	}

	et := EdgeTensor{Index: g.EdgeIndex, Attr: g.EdgeAttr}
	return et.Validate(rows)
}

// Build assembles and validates a graph from decoded topology.
func (b *Builder) Build(nodes []topology.Node, edges []topology.Edge, downID string) (*Graph, *EdgeTensor, error) {
	nt, err := b.CreateNodeTensor(nodes, downID)
	if err != nil {
		return nil, nil, err
	}

	et := b.CreateEdgesTensor(edges, nt.Centers)
	g := &Graph{
		X:         nt.X,
		EdgeIndex: et.Index,
		EdgeAttr:  et.Attr,
		NodeIDs:   nt.IDs,
	}
	if err := g.Validate(); err != nil {
		return nil, nil, fmt.Errorf("build graph: %w", err)
	}

	return g, et, nil
}
