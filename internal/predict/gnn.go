package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gonum.org/v1/gonum/mat"

	"pof-predictor/internal/graph"
	"pof-predictor/internal/poferrors"
)

//go:generate mockgen -destination mocks/gnn_mock.go -source gnn.go -package mocks

// GNN scores every node of a graph and the graph as a whole.
type GNN interface {
	// Infer runs a forward pass. It must accept graphs without edges.
	Infer(ctx context.Context, g *graph.Graph) (*Output, error)
}

// Output holds the raw logits of both model heads.
type Output struct {
	NodeLogits []float64 `json:"pof_logits"`
	GraphLogit float64   `json:"has_pof_logit"`
}

// inferRequest is the model server's input document.
type inferRequest struct {
	X             [][]float64 `json:"x"`
	EdgeIndex     [2][]int    `json:"edge_index"`
	EdgeAttr      [][]float64 `json:"edge_attr"`
	InferenceOnly bool        `json:"inference_only"`
}

func newInferRequest(g *graph.Graph) *inferRequest {
	rows, _ := g.X.Dims()
	x := make([][]float64, rows)
	for i := range x {
		x[i] = mat.Row(nil, i, g.X)
	}

	req := &inferRequest{
		X:             x,
		EdgeIndex:     g.EdgeIndex,
		EdgeAttr:      g.EdgeAttr,
		InferenceOnly: true,
	}
	for i := range req.EdgeIndex {
		if req.EdgeIndex[i] == nil {
			req.EdgeIndex[i] = []int{}
		}
	}
	if req.EdgeAttr == nil {
		req.EdgeAttr = [][]float64{}
	}
	return req
}

// RemoteGNN calls a model server over HTTP.
type RemoteGNN struct {
	endpoint   string
	httpClient *http.Client
}

// NewRemoteGNN returns a client posting graphs to endpoint.
func NewRemoteGNN(endpoint string, timeout time.Duration) *RemoteGNN {
	return &RemoteGNN{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Infer posts the graph to the model server and returns both heads' logits.
func (r *RemoteGNN) Infer(ctx context.Context, g *graph.Graph) (*Output, error) {
	body, err := json.Marshal(newInferRequest(g))
	if err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call model server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("model server returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var out Output
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}

	if len(out.NodeLogits) != len(g.NodeIDs) {
		return nil, poferrors.Newf(poferrors.KindInternal, "model returned %d node logits for %d nodes", len(out.NodeLogits), len(g.NodeIDs))
	}

	return &out, nil
}
