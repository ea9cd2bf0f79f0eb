package pof

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"pof-predictor/internal/archive"
	"pof-predictor/internal/imageio"
	"pof-predictor/internal/logger"
	"pof-predictor/internal/metrics"
	"pof-predictor/internal/poferrors"
)

//go:generate mockgen -destination mocks/service_mock.go -source service.go -package mocks

// Request is the prediction API input.
type Request struct {
	SiteID      string `json:"site_id" binding:"required,notblank"`
	OrderID     string `json:"order_id" binding:"required,notblank"`
	ImageBase64 string `json:"image_base64" binding:"required,base64"`
}

// Response is the prediction API output. Certainty is a percentage.
type Response struct {
	SiteID    string    `json:"site_id"`
	OrderID   string    `json:"order_id"`
	POF       string    `json:"pof"`
	Certainty float64   `json:"certainty"`
	TaskID    string    `json:"task_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Service answers prediction requests.
type Service interface {
	Predict(ctx context.Context, req *Request) (*Response, error)
}

type service struct {
	pipeline *Pipeline
	archive  *archive.Archive
	now      func() time.Time
}

// Option configures the service.
type Option func(*service)

// WithArchive stores every image that produced a prediction.
func WithArchive(a *archive.Archive) Option {
	return func(s *service) {
		s.archive = a
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// NewService returns a Service running pipeline.
func NewService(pipeline *Pipeline, options ...Option) Service {
	s := &service{
		pipeline: pipeline,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *service) Predict(ctx context.Context, req *Request) (*Response, error) {
	taskID := uuid.NewString()
	log := logger.WithRequest(taskID, req.OrderID, req.SiteID)

	image, err := imageio.DecodeBase64(req.ImageBase64)
	if err != nil {
		metrics.PredictCount.WithLabelValues(metrics.ResultFailed).Inc()
		metrics.PredictFailureCount.WithLabelValues(poferrors.KindOf(err).String(), "Request").Inc()
		log.Warnf("reject request: %v", err)
		return nil, err
	}

	res, err := s.pipeline.Run(ctx, &Input{
		TaskID:  taskID,
		OrderID: req.OrderID,
		SiteID:  req.SiteID,
		Image:   image,
	})
	if err != nil {
		metrics.PredictCount.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, err
	}

	resp := &Response{
		SiteID:    req.SiteID,
		OrderID:   req.OrderID,
		POF:       res.Prediction.SiteID,
		Certainty: Certainty(res.Prediction.Probability),
		TaskID:    taskID,
		CreatedAt: s.now().UTC(),
	}

	if res.Prediction.Indeterminate {
		metrics.PredictCount.WithLabelValues(metrics.ResultIndeterminate).Inc()
	} else {
		metrics.PredictCount.WithLabelValues(metrics.ResultPOF).Inc()
	}

	if s.archive != nil {
		s.save(log, resp, res, image)
	}

	return resp, nil
}

// save archives the image. Failures are logged and never reach the caller.
func (s *service) save(log *logger.SugaredLoggerOnWith, resp *Response, res *Result, image []byte) {
	path, err := s.archive.Save(&archive.Record{
		TaskID:    resp.TaskID,
		OrderID:   resp.OrderID,
		SiteID:    resp.SiteID,
		POF:       resp.POF,
		Certainty: resp.Certainty,
		Format:    res.Image.Format,
		Created:   resp.CreatedAt,
	}, image)
	if err != nil {
		metrics.ArchiveFailureCount.Inc()
		log.Warnf("archive image: %v", err)
		return
	}
	log.Debugf("archived image at %s", path)
}

// Certainty converts a probability to a percentage with two decimals.
func Certainty(p float64) float64 {
	return math.RoundToEven(p*100*100) / 100
}
