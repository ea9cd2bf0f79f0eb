// Package server runs the prediction API and its metrics endpoint.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"pof-predictor/internal/archive"
	"pof-predictor/internal/config"
	"pof-predictor/internal/graph"
	"pof-predictor/internal/logger"
	"pof-predictor/internal/match"
	"pof-predictor/internal/metrics"
	"pof-predictor/internal/pof"
)

const gracefulStopTimeout = 10 * time.Second

type Server struct {
	config *config.Config

	models *pof.Models

	// API server.
	apiServer *http.Server

	// Metrics server, nil when disabled.
	metricsServer *http.Server
}

// New loads the models and prepares both servers.
func New(cfg *config.Config) (*Server, error) {
	models, err := pof.LoadModels(cfg)
	if err != nil {
		return nil, err
	}

	s, err := newWithModels(cfg, models)
	if err != nil {
		models.Close()
		return nil, err
	}
	return s, nil
}

func newWithModels(cfg *config.Config, models *pof.Models) (*Server, error) {
	if err := models.Validate(); err != nil {
		return nil, err
	}

	router, err := Init(cfg.Verbose, cfg.Metrics.Enable, NewService(cfg, models))
	if err != nil {
		return nil, err
	}

	s := &Server{
		config: cfg,
		models: models,
		apiServer: &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: router,
		},
	}

	if cfg.Metrics.Enable {
		s.metricsServer = metrics.New(&metrics.Config{
			Enable: cfg.Metrics.Enable,
			Addr:   cfg.Metrics.Addr,
		})
	}

	return s, nil
}

// NewService wires the prediction service from configuration.
func NewService(cfg *config.Config, models *pof.Models) pof.Service {
	matcher := match.New()
	matcher.InclusionScore = cfg.Match.InclusionScore
	matcher.AcceptanceScore = cfg.Match.AcceptanceScore

	pipeline := pof.NewPipeline(models, pof.Options{
		Graph: graph.Options{
			MaxEdgeDistance: cfg.Graph.MaxEdgeDistance,
			DownFlagScore:   cfg.Graph.DownFlagScore,
		},
		Match: *matcher,
	})

	var options []pof.Option
	if cfg.Archive.Enable {
		options = append(options, pof.WithArchive(archive.New(cfg.Archive.Dir)))
	}
	return pof.NewService(pipeline, options...)
}

// Serve blocks until ctx is done or a server fails.
func (s *Server) Serve(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logger.Infof("started api server at %s", s.apiServer.Addr)
		return listen(s.apiServer)
	})

	if s.metricsServer != nil {
		eg.Go(func() error {
			logger.Infof("started metrics server at %s", s.metricsServer.Addr)
			return listen(s.metricsServer)
		})
	}

	eg.Go(func() error {
		<-ctx.Done()
		s.Stop()
		return nil
	})

	return eg.Wait()
}

func listen(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts both servers down and releases the models.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), gracefulStopTimeout)
	defer cancel()

	if err := s.apiServer.Shutdown(ctx); err != nil {
		logger.Errorf("api server failed to stop: %+v", err)
	}
	logger.Info("api server closed under request")

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			logger.Errorf("metrics server failed to stop: %+v", err)
		}
		logger.Info("metrics server closed under request")
	}

	if err := s.models.Close(); err != nil {
		logger.Errorf("release models: %v", err)
	}
}
