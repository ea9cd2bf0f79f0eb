// Package metrics registers the Prometheus collectors of the prediction service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pof-predictor/internal/version"
)

const (
	Namespace = "pof"
	Subsystem = "predictor"
)

// Result label values of PredictCount.
const (
	ResultPOF           = "pof"
	ResultIndeterminate = "indeterminate"
	ResultFailed        = "failed"
)

// Variables declared for metrics.
var (
	PredictCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "predict_total",
		Help:      "Counter of the number of predictions by result.",
	}, []string{"result"})

	PredictFailureCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "predict_failure_total",
		Help:      "Counter of the number of failed predictions by error kind and stage.",
	}, []string{"kind", "stage"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "stage_duration_seconds",
		Help:      "Histogram of the time spent in each pipeline stage.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"stage"})

	EdgeCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "edge_total",
		Help:      "Counter of the number of detected links by outcome.",
	}, []string{"outcome"})

	NodeCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "graph_nodes",
		Help:      "Histogram of the number of nodes per diagram.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	UnknownClassCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "unknown_class_total",
		Help:      "Counter of the number of detections with a class outside the taxonomy.",
	}, []string{"class"})

	ArchiveFailureCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "archive_failure_total",
		Help:      "Counter of the number of images that could not be archived.",
	})

	VersionGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "version",
		Help:      "Version info of the service.",
	}, []string{"version", "commit", "build_time", "model_version", "go_version", "platform"})
)

// Config is the metrics server configuration.
type Config struct {
	Enable bool   `yaml:"enable" mapstructure:"enable"`
	Addr   string `yaml:"addr" mapstructure:"addr"`
}

// New returns the /metrics server. The caller runs and stops it.
func New(cfg *Config) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	VersionGauge.WithLabelValues(version.Version, version.GitCommit, version.BuildTime, version.ModelVersion, version.GoVersion, version.Platform).Set(1)
	return &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}
}
