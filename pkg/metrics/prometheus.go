package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	candlesLoaded   *prometheus.CounterVec
	samplesLabeled  *prometheus.CounterVec
	foldsScored     *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	gateDecisions   *prometheus.CounterVec
	livePredictions *prometheus.CounterVec
	lastProba       *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		candlesLoaded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendlab_candles_loaded_total",
				Help: "Total number of candles loaded per source",
			},
			[]string{"source"},
		),
		samplesLabeled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendlab_samples_labeled_total",
				Help: "Total number of labeled bars by validity",
			},
			[]string{"validity"},
		),
		foldsScored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendlab_folds_scored_total",
				Help: "Total number of walk-forward folds by result",
			},
			[]string{"result"},
		),
		stageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trendlab_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		gateDecisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendlab_gate_decisions_total",
				Help: "Total number of validation gate decisions",
			},
			[]string{"decision"},
		),
		livePredictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendlab_live_predictions_total",
				Help: "Total number of live per-bar predictions",
			},
			[]string{"symbol"},
		),
		lastProba: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "trendlab_last_prediction_proba",
				Help: "Last live prediction probability per symbol",
			},
			[]string{"symbol"},
		),
	}
}

// RecordCandlesLoaded records candles loaded from a source.
func (r *Recorder) RecordCandlesLoaded(source string, n int) {
	r.candlesLoaded.WithLabelValues(source).Add(float64(n))
}

// RecordSamplesLabeled records labeled bar counts.
func (r *Recorder) RecordSamplesLabeled(valid, invalid int) {
	r.samplesLabeled.WithLabelValues("valid").Add(float64(valid))
	r.samplesLabeled.WithLabelValues("invalid").Add(float64(invalid))
}

// RecordFoldScored records one scored or skipped fold.
func (r *Recorder) RecordFoldScored(result string) {
	r.foldsScored.WithLabelValues(result).Inc()
}

// RecordStageDuration records a pipeline stage duration in seconds.
func (r *Recorder) RecordStageDuration(stage string, seconds float64) {
	r.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordGateDecision records a validation gate decision.
func (r *Recorder) RecordGateDecision(decision string) {
	r.gateDecisions.WithLabelValues(decision).Inc()
}

// RecordLivePrediction records one live inference result.
func (r *Recorder) RecordLivePrediction(symbol string, proba float64) {
	r.livePredictions.WithLabelValues(symbol).Inc()
	r.lastProba.WithLabelValues(symbol).Set(proba)
}
