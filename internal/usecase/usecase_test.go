package usecase

import (
	"context"
	"testing"

	"TrendLab/internal/domain/models"
	"TrendLab/internal/repository"
	"TrendLab/internal/services/estimator"
	"TrendLab/internal/services/features"
	"TrendLab/internal/services/labels"
	"TrendLab/internal/services/sessions"
	"TrendLab/internal/services/walkforward"
	applogger "TrendLab/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordCandlesLoaded(string, int)      {}
func (nopMetrics) RecordSamplesLabeled(int, int)        {}
func (nopMetrics) RecordFoldScored(string)              {}
func (nopMetrics) RecordStageDuration(string, float64)  {}
func (nopMetrics) RecordGateDecision(string)            {}
func (nopMetrics) RecordLivePrediction(string, float64) {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func testDatasetBuilder(t *testing.T, candles int) *DatasetBuilder {
	t.Helper()
	return NewDatasetBuilder(
		repository.NewSyntheticCandleSource(candles, 42),
		"synthetic", "USDJPY",
		features.NewBuilder(features.NewSchema(), features.DefaultParams()),
		labels.NewGenerator(labels.DefaultParams()),
		nopMetrics{}, testLogger(t),
	)
}

func TestDatasetBuilderAlignsSeries(t *testing.T) {
	ds, err := testDatasetBuilder(t, 3000).Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(ds.Samples) != len(ds.Candles) || len(ds.Records) != len(ds.Candles) {
		t.Fatalf("dataset misaligned: %d candles, %d samples, %d records",
			len(ds.Candles), len(ds.Samples), len(ds.Records))
	}
	want := features.NewSchema().Len()
	for i, s := range ds.Samples {
		if len(s.Features) != want {
			t.Fatalf("sample %d has %d features, want %d", i, len(s.Features), want)
		}
		if !s.Timestamp.Equal(ds.Candles[i].Timestamp) {
			t.Fatalf("sample %d timestamp mismatch", i)
		}
	}
	if ds.Stats.ValidSamples == 0 || ds.Stats.ValidSamples >= ds.Stats.Candles {
		t.Fatalf("suspicious valid-sample count %+v", ds.Stats)
	}
}

func TestValidatorRunPublishesAndCaches(t *testing.T) {
	ctx := context.Background()
	cache := repository.NewMemoryReportCache()

	harness := walkforward.NewHarness(
		walkforward.DefaultConfig(),
		estimator.Factory,
		features.NewSchema().Columns(),
		labels.DefaultParams().ThresholdPips,
	)
	v := NewValidator(
		testDatasetBuilder(t, 20000),
		harness,
		sessions.NewAnalyzer(sessions.DefaultParams()),
		repository.NopReportSink{},
		cache,
		nopMetrics{}, testLogger(t), "USDJPY",
	)

	outcome, err := v.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	report := outcome.Result.Report
	if len(report.Folds) == 0 {
		t.Fatalf("expected scored folds on 200+ days of synthetic data")
	}
	if report.Decision != models.DecisionAccept && report.Decision != models.DecisionReject {
		t.Fatalf("missing gate decision: %+v", report)
	}
	if report.Decision == models.DecisionAccept && outcome.Result.FinalModel == nil {
		t.Fatalf("accepted run must carry a refit model")
	}

	cached, err := v.Report(ctx, "USDJPY")
	if err != nil {
		t.Fatalf("report lookup: %v", err)
	}
	if cached.Decision != report.Decision {
		t.Fatalf("cached decision %s, want %s", cached.Decision, report.Decision)
	}
	if v.Latest() != outcome {
		t.Fatalf("latest outcome not retained")
	}
	if outcome.Sessions == nil || len(outcome.Sessions.Hourly) == 0 {
		t.Fatalf("expected session analysis over pooled predictions")
	}
}

func TestLiveEngineScoresWarmHistory(t *testing.T) {
	ctx := context.Background()
	candles, err := repository.NewSyntheticCandleSource(600, 42).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	warmup, next := candles[:599], candles[599]

	builder := features.NewBuilder(features.NewSchema(), features.DefaultParams())
	engine, err := NewLiveEngine(nil, builder, nopMetrics{}, testLogger(t), "USDJPY")
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	// train a tiny model on the warmup bars so predictions are well-formed
	frame, err := builder.Build(warmup)
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	gen := labels.NewGenerator(labels.DefaultParams())
	records, err := gen.Generate(warmup, frame.PriceKumoDistance, frame.ATR)
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	var X [][]float64
	var y []int
	for i, r := range records {
		if r.Valid() {
			X = append(X, frame.Vector(i))
			y = append(y, r.Label)
		}
	}
	scaler, err := walkforward.FitScaler(X)
	if err != nil {
		t.Fatalf("scaler: %v", err)
	}
	model := estimator.New()
	if err := model.Fit(scaler.Transform(X), y); err != nil {
		t.Fatalf("fit: %v", err)
	}

	engine.Arm(scaler, model, warmup)
	pred, err := engine.OnCandle(ctx, &next)
	if err != nil {
		t.Fatalf("on candle: %v", err)
	}
	if pred.Proba < 0 || pred.Proba > 1 {
		t.Fatalf("probability out of range: %v", pred.Proba)
	}
	if !pred.Timestamp.Equal(next.Timestamp) || pred.Close != next.Close {
		t.Fatalf("prediction metadata mismatch: %+v", pred)
	}
	if engine.Last() != pred {
		t.Fatalf("last prediction not retained")
	}

	// out-of-order bars are rejected
	if _, err := engine.OnCandle(ctx, &next); err == nil {
		t.Fatalf("expected stale candle rejection")
	}
}
