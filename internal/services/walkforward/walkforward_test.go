package walkforward

import (
	"math"
	"testing"
	"time"

	"TrendLab/internal/domain/models"
	"TrendLab/internal/domain/service"
	"TrendLab/internal/services/labels"
)

// signEstimator predicts from the sign of the first (scaled) feature. It
// stands in for a real model so harness tests stay deterministic.
type signEstimator struct{}

func (signEstimator) Fit(X [][]float64, y []int) error { return nil }

func (signEstimator) PredictProba(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, row := range X {
		if row[0] > 0 {
			out[i] = 0.9
		} else {
			out[i] = 0.1
		}
	}
	return out, nil
}

func signFactory() service.Estimator { return signEstimator{} }

// alternating hourly samples whose label is perfectly encoded in feature 0
func separableSamples(n int) []Sample {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]Sample, n)
	for i := range out {
		label := i % 2
		signal := -1.0
		rec := labels.Record{Label: label, Bias: labels.BiasBullish, StopPips: 15}
		if label == 1 {
			signal = 1.0
			rec.BullishMovePips = 50
		}
		out[i] = Sample{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Features:  []float64{signal, 7}, // second column is constant
			Label:     label,
			Record:    rec,
		}
	}
	return out
}

func TestFitScalerKnownValues(t *testing.T) {
	s, err := FitScaler([][]float64{{90}, {110}})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if s.Means[0] != 100 || s.Stds[0] != 10 {
		t.Fatalf("got mean %v std %v", s.Means[0], s.Stds[0])
	}
	if got := s.Apply([]float64{120})[0]; got != 2.0 {
		t.Fatalf("apply(120) = %v, want 2.0", got)
	}
}

func TestFitScalerConstantColumn(t *testing.T) {
	s, err := FitScaler([][]float64{{5}, {5}, {5}})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if s.Stds[0] != 1 {
		t.Fatalf("constant column std should fall back to 1, got %v", s.Stds[0])
	}
	if got := s.Apply([]float64{5})[0]; got != 0 {
		t.Fatalf("constant column should center to 0, got %v", got)
	}
}

func TestFitScalerRejectsEmptyAndRagged(t *testing.T) {
	if _, err := FitScaler(nil); err == nil {
		t.Fatalf("expected error for empty matrix")
	}
	if _, err := FitScaler([][]float64{{1, 2}, {1}}); err == nil {
		t.Fatalf("expected error for ragged matrix")
	}
}

func TestROCAUCSingleClass(t *testing.T) {
	if got := rocAUC([]int{1, 1, 1}, []float64{0.2, 0.5, 0.9}); got != 0 {
		t.Fatalf("single-class auc = %v, want 0", got)
	}
}

func TestROCAUCPerfectAndTied(t *testing.T) {
	if got := rocAUC([]int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9}); got != 1 {
		t.Fatalf("perfect ranking auc = %v, want 1", got)
	}
	if got := rocAUC([]int{0, 1, 0, 1}, []float64{0.5, 0.5, 0.5, 0.5}); got != 0.5 {
		t.Fatalf("all-tied auc = %v, want 0.5", got)
	}
}

func TestEvaluateConfusionCounts(t *testing.T) {
	y := []int{1, 1, 0, 0}
	probs := []float64{0.9, 0.2, 0.8, 0.1} // tp, fn, fp, tn
	m := Evaluate(y, probs, 0.5)
	if m.Accuracy != 0.5 || m.Precision != 0.5 || m.Recall != 0.5 || m.F1 != 0.5 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestHarnessExpandingFoldsAndAccept(t *testing.T) {
	samples := separableSamples(24 * 250)
	h := NewHarness(DefaultConfig(), signFactory, []string{"signal", "const"}, 30)

	res, err := h.Run("USDJPY", samples)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	report := res.Report
	if len(report.Folds) < 2 {
		t.Fatalf("expected at least 2 folds, got %d", len(report.Folds))
	}
	for i := 1; i < len(report.Folds); i++ {
		prev, cur := report.Folds[i-1], report.Folds[i]
		if !cur.TrainEnd.After(prev.TrainEnd) || cur.TrainSamples <= prev.TrainSamples {
			t.Fatalf("fold %d training window did not expand", cur.Fold)
		}
		if cur.TestStart.Before(cur.TrainEnd) {
			t.Fatalf("fold %d test window overlaps training", cur.Fold)
		}
	}
	if report.Mean.Accuracy != 1 {
		t.Fatalf("separable data should score perfectly, got %v", report.Mean.Accuracy)
	}
	if report.Decision != models.DecisionAccept {
		t.Fatalf("expected ACCEPT, got %s", report.Decision)
	}
	if report.Scaler == nil || len(report.Scaler.Columns) != 2 {
		t.Fatalf("accepted run must export scaler params, got %+v", report.Scaler)
	}
	if res.FinalModel == nil || res.FinalScaler == nil {
		t.Fatalf("accepted run must refit the final model")
	}

	pooled := 0
	for _, f := range report.Folds {
		pooled += f.TestSamples
	}
	if len(res.Predictions) != pooled {
		t.Fatalf("pooled predictions %d, want %d", len(res.Predictions), pooled)
	}
	if report.Trading.Trades == 0 || report.Trading.WinRate != 1 {
		t.Fatalf("confident trades on separable data should all win, got %+v", report.Trading)
	}
}

func TestHarnessRejectWithoutFolds(t *testing.T) {
	// two days of data cannot fill a single three-month training window
	h := NewHarness(DefaultConfig(), signFactory, []string{"signal", "const"}, 30)
	res, err := h.Run("USDJPY", separableSamples(48))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Report.Folds) != 0 || res.Report.Decision != models.DecisionReject {
		t.Fatalf("expected REJECT with no folds, got %+v", res.Report)
	}
	if res.Report.Scaler != nil || res.FinalModel != nil {
		t.Fatalf("rejected run must not refit a final model")
	}
}

func TestHarnessSkipsThinTestWindows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinTestSamples = 100000
	h := NewHarness(cfg, signFactory, []string{"signal", "const"}, 30)

	res, err := h.Run("USDJPY", separableSamples(24*250))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Report.Folds) != 0 || res.Report.SkippedFolds == 0 {
		t.Fatalf("expected every fold skipped, got folds=%d skipped=%d",
			len(res.Report.Folds), res.Report.SkippedFolds)
	}
	if res.Report.Decision != models.DecisionReject {
		t.Fatalf("expected REJECT, got %s", res.Report.Decision)
	}
}

func TestTradeSimRealizedOutcomes(t *testing.T) {
	sim := NewTradeSim(SimRealized, 0.72, 30, 0)
	recs := []labels.Record{
		{Bias: labels.BiasBullish, BullishMovePips: 45, StopPips: 15},  // taken, wins 45
		{Bias: labels.BiasBearish, BearishMovePips: 33, StopPips: 15},  // taken, wins 33
		{Bias: labels.BiasBullish, BullishMovePips: 10, StopPips: 12},  // taken, loses 12
		{Bias: labels.BiasBullish, BullishMovePips: 100, StopPips: 15}, // below threshold, no trade
	}
	stats, pnl := sim.Run([]float64{0.9, 0.8, 0.75, 0.3}, recs)
	want := []float64{45, 33, -12}
	if len(pnl) != len(want) {
		t.Fatalf("got %d trades, want %d", len(pnl), len(want))
	}
	for i, v := range want {
		if pnl[i] != v {
			t.Fatalf("trade %d pnl %v, want %v", i, pnl[i], v)
		}
	}
	if stats.Trades != 3 || stats.TotalPnL != 66 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if math.Abs(stats.WinRate-2.0/3.0) > 1e-12 {
		t.Fatalf("unexpected win rate %v", stats.WinRate)
	}
}

func TestTradeSimCoinflipDeterministic(t *testing.T) {
	recs := make([]labels.Record, 50)
	probs := make([]float64, 50)
	for i := range probs {
		probs[i] = 0.9
	}
	_, a := NewTradeSim(SimCoinflip, 0.72, 30, 7).Run(probs, recs)
	_, b := NewTradeSim(SimCoinflip, 0.72, 30, 7).Run(probs, recs)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seeded coinflip diverged at trade %d", i)
		}
		if a[i] != 30 && a[i] != -20 {
			t.Fatalf("coinflip payout must be +30 or -20, got %v", a[i])
		}
	}
}

func TestSummarizeDrawdown(t *testing.T) {
	stats := Summarize([]float64{10, -30, 20})
	if stats.MaxDrawdown != -30 {
		t.Fatalf("max drawdown %v, want -30", stats.MaxDrawdown)
	}
	if stats.TotalPnL != 0 || stats.Trades != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestSummarizeZeroVariance(t *testing.T) {
	stats := Summarize([]float64{10, 10, 10})
	if stats.Sharpe != 0 {
		t.Fatalf("zero-variance pnl must have Sharpe 0, got %v", stats.Sharpe)
	}
}
