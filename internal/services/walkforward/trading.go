package walkforward

import (
	"math"
	"math/rand"

	"TrendLab/internal/domain/models"
	"TrendLab/internal/services/labels"
)

// Simulation modes for converting high-confidence predictions into a P&L
// series.
const (
	SimRealized = "realized"
	SimCoinflip = "coinflip"
)

// annualization factor for a daily-equivalent Sharpe ratio
const sharpeAnnualization = 252

// TradeSim turns per-bar predictions into trade outcomes. Only predictions at
// or above the confidence threshold are taken.
type TradeSim struct {
	Mode      string
	Threshold float64
	// WinPips/LossPips are the fixed coinflip payouts.
	WinPips  float64
	LossPips float64
	// ThresholdPips mirrors the labeler's continuation threshold and decides
	// a realized trade's outcome.
	ThresholdPips float64
	rng           *rand.Rand
}

// NewTradeSim builds a simulator. The seed only matters in coinflip mode.
func NewTradeSim(mode string, threshold float64, thresholdPips float64, seed int64) *TradeSim {
	return &TradeSim{
		Mode:          mode,
		Threshold:     threshold,
		WinPips:       30,
		LossPips:      20,
		ThresholdPips: thresholdPips,
		rng:           rand.New(rand.NewSource(seed)),
	}
}

// Run simulates trading the given fold and returns the stats together with
// the per-trade P&L, so callers can pool trades across folds. records must be
// aligned to probs. Realized mode pays the biased forward move on a
// continuation and loses the ATR stop otherwise; coinflip mode is the crude
// fixed-payout baseline.
func (s *TradeSim) Run(probs []float64, records []labels.Record) (models.TradingStats, []float64) {
	var pnl []float64
	for i, p := range probs {
		if p < s.Threshold {
			continue
		}
		pnl = append(pnl, s.outcome(records[i]))
	}
	return Summarize(pnl), pnl
}

func (s *TradeSim) outcome(rec labels.Record) float64 {
	if s.Mode == SimCoinflip {
		if s.rng.Float64() < 0.5 {
			return s.WinPips
		}
		return -s.LossPips
	}

	move := rec.BullishMovePips
	if rec.Bias == labels.BiasBearish {
		move = rec.BearishMovePips
	}
	if move >= s.ThresholdPips {
		return move
	}
	if rec.StopPips > 0 {
		return -rec.StopPips
	}
	return 0
}

// Summarize computes win rate, Sharpe and max drawdown of a P&L series in
// pips.
func Summarize(pnl []float64) models.TradingStats {
	stats := models.TradingStats{Trades: len(pnl)}
	if len(pnl) == 0 {
		return stats
	}

	var sum float64
	wins := 0
	for _, v := range pnl {
		sum += v
		if v > 0 {
			wins++
		}
	}
	stats.TotalPnL = sum
	stats.WinRate = float64(wins) / float64(len(pnl))

	mean := sum / float64(len(pnl))
	var variance float64
	for _, v := range pnl {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(pnl))
	if std := math.Sqrt(variance); std > 0 {
		stats.Sharpe = mean / std * math.Sqrt(sharpeAnnualization)
	}

	// max drawdown on the cumulative pips curve
	var cum, peak, maxDD float64
	for _, v := range pnl {
		cum += v
		if cum > peak {
			peak = cum
		}
		if dd := cum - peak; dd < maxDD {
			maxDD = dd
		}
	}
	stats.MaxDrawdown = maxDD
	return stats
}
