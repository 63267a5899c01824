package labels

import (
	"fmt"
	"math"

	"TrendLab/internal/domain/models"
)

// Label values. Invalid bars are excluded from training and from every
// accuracy statistic.
const (
	LabelNegative = 0
	LabelPositive = 1
	LabelInvalid  = -1
)

// Directional bias derived from the price/cloud distance.
const (
	BiasNeutral = 0
	BiasBullish = 1
	BiasBearish = -1
)

// Params configures continuation labeling.
type Params struct {
	// ThresholdPips is the minimum favorable move that counts as a
	// continuation.
	ThresholdPips float64
	// Lookforward is the forward window length in bars.
	Lookforward int
	// PipValue is the instrument's pip scale (0.01 for JPY pairs).
	PipValue float64
	// SLMultiplier sizes the ATR-based stop used for risk/reward metadata.
	SLMultiplier float64
	// BiasBand is the neutral zone half-width on price/cloud distance.
	BiasBand float64
}

// DefaultParams returns the production labeling parameters.
func DefaultParams() Params {
	return Params{
		ThresholdPips: 30,
		Lookforward:   10,
		PipValue:      0.01,
		SLMultiplier:  1.5,
		BiasBand:      0.1,
	}
}

// Record is the label plus metadata for one bar.
type Record struct {
	Label           int
	Bias            int
	BullishMovePips float64
	BearishMovePips float64
	StopPips        float64
	RiskReward      float64
}

// Valid reports whether the bar can be used for supervised training.
func (r Record) Valid() bool { return r.Label != LabelInvalid }

// Generator computes forward-looking continuation labels.
type Generator struct {
	params Params
}

// NewGenerator creates a label generator.
func NewGenerator(params Params) *Generator {
	return &Generator{params: params}
}

// Params returns the generator's parameter set.
func (g *Generator) Params() Params { return g.params }

// Generate labels every bar. kumoDistance and atr must be aligned to the
// candle series. The final Lookforward bars have no full forward window and
// are marked invalid; a neutral directional bias is likewise invalid.
func (g *Generator) Generate(candles []models.Candle, kumoDistance, atr []float64) ([]Record, error) {
	n := len(candles)
	if len(kumoDistance) != n || len(atr) != n {
		return nil, fmt.Errorf("generate labels: series length mismatch (candles=%d kumo=%d atr=%d)",
			n, len(kumoDistance), len(atr))
	}

	out := make([]Record, n)
	for i := 0; i < n; i++ {
		rec := Record{Label: LabelInvalid, Bias: biasOf(kumoDistance[i], g.params.BiasBand)}
		if i+g.params.Lookforward >= n {
			// no full forward window; never labeled
			out[i] = rec
			continue
		}

		maxHigh := math.Inf(-1)
		minLow := math.Inf(1)
		for j := i + 1; j <= i+g.params.Lookforward; j++ {
			if candles[j].High > maxHigh {
				maxHigh = candles[j].High
			}
			if candles[j].Low < minLow {
				minLow = candles[j].Low
			}
		}
		entry := candles[i].Close
		rec.BullishMovePips = (maxHigh - entry) / g.params.PipValue
		rec.BearishMovePips = (entry - minLow) / g.params.PipValue

		stop := atr[i] * g.params.SLMultiplier
		if !math.IsNaN(stop) && stop > 0 {
			rec.StopPips = stop / g.params.PipValue
			rec.RiskReward = (maxHigh - entry) / stop
		}

		switch rec.Bias {
		case BiasBullish:
			rec.Label = boolLabel(rec.BullishMovePips >= g.params.ThresholdPips)
		case BiasBearish:
			rec.Label = boolLabel(rec.BearishMovePips >= g.params.ThresholdPips)
		}
		out[i] = rec
	}
	return out, nil
}

func biasOf(kumoDistance, band float64) int {
	switch {
	case kumoDistance > band:
		return BiasBullish
	case kumoDistance < -band:
		return BiasBearish
	default:
		return BiasNeutral
	}
}

func boolLabel(continuation bool) int {
	if continuation {
		return LabelPositive
	}
	return LabelNegative
}

// Stats summarizes a labeled series over its valid bars.
type Stats struct {
	Total        int
	Positive     int
	Negative     int
	PositiveRate float64
	ClassBalance float64
}

// Statistics computes label distribution statistics.
func Statistics(records []Record) Stats {
	var s Stats
	for _, r := range records {
		if !r.Valid() {
			continue
		}
		s.Total++
		if r.Label == LabelPositive {
			s.Positive++
		} else {
			s.Negative++
		}
	}
	if s.Total > 0 {
		s.PositiveRate = float64(s.Positive) / float64(s.Total)
	}
	if mx := maxInt(s.Positive, s.Negative); mx > 0 {
		s.ClassBalance = float64(minInt(s.Positive, s.Negative)) / float64(mx)
	}
	return s
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
