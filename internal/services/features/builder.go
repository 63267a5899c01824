package features

import (
	"fmt"
	"math"

	"TrendLab/internal/domain/models"
	"TrendLab/internal/services/indicators"
)

// Market regimes, encoded into the regime_flag column.
const (
	RegimeRange  = 0
	RegimeTrend  = 1
	RegimeChoppy = 2
)

// Trading sessions by broker hour.
const (
	SessionAsia    = 0
	SessionLondon  = 1
	SessionNewYork = 2
)

const distEps = 1e-5 // guards ATR-normalized divisions

// Params configures feature computation.
type Params struct {
	TenkanPeriod  int
	KijunPeriod   int
	SenkouBPeriod int
	ATRPeriod     int
	ADXPeriod     int
	VolumeWindow  int
	RangeWindow   int
	SlopeLookback int

	// ChikouParity replicates the deployed inference engine's lagging-span
	// construction, which reads the close kijunPeriod bars in the FUTURE of
	// the bar being featurized. That is a look-ahead leak for training; with
	// ChikouParity false the feature compares the current close against the
	// close kijunPeriod bars ago instead, which is causal.
	ChikouParity bool
}

// DefaultParams returns the production parameter set.
func DefaultParams() Params {
	return Params{
		TenkanPeriod:  9,
		KijunPeriod:   26,
		SenkouBPeriod: 52,
		ATRPeriod:     14,
		ADXPeriod:     14,
		VolumeWindow:  20,
		RangeWindow:   20,
		SlopeLookback: 3,
		ChikouParity:  true,
	}
}

// Builder assembles the fixed-order feature matrix from candles.
type Builder struct {
	schema Schema
	params Params
}

// NewBuilder creates a feature builder bound to a schema.
func NewBuilder(schema Schema, params Params) *Builder {
	return &Builder{schema: schema, params: params}
}

// Schema returns the builder's feature layout.
func (b *Builder) Schema() Schema { return b.schema }

// Params returns the builder's parameter set.
func (b *Builder) Params() Params { return b.params }

// Frame holds all computed feature columns aligned to the candle series.
// Columns keep NaN for undefined positions; sanitization to neutral zeros
// happens only at vector extraction.
type Frame struct {
	schema  Schema
	Candles []models.Candle

	// Raw indicator rows kept for the label generator and trading overlay.
	ATR               []float64
	ADX               []float64
	PriceKumoDistance []float64

	columns [][]float64 // schema order
}

// Build computes every feature column for the full history. The input series
// must already be validated; Build fails fast on an empty series only.
func (b *Builder) Build(candles []models.Candle) (*Frame, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("build features: empty candle series")
	}
	n := len(candles)
	p := b.params

	closes := make([]float64, n)
	volumes := make([]float64, n)
	ranges := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		volumes[i] = c.TickVolume
		ranges[i] = c.High - c.Low
	}

	tenkan := indicators.Midpoint(candles, p.TenkanPeriod)
	kijun := indicators.Midpoint(candles, p.KijunPeriod)
	spanA, spanB := indicators.CloudSpans(candles, tenkan, kijun, p.SenkouBPeriod, p.KijunPeriod)
	atr := indicators.ATR(candles, p.ATRPeriod)
	adx := indicators.ADX(candles, p.ADXPeriod)
	avgVolume := indicators.RollingMean(volumes, p.VolumeWindow)
	avgRange := indicators.RollingMean(ranges, p.RangeWindow)

	tenkanSlope := slope(tenkan, p.SlopeLookback)
	kijunSlope := slope(kijun, p.SlopeLookback)

	cloudThickness := make([]float64, n)
	kumoDistance := make([]float64, n)
	chikou := make([]float64, n)
	atrNorm := make([]float64, n)
	volSpike := make([]float64, n)
	compression := make([]float64, n)
	momentum := make([]float64, n)
	relKumo := make([]float64, n)
	regime := make([]float64, n)
	hours := make([]float64, n)
	sessions := make([]float64, n)
	spreads := make([]float64, n)

	for i := 0; i < n; i++ {
		cloudThickness[i] = (spanA[i] - spanB[i]) / (atr[i] + distEps)
		top := math.Max(spanA[i], spanB[i])
		bottom := math.Min(spanA[i], spanB[i])
		kumoDistance[i] = KumoDistance(closes[i], top, bottom, atr[i])

		chikou[i] = b.chikouAt(closes, i)

		atrNorm[i] = atr[i] / closes[i] * 1e4
		volSpike[i] = volumes[i] / (avgVolume[i] + distEps)
		compression[i] = ranges[i] / (avgRange[i] + distEps)
		momentum[i] = tenkanSlope[i] * adx[i]
		relKumo[i] = cloudThickness[i] / (atrNorm[i] + 1e-4)
		regime[i] = float64(RegimeOf(adx[i], atrNorm[i]))

		hour := candles[i].Timestamp.Hour()
		hours[i] = float64(hour)
		sessions[i] = float64(SessionID(hour))
		spreads[i] = candles[i].Spread
	}

	f := &Frame{
		schema:            b.schema,
		Candles:           candles,
		ATR:               atr,
		ADX:               adx,
		PriceKumoDistance: kumoDistance,
		columns:           make([][]float64, b.schema.Len()),
	}
	byName := map[string][]float64{
		ColTenkanSlope:          tenkanSlope,
		ColKijunSlope:           kijunSlope,
		ColCloudThickness:       cloudThickness,
		ColPriceKumoDistance:    kumoDistance,
		ColChikouRelative:       chikou,
		ColATRNormalized:        atrNorm,
		ColADX:                  adx,
		ColTickVolumeSpike:      volSpike,
		ColBrokerHour:           hours,
		ColSessionID:            sessions,
		ColSpread:               spreads,
		ColCandleCompression:    compression,
		ColMomentumStrength:     momentum,
		ColRelativeKumoStrength: relKumo,
		ColRegimeFlag:           regime,
	}
	for name, col := range byName {
		idx, err := b.schema.Index(name)
		if err != nil {
			return nil, err
		}
		f.columns[idx] = col
	}
	return f, nil
}

// chikouAt computes the lagging-span feature for bar i:
// (reference close - close kijunPeriod bars ago) / (close kijunPeriod bars
// ago) * 1000. In parity mode the reference is the close kijunPeriod bars in
// the future; otherwise it is the current close.
func (b *Builder) chikouAt(closes []float64, i int) float64 {
	k := b.params.KijunPeriod
	if i < k {
		return math.NaN()
	}
	past := closes[i-k]
	if past == 0 {
		return math.NaN()
	}
	ref := closes[i]
	if b.params.ChikouParity {
		if i+k >= len(closes) {
			return math.NaN()
		}
		ref = closes[i+k]
	}
	return (ref - past) / past * 1000
}

// slope returns the normalized slope over a lookback window:
// ((v[i] - v[i-lookback+1]) / lookback) / v[i] * 1e5.
func slope(v []float64, lookback int) []float64 {
	out := make([]float64, len(v))
	for i := range out {
		if i < lookback-1 {
			out[i] = math.NaN()
			continue
		}
		s := (v[i] - v[i-lookback+1]) / float64(lookback)
		out[i] = s / v[i] * 1e5
	}
	return out
}

// KumoDistance is the signed, ATR-normalized distance from close to the
// nearer cloud boundary; 0 when the close sits inside the cloud. Pure over
// its four scalars, with no dependency on surrounding rows.
func KumoDistance(close, top, bottom, atr float64) float64 {
	switch {
	case close > top:
		return (close - top) / (atr + distEps)
	case close < bottom:
		return (close - bottom) / (atr + distEps)
	default:
		return 0
	}
}

// RegimeOf classifies market behavior from trend strength and volatility.
func RegimeOf(adx, atrNormalized float64) int {
	if adx > 25 {
		return RegimeTrend
	}
	if atrNormalized > 1.5 && adx < 20 {
		return RegimeChoppy
	}
	return RegimeRange
}

// SessionID maps a broker hour to a trading session.
func SessionID(hour int) int {
	switch {
	case hour < 8:
		return SessionAsia
	case hour < 16:
		return SessionLondon
	default:
		return SessionNewYork
	}
}

// Len returns the number of bars in the frame.
func (f *Frame) Len() int { return len(f.Candles) }

// Schema returns the frame's feature layout.
func (f *Frame) Schema() Schema { return f.schema }

// Column returns a feature column by name.
func (f *Frame) Column(name string) ([]float64, error) {
	idx, err := f.schema.Index(name)
	if err != nil {
		return nil, err
	}
	return f.columns[idx], nil
}

// Vector returns the sanitized feature vector for bar i: NaN and ±Inf
// degrade to 0 so models always receive finite input.
func (f *Frame) Vector(i int) []float64 {
	out := make([]float64, f.schema.Len())
	for c := range f.columns {
		out[c] = sanitize(f.columns[c][i])
	}
	return out
}

// Matrix returns sanitized vectors for every bar.
func (f *Frame) Matrix() [][]float64 {
	out := make([][]float64, f.Len())
	for i := range out {
		out[i] = f.Vector(i)
	}
	return out
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
