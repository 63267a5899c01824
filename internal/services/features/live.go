package features

import (
	"fmt"

	"TrendLab/internal/domain/models"
)

// AssembleAt produces the feature vector for bar i using only bars at or
// before i. This is the per-bar path a live inference engine runs on every
// new candle. For every causal column it matches the batch path exactly; the
// parity-mode lagging span additionally reads the close kijunPeriod bars
// past i, which does not exist yet live, so it degrades to the neutral 0
// the sanitizer would produce for a missing value.
func (b *Builder) AssembleAt(candles []models.Candle, i int) ([]float64, error) {
	if i < 0 || i >= len(candles) {
		return nil, fmt.Errorf("assemble features: index %d out of range [0, %d)", i, len(candles))
	}
	frame, err := b.Build(candles[:i+1])
	if err != nil {
		return nil, err
	}
	return frame.Vector(i), nil
}

// AssembleLatest is AssembleAt for the newest bar.
func (b *Builder) AssembleLatest(candles []models.Candle) ([]float64, error) {
	return b.AssembleAt(candles, len(candles)-1)
}
