package features

import "fmt"

// Feature column names, in the model's contractual order. The ordering is a
// contract between dataset construction and live vector assembly: models see
// positions, not names, so both sides must consume the same Schema value
// instead of a shared module-level constant.
const (
	ColTenkanSlope          = "tenkan_slope"
	ColKijunSlope           = "kijun_slope"
	ColCloudThickness       = "cloud_thickness"
	ColPriceKumoDistance    = "price_kumo_distance"
	ColChikouRelative       = "chikou_relative_position"
	ColATRNormalized        = "atr_normalized"
	ColADX                  = "adx"
	ColTickVolumeSpike      = "tick_volume_spike"
	ColBrokerHour           = "broker_hour"
	ColSessionID            = "session_id"
	ColSpread               = "spread"
	ColCandleCompression    = "candle_compression"
	ColMomentumStrength     = "momentum_strength"
	ColRelativeKumoStrength = "relative_kumo_strength"
	ColRegimeFlag           = "regime_flag"
)

// Schema is an explicit, ordered feature layout. It is passed to every
// component that needs feature order so training-time and inference-time
// consumers cannot silently diverge.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema returns the canonical 15-column schema.
func NewSchema() Schema {
	cols := []string{
		ColTenkanSlope,
		ColKijunSlope,
		ColCloudThickness,
		ColPriceKumoDistance,
		ColChikouRelative,
		ColATRNormalized,
		ColADX,
		ColTickVolumeSpike,
		ColBrokerHour,
		ColSessionID,
		ColSpread,
		ColCandleCompression,
		ColMomentumStrength,
		ColRelativeKumoStrength,
		ColRegimeFlag,
	}
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}
	return Schema{columns: cols, index: idx}
}

// Columns returns the ordered column names. The returned slice is a copy.
func (s Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Len returns the number of features.
func (s Schema) Len() int { return len(s.columns) }

// Index returns the position of a column.
func (s Schema) Index(name string) (int, error) {
	i, ok := s.index[name]
	if !ok {
		return 0, fmt.Errorf("unknown feature column %q", name)
	}
	return i, nil
}
