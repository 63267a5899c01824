package indicators

import "math"

// Rolling-window primitives. All outputs are aligned to the input series;
// positions whose window has not accumulated enough bars, or whose window
// contains an undefined input, are NaN. NaN is the "missing" marker for the
// whole pipeline and is never replaced with a fabricated value here.

// RollingMean computes the rolling mean over period bars.
func RollingMean(v []float64, period int) []float64 {
	out := nanSlice(len(v))
	if period <= 0 || len(v) < period {
		return out
	}
	for i := period - 1; i < len(v); i++ {
		sum := 0.0
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(v[j]) {
				ok = false
				break
			}
			sum += v[j]
		}
		if ok {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// RollingMax computes the rolling maximum over period bars.
func RollingMax(v []float64, period int) []float64 {
	out := nanSlice(len(v))
	if period <= 0 || len(v) < period {
		return out
	}
	for i := period - 1; i < len(v); i++ {
		m := math.Inf(-1)
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(v[j]) {
				ok = false
				break
			}
			if v[j] > m {
				m = v[j]
			}
		}
		if ok {
			out[i] = m
		}
	}
	return out
}

// RollingMin computes the rolling minimum over period bars.
func RollingMin(v []float64, period int) []float64 {
	out := nanSlice(len(v))
	if period <= 0 || len(v) < period {
		return out
	}
	for i := period - 1; i < len(v); i++ {
		m := math.Inf(1)
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(v[j]) {
				ok = false
				break
			}
			if v[j] < m {
				m = v[j]
			}
		}
		if ok {
			out[i] = m
		}
	}
	return out
}

// Shift moves a series forward in time by n bars: the value exposed at bar i
// was computed from data available at bar i-n. The first n positions are NaN.
func Shift(v []float64, n int) []float64 {
	out := nanSlice(len(v))
	if n < 0 {
		n = 0
	}
	for i := n; i < len(v); i++ {
		out[i] = v[i-n]
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
