package sessions

import (
	"TrendLab/internal/domain/models"
	"TrendLab/internal/services/walkforward"
)

// Trading session names on broker time.
const (
	SessionAsia    = "ASIA"
	SessionLondon  = "LONDON"
	SessionNewYork = "NEWYORK"
)

// Params configures the optimal-hours filter and the session recommendation
// cutoff.
type Params struct {
	MinAccuracy       float64
	MinSamples        int
	RecommendCutoff   float64
	DecisionThreshold float64
}

// DefaultParams returns the production analysis parameters.
func DefaultParams() Params {
	return Params{
		MinAccuracy:       0.55,
		MinSamples:        100,
		RecommendCutoff:   0.55,
		DecisionThreshold: 0.5,
	}
}

// SessionOf maps a broker hour to its trading session.
func SessionOf(hour int) string {
	switch {
	case hour >= 0 && hour < 8:
		return SessionAsia
	case hour >= 8 && hour < 16:
		return SessionLondon
	default:
		return SessionNewYork
	}
}

// Analyzer slices pooled out-of-sample predictions by broker hour and
// session to find when the model is actually tradeable.
type Analyzer struct {
	params Params
}

// NewAnalyzer creates a session analyzer.
func NewAnalyzer(params Params) *Analyzer {
	return &Analyzer{params: params}
}

// Analyze produces the full hourly and session breakdown plus the optimal
// hour list. Hours with no predictions are omitted.
func (a *Analyzer) Analyze(preds []walkforward.Prediction) *models.SessionReport {
	hourly := a.AnalyzeHourly(preds)
	sessions := a.AggregateSessions(hourly)

	report := &models.SessionReport{
		Hourly:       hourly,
		Sessions:     sessions,
		OptimalHours: a.OptimalHours(hourly),
	}
	for _, s := range sessions {
		if s.Recommended {
			report.RecommendedSessions = append(report.RecommendedSessions, s.Session)
		}
	}
	return report
}

// AnalyzeHourly computes accuracy, sample count and positive rate per broker
// hour.
func (a *Analyzer) AnalyzeHourly(preds []walkforward.Prediction) []models.HourlyStat {
	type bucket struct {
		total, correct, positive int
	}
	var buckets [24]bucket
	for _, p := range preds {
		hour := p.Timestamp.Hour()
		predicted := 0
		if p.Proba >= a.params.DecisionThreshold {
			predicted = 1
		}
		b := &buckets[hour]
		b.total++
		if predicted == p.Label {
			b.correct++
		}
		if p.Label == 1 {
			b.positive++
		}
	}

	var out []models.HourlyStat
	for hour, b := range buckets {
		if b.total == 0 {
			continue
		}
		out = append(out, models.HourlyStat{
			Hour:         hour,
			Session:      SessionOf(hour),
			Accuracy:     float64(b.correct) / float64(b.total),
			Samples:      b.total,
			PositiveRate: float64(b.positive) / float64(b.total),
		})
	}
	return out
}

// AggregateSessions groups hourly stats by session. Accuracy and positive
// rate are unweighted means over the session's hours; samples are summed.
func (a *Analyzer) AggregateSessions(hourly []models.HourlyStat) []models.SessionStat {
	type agg struct {
		accSum, posSum float64
		hours, samples int
	}
	grouped := map[string]*agg{}
	for _, h := range hourly {
		g := grouped[h.Session]
		if g == nil {
			g = &agg{}
			grouped[h.Session] = g
		}
		g.accSum += h.Accuracy
		g.posSum += h.PositiveRate
		g.hours++
		g.samples += h.Samples
	}

	var out []models.SessionStat
	for _, name := range []string{SessionAsia, SessionLondon, SessionNewYork} {
		g, ok := grouped[name]
		if !ok {
			continue
		}
		acc := g.accSum / float64(g.hours)
		out = append(out, models.SessionStat{
			Session:      name,
			Accuracy:     acc,
			Samples:      g.samples,
			PositiveRate: g.posSum / float64(g.hours),
			Recommended:  acc > a.params.RecommendCutoff,
		})
	}
	return out
}

// OptimalHours lists the hours that clear both the accuracy and sample-count
// bars, in ascending order.
func (a *Analyzer) OptimalHours(hourly []models.HourlyStat) []int {
	var out []int
	for _, h := range hourly {
		if h.Accuracy >= a.params.MinAccuracy && h.Samples >= a.params.MinSamples {
			out = append(out, h.Hour)
		}
	}
	return out
}
