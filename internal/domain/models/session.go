package models

// HourlyStat holds model performance for one broker hour.
type HourlyStat struct {
	Hour         int     `json:"hour"`
	Session      string  `json:"session"`
	Accuracy     float64 `json:"accuracy"`
	Samples      int     `json:"samples"`
	PositiveRate float64 `json:"positive_rate"`
}

// SessionStat aggregates hourly performance over a trading session.
type SessionStat struct {
	Session      string  `json:"session"`
	Accuracy     float64 `json:"accuracy"`
	Samples      int     `json:"samples"`
	PositiveRate float64 `json:"positive_rate"`
	Recommended  bool    `json:"recommended"`
}

// SessionReport is the session-performance summary handed to exporters.
type SessionReport struct {
	Hourly              []HourlyStat  `json:"hourly"`
	Sessions            []SessionStat `json:"sessions"`
	OptimalHours        []int         `json:"optimal_hours"`
	RecommendedSessions []string      `json:"recommended_sessions"`
}
