package models

import "time"

// Scenario selects the market character a generated series follows.
type Scenario string

const (
	ScenarioAuto     Scenario = "auto"
	ScenarioBull     Scenario = "bull"
	ScenarioBear     Scenario = "bear"
	ScenarioSideways Scenario = "sideways"
)

// IsValid reports whether s is one of the recognized scenarios.
func (s Scenario) IsValid() bool {
	switch s {
	case ScenarioAuto, ScenarioBull, ScenarioBear, ScenarioSideways:
		return true
	default:
		return false
	}
}

// Candle represents one fixed-duration OHLCV record.
// Invariant: Low <= min(Open,Close) <= max(Open,Close) <= High, Low > 0, Volume >= 1.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Valid checks the structural OHLCV invariant for a single candle.
func (c Candle) Valid() bool {
	lo, hi := c.Open, c.Close
	if lo > hi {
		lo, hi = hi, lo
	}
	return c.Low > 0 && c.Low <= lo && hi <= c.High && c.Volume >= 1
}
