package engine

import (
	"hash/fnv"
	"math"

	"mockflow/internal/domain/models"
)

// RegimeID identifies the prevailing drift/volatility character of the market.
type RegimeID int

const (
	RegimeBull RegimeID = iota
	RegimeBear
	RegimeSideways
)

func (r RegimeID) String() string {
	switch r {
	case RegimeBull:
		return "bull"
	case RegimeBear:
		return "bear"
	case RegimeSideways:
		return "sideways"
	default:
		return "unknown"
	}
}

// regimeParams holds the per-regime drift coefficient (in units of baseline
// sigma per bar) and the volatility multiplier.
type regimeParams struct {
	driftCoef float64
	cycFreq   float64
	volMult   float64
}

var regimeTable = map[RegimeID]regimeParams{
	RegimeBull:     {driftCoef: 0.35, cycFreq: 6, volMult: 1.0},
	RegimeBear:     {driftCoef: -0.30, cycFreq: 5, volMult: 1.3},
	RegimeSideways: {driftCoef: 0, cycFreq: 12, volMult: 0.8},
}

// Markov persistence for the auto scenario: regimes last many bars.
const autoStayProb = 0.97

// symbolRegimeV1 maps a symbol to its base regime for the auto scenario.
// The mapping is versioned: changing the hash silently changes all
// historical auto outputs for existing symbols, so v1 is frozen.
func symbolRegimeV1(symbol string) RegimeID {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return RegimeID(h.Sum32() % 3)
}

// Controller chooses and transitions the prevailing regime per bar.
// Fixed scenarios keep one regime for the whole run but modulate drift with
// a slow oscillation, so sustained trends still contain temporary reversals.
type Controller struct {
	current RegimeID
	auto    bool
	osc     float64 // smoothed random-walk component of the drift modulation
	bar     int
	total   int
}

// NewController builds the controller for a run. For the auto scenario the
// base regime derives deterministically from the symbol.
func NewController(scenario models.Scenario, symbol string, barCount int) *Controller {
	c := &Controller{total: barCount}
	switch scenario {
	case models.ScenarioBull:
		c.current = RegimeBull
	case models.ScenarioBear:
		c.current = RegimeBear
	case models.ScenarioSideways:
		c.current = RegimeSideways
	default:
		c.auto = true
		c.current = symbolRegimeV1(symbol)
	}
	return c
}

// Step produces this bar's (drift, volatility multiplier, regime) and
// advances internal state. Draw order per call is fixed: one uniform for the
// oscillation walk, plus one uniform for the transition when in auto mode
// with more than one bar.
func (c *Controller) Step(s *Stream, baseline float64) (drift, volMult float64, regime RegimeID) {
	denom := c.total
	if denom < 1 {
		denom = 1
	}
	progress := float64(c.bar) / float64(denom)

	c.osc = 0.92*c.osc + 0.08*(2*s.Float64()-1)

	if c.auto && c.total > 1 {
		u := s.Float64()
		if u > autoStayProb {
			// symmetric split of the remaining mass between the other two
			if u < autoStayProb+(1-autoStayProb)/2 {
				c.current = (c.current + 1) % 3
			} else {
				c.current = (c.current + 2) % 3
			}
		}
	}

	p := regimeTable[c.current]
	wave := math.Sin(progress*math.Pi*p.cycFreq + 1)
	switch c.current {
	case RegimeSideways:
		// range-bound: cyclical drift around zero
		drift = baseline * (0.15*wave + 0.20*c.osc)
	default:
		// trending: directional drift damped and occasionally reversed
		// by the cycle and the smoothed walk
		drift = baseline * (p.driftCoef*(0.45+0.55*wave) + 0.20*c.osc)
	}

	c.bar++
	return drift, p.volMult, c.current
}
