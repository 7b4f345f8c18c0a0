package engine

import "math"

// VolatilityState carries the conditional-variance recursion for one run.
// Initialized once from calibration defaults, mutated once per bar with the
// previous bar's realized shock, discarded at run end. Owned exclusively by
// one run and never shared.
type VolatilityState struct {
	omega    float64
	alpha    float64
	beta     float64
	variance float64
	floor    float64
	cap      float64
}

// NewVolatilityState builds the recursion state from a calibration.
// The stationarity precondition was already enforced when the calibration
// was constructed; it is re-checked here so hand-built states cannot bypass it.
func NewVolatilityState(cal Calibration) (*VolatilityState, error) {
	if cal.Alpha+cal.Beta >= 1 {
		return nil, ErrNonStationary
	}
	return &VolatilityState{
		omega:    cal.Omega,
		alpha:    cal.Alpha,
		beta:     cal.Beta,
		variance: cal.BaselineVol * cal.BaselineVol,
		floor:    cal.FloorVar,
		cap:      cal.CapVar,
	}, nil
}

// Update advances the recursion with the previous bar's unpredictable shock
// (post-drift residual) and returns the new conditional sigma.
func (v *VolatilityState) Update(prevResid float64) float64 {
	v.variance = v.omega + v.alpha*prevResid*prevResid + v.beta*v.variance
	if v.variance < v.floor {
		v.variance = v.floor
	}
	if v.variance > v.cap {
		v.variance = v.cap
	}
	return math.Sqrt(v.variance)
}
