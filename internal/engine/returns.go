package engine

import "math"

// Shock distribution: a two-component Gaussian mixture. With probability
// tailProb the shock is drawn from a wider component, which gives the
// standardized shock positive excess kurtosis relative to a plain normal.
const (
	tailProb  = 0.08
	tailScale = 2.5
)

// mixtureNorm rescales the mixture back to unit variance:
// Var = (1-p) + p*s^2 for the unscaled mixture.
var mixtureNorm = math.Sqrt(1 - tailProb + tailProb*tailScale*tailScale)

// drawShock draws one standardized fat-tailed shock z_t.
// It always consumes exactly one uniform and one normal from the stream.
func drawShock(s *Stream) float64 {
	u := s.Float64()
	n := s.Norm()
	if u < tailProb {
		n *= tailScale
	}
	return n / mixtureNorm
}

// logReturn combines drift, regime volatility multiplier, conditional sigma
// and shock into the per-bar log return, and returns alongside it the
// residual fed back into the variance recursion. The residual excludes the
// deterministic drift term so clustering reflects unpredictable shocks only.
func logReturn(drift, volMult, sigma, z float64) (r, resid float64) {
	resid = sigma * z
	r = drift + volMult*resid
	return r, resid
}
