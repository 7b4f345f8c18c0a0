package engine

import "math"

// Excursion scale for intrabar wicks, in units of sigma*close.
const wickScale = 0.55

// Gap noise scale, in units of sigma, applied to the open when enabled.
const gapScale = 0.2

// synthOHLC turns two successive close levels into a candle body and wicks.
// Extremes are constructed, not sampled-and-rejected: two independent
// non-negative half-normal excursions are added above max(open,close) and
// below min(open,close), so the OHLC ordering invariant holds with
// probability 1, including the degenerate sigma -> 0 doji case.
func synthOHLC(s *Stream, prevClose, close, sigma float64, gapNoise bool) (open, high, low float64) {
	open = prevClose
	if gapNoise {
		open = prevClose * (1 + gapScale*sigma*s.Norm())
		if open <= 0 {
			open = prevClose
		}
	}

	hi := math.Max(open, close)
	lo := math.Min(open, close)

	up := math.Abs(s.Norm()) * wickScale * sigma * close
	down := math.Abs(s.Norm()) * wickScale * sigma * close

	high = hi + up
	low = lo - down
	if low <= 0 {
		low = lo * 0.5 // clamp keeps low positive and below the body
	}
	return open, high, low
}
