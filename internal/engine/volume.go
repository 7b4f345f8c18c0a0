package engine

import "math"

const (
	volumeVolWeight  = 0.5   // k1: weight of the volatility factor
	volumeMoveWeight = 0.5   // k2: weight of the move-size factor
	volumeCycleAmp   = 0.3   // amplitude of the cyclical pattern
	volumeSpikeProb  = 0.005 // news-event proxy per bar
)

// volumeModel derives per-bar volume from realized move size, conditional
// volatility and a cyclical pattern matched to the timeframe's natural cycle.
// Volume spikes never feed back into next-bar volatility.
type volumeModel struct {
	base     float64
	baseline float64
	cycle    int
}

func newVolumeModel(cal Calibration) volumeModel {
	return volumeModel{
		base:     cal.BaseVolume,
		baseline: cal.BaselineVol,
		cycle:    cal.CyclePeriod,
	}
}

// sample draws this bar's volume. Always a positive integer.
func (v volumeModel) sample(s *Stream, bar int, sigma, ret float64) int64 {
	volFactor := 1 + volumeVolWeight*sigma/v.baseline
	moveFactor := 1 + volumeMoveWeight*math.Abs(ret)/v.baseline
	cyclical := 1 + volumeCycleAmp*math.Sin(2*math.Pi*float64(bar)/float64(v.cycle))
	noise := 0.85 + 0.3*s.Float64()

	vol := v.base * volFactor * moveFactor * cyclical * noise

	if s.Float64() < volumeSpikeProb {
		vol *= 3 + 7*s.Float64()
	}

	n := int64(math.Round(vol))
	if n < 1 {
		n = 1
	}
	return n
}
