package engine

import (
	"fmt"
	"sync"

	"mockflow/internal/domain/repository"
)

// Calibration carries the per-timeframe constants a run is generated with.
// Values are fixed at construction; a Calibration is never mutated afterwards.
type Calibration struct {
	Timeframe   repository.Timeframe
	BaselineVol float64 // long-run per-bar sigma
	Alpha       float64 // shock weight in the variance recursion
	Beta        float64 // persistence weight in the variance recursion
	Omega       float64 // derived so long-run variance equals BaselineVol^2
	FloorVar    float64 // hard variance floor, prevents zero-width candles
	CapVar      float64 // stability ceiling, mirrors the floor on the way up
	BaseVolume  float64 // per-bar activity level, wider bars aggregate more
	CyclePeriod int     // bars per natural volume cycle
	BasePrice   float64
}

// baselineVolByTF maps each timeframe to its long-run per-bar sigma.
// Wider bars carry proportionally more volatility.
var baselineVolByTF = map[repository.Timeframe]float64{
	repository.TF1m:  0.003,
	repository.TF5m:  0.006,
	repository.TF15m: 0.008,
	repository.TF30m: 0.012,
	repository.TF1h:  0.015,
	repository.TF2h:  0.020,
	repository.TF4h:  0.025,
	repository.TF6h:  0.028,
	repository.TF8h:  0.030,
	repository.TF12h: 0.035,
	repository.TF1d:  0.045,
	repository.TF3d:  0.065,
	repository.TF1w:  0.085,
}

const (
	defaultAlpha     = 0.10
	defaultBeta      = 0.85
	defaultBasePrice = 50000
)

// NewCalibration builds the calibration for a timeframe, enforcing the
// stationarity precondition alpha+beta < 1 at construction time.
func NewCalibration(tf repository.Timeframe, alpha, beta, basePrice float64) (Calibration, error) {
	if alpha+beta >= 1 {
		return Calibration{}, fmt.Errorf("%w: alpha=%.3f beta=%.3f", ErrNonStationary, alpha, beta)
	}
	baseline, ok := baselineVolByTF[tf]
	if !ok {
		return Calibration{}, fmt.Errorf("%w: no calibration for timeframe %q", ErrInvalidRequest, tf)
	}

	minutes := tf.Minutes()
	cycle := 0
	if minutes > 0 {
		cycle = 1440 / minutes // approximate daily cycle
	}
	if cycle < 4 {
		cycle = 7 // daily and wider bars follow a weekly-ish cycle
	}

	return Calibration{
		Timeframe:   tf,
		BaselineVol: baseline,
		Alpha:       alpha,
		Beta:        beta,
		Omega:       baseline * baseline * (1 - alpha - beta),
		FloorVar:    (0.3 * baseline) * (0.3 * baseline),
		CapVar:      (3.0 * baseline) * (3.0 * baseline),
		BaseVolume:  20000 * float64(minutes),
		CyclePeriod: cycle,
		BasePrice:   basePrice,
	}, nil
}

// CalibrationCache is a read-mostly cache of per-timeframe calibrations.
// Entries are immutable after insertion and safe for concurrent lookup;
// in-flight generation runs never mutate it.
type CalibrationCache struct {
	mu        sync.RWMutex
	entries   map[repository.Timeframe]Calibration
	basePrice float64
}

// NewCalibrationCache creates an empty cache with the given base price.
func NewCalibrationCache(basePrice float64) *CalibrationCache {
	if basePrice <= 0 {
		basePrice = defaultBasePrice
	}
	return &CalibrationCache{
		entries:   make(map[repository.Timeframe]Calibration),
		basePrice: basePrice,
	}
}

// Get returns the calibration for a timeframe, building it on first use.
func (c *CalibrationCache) Get(tf repository.Timeframe) (Calibration, error) {
	c.mu.RLock()
	cal, ok := c.entries[tf]
	c.mu.RUnlock()
	if ok {
		return cal, nil
	}

	cal, err := NewCalibration(tf, defaultAlpha, defaultBeta, c.basePrice)
	if err != nil {
		return Calibration{}, err
	}

	c.mu.Lock()
	if existing, ok := c.entries[tf]; ok {
		cal = existing
	} else {
		c.entries[tf] = cal
	}
	c.mu.Unlock()
	return cal, nil
}
