// Package engine implements the stochastic OHLCV synthesis core: regime
// selection, recursive volatility clustering, fat-tailed return generation,
// intrabar OHLC construction and volume modeling, under strict determinism.
//
// A run is a pure sequential computation: each bar's variance and price
// depend on the previous bar's realized shock and close, so a single run
// executes on one goroutine. Independent runs share no mutable state (each
// owns its Stream and VolatilityState) and may execute concurrently.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"mockflow/internal/domain/models"
	"mockflow/internal/domain/repository"
)

// Request is a fully resolved generation request. Parameter resolution
// (day counts, date ranges, caps) happens upstream; the engine never
// observes an ambiguous or under-specified request.
type Request struct {
	Symbol    string
	Timeframe repository.Timeframe
	BarCount  int
	Start     time.Time
	Scenario  models.Scenario
	Seed      int64
}

func (r Request) validate() error {
	if r.BarCount <= 0 {
		return fmt.Errorf("%w: bar count must be positive, got %d", ErrInvalidRequest, r.BarCount)
	}
	if r.Timeframe.Duration() <= 0 {
		return fmt.Errorf("%w: unknown timeframe %q", ErrInvalidRequest, r.Timeframe)
	}
	if !r.Scenario.IsValid() {
		return fmt.Errorf("%w: unknown scenario %q", ErrInvalidRequest, r.Scenario)
	}
	return nil
}

// cancelCheckEvery bounds worst-case run time for very large bar counts via
// a cooperative cancellation check; the loop is otherwise CPU-bound.
const cancelCheckEvery = 1024

// Engine orchestrates the per-bar pipeline. Safe for concurrent use: all
// per-run state lives on the Generate stack.
type Engine struct {
	calib    *CalibrationCache
	gapNoise bool
}

// Option configures the engine.
type Option func(*Engine)

// WithGapNoise enables small multiplicative open gaps scaled by sigma.
// Gap draws come from the run's own stream, never an independent source.
func WithGapNoise(enabled bool) Option {
	return func(e *Engine) { e.gapNoise = enabled }
}

// WithBasePrice overrides the initial price level of generated series.
func WithBasePrice(p float64) Option {
	return func(e *Engine) { e.calib = NewCalibrationCache(p) }
}

// New creates a generation engine.
func New(opts ...Option) *Engine {
	e := &Engine{calib: NewCalibrationCache(defaultBasePrice)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate runs the full pipeline and returns exactly BarCount candles with
// strictly increasing timestamps spaced by the timeframe duration. Identical
// requests produce byte-identical output. Invalid requests fail before the
// first bar; once generation starts, completion is guaranteed unless the
// context is cancelled, and no partial sequence is ever returned.
func (e *Engine) Generate(ctx context.Context, req Request) ([]models.Candle, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	cal, err := e.calib.Get(req.Timeframe)
	if err != nil {
		return nil, err
	}
	vol, err := NewVolatilityState(cal)
	if err != nil {
		return nil, err
	}

	stream := NewStream(SeedFor(req.Seed, req.Symbol, string(req.Timeframe)))
	ctrl := NewController(req.Scenario, req.Symbol, req.BarCount)
	volumes := newVolumeModel(cal)

	dt := req.Timeframe.Duration()
	candles := make([]models.Candle, req.BarCount)

	prevClose := cal.BasePrice
	resid := cal.BaselineVol // start the recursion at long-run equilibrium

	for i := 0; i < req.BarCount; i++ {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("generation cancelled at bar %d: %w", i, err)
			}
		}

		drift, volMult, _ := ctrl.Step(stream, cal.BaselineVol)
		sigma := vol.Update(resid)
		z := drawShock(stream)
		r, eps := logReturn(drift, volMult, sigma, z)
		resid = eps

		close := prevClose * math.Exp(r)
		open, high, low := synthOHLC(stream, prevClose, close, sigma, e.gapNoise)
		volume := volumes.sample(stream, i, sigma, r)

		candles[i] = models.Candle{
			Timestamp: req.Start.Add(time.Duration(i) * dt),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
		}
		prevClose = close
	}

	return candles, nil
}
