package usecase

import (
	"fmt"
	"time"

	"mockflow/internal/domain/models"
	"mockflow/internal/domain/repository"
	"mockflow/internal/engine"
	"mockflow/pkg/util"
)

// Fixed reference date for relative (day-count) requests, so default
// requests reproduce across wall-clock time.
var referenceDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	defaultDays      = 30
	maxDays          = 365
	subHourDeriveCap = 2000  // derived bar counts for sub-hour timeframes
	globalDeriveCap  = 10000 // derived bar counts, any timeframe
)

// ResolveParams is the raw public call surface: symbol, timeframe string and
// mutually exclusive day-count / date-range / explicit-limit forms.
type ResolveParams struct {
	Symbol   string
	TF       string
	Limit    int
	Days     int
	Start    time.Time
	End      time.Time
	Scenario string
	Seed     int64
}

// Resolve turns the public parameters into a fully resolved engine request:
// it rejects unknown timeframes, enforces mutual exclusivity among the three
// request forms, computes the bar count and start timestamp, normalizes the
// scenario, and clamps implicitly derived counts for safety. An explicitly
// supplied limit is always honored verbatim.
func Resolve(p ResolveParams) (engine.Request, error) {
	var zero engine.Request

	if p.Symbol == "" {
		return zero, fmt.Errorf("%w: symbol is required", engine.ErrInvalidRequest)
	}
	tf := repository.Timeframe(p.TF)
	if p.TF == "" {
		tf = repository.DefaultTimeframe()
	}
	if !repository.IsValidTimeframe(tf) {
		return zero, fmt.Errorf("%w: unknown timeframe %q", engine.ErrInvalidRequest, p.TF)
	}
	scenario := models.Scenario(p.Scenario)
	if p.Scenario == "" {
		scenario = models.ScenarioAuto
	}
	if !scenario.IsValid() {
		return zero, fmt.Errorf("%w: unknown scenario %q", engine.ErrInvalidRequest, p.Scenario)
	}

	hasRange := !p.Start.IsZero() || !p.End.IsZero()
	hasDays := p.Days > 0
	hasLimit := p.Limit > 0

	forms := 0
	for _, set := range []bool{hasRange, hasDays, hasLimit} {
		if set {
			forms++
		}
	}
	if forms > 1 {
		return zero, fmt.Errorf("%w: days, start/end and limit are mutually exclusive", engine.ErrInvalidRequest)
	}

	dt := tf.Duration()
	var (
		bars  int
		start time.Time
	)

	switch {
	case hasRange:
		if p.Start.IsZero() || p.End.IsZero() {
			return zero, fmt.Errorf("%w: start and end must be provided together", engine.ErrInvalidRequest)
		}
		if !p.Start.Before(p.End) {
			return zero, fmt.Errorf("%w: start must be before end", engine.ErrInvalidRequest)
		}
		from, to := util.AlignFromTo(p.Start, p.End, dt)
		bars = int(to.Sub(from) / dt)
		if bars < 1 {
			bars = 1
		}
		bars = capDerived(bars, tf)
		start = from

	case hasLimit:
		// explicit limit: honored verbatim, never clamped
		bars = p.Limit
		start = referenceDate.Add(-time.Duration(bars) * dt)

	default:
		days := p.Days
		if days == 0 {
			days = defaultDays
		}
		if days > maxDays {
			return zero, fmt.Errorf("%w: days cannot exceed %d", engine.ErrInvalidRequest, maxDays)
		}
		bars = int(time.Duration(days) * 24 * time.Hour / dt)
		if bars < 1 {
			bars = 1
		}
		bars = capDerived(bars, tf)
		start = referenceDate.AddDate(0, 0, -days)
	}

	return engine.Request{
		Symbol:    p.Symbol,
		Timeframe: tf,
		BarCount:  bars,
		Start:     start.UTC(),
		Scenario:  scenario,
		Seed:      p.Seed,
	}, nil
}

// capDerived clamps implicitly derived bar counts: a tighter cap for
// sub-hour timeframes, then a global safety cap.
func capDerived(bars int, tf repository.Timeframe) int {
	if tf.Duration() < time.Hour && bars > subHourDeriveCap {
		return subHourDeriveCap
	}
	if bars > globalDeriveCap {
		return globalDeriveCap
	}
	return bars
}
