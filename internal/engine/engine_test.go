package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mockflow/internal/domain/models"
	"mockflow/internal/domain/repository"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testRequest(n int, scenario models.Scenario) Request {
	return Request{
		Symbol:    "BTCUSDT",
		Timeframe: repository.TF1h,
		BarCount:  n,
		Start:     testStart,
		Scenario:  scenario,
		Seed:      42,
	}
}

func generate(t *testing.T, req Request) []models.Candle {
	t.Helper()
	candles, err := New().Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, candles, req.BarCount)
	return candles
}

func TestGenerateDeterminism(t *testing.T) {
	req := testRequest(720, models.ScenarioBull)
	a := generate(t, req)
	b := generate(t, req)
	require.Equal(t, a, b, "identical requests must produce identical output")

	// separate engine instance, same inputs
	c, err := New().Generate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, a, c)
}

func TestGenerateSeedChangesOutput(t *testing.T) {
	req := testRequest(720, models.ScenarioBull)
	a := generate(t, req)

	req.Seed = 43
	b := generate(t, req)

	changed := false
	for i := range a {
		if a[i] != b[i] {
			changed = true
			break
		}
	}
	require.True(t, changed, "changing the seed must change at least one value")
	for i, c := range b {
		require.True(t, c.Valid(), "bar %d violates OHLCV invariant: %+v", i, c)
	}
}

func TestOHLCInvariantAllScenariosAndTimeframes(t *testing.T) {
	scenarios := []models.Scenario{models.ScenarioAuto, models.ScenarioBull, models.ScenarioBear, models.ScenarioSideways}
	for _, tf := range repository.Timeframes() {
		for _, sc := range scenarios {
			req := Request{
				Symbol:    "ETHUSDT",
				Timeframe: tf,
				BarCount:  300,
				Start:     testStart,
				Scenario:  sc,
				Seed:      7,
			}
			candles := generate(t, req)
			for i, c := range candles {
				if !c.Valid() {
					t.Fatalf("tf=%s scenario=%s bar=%d invalid candle %+v", tf, sc, i, c)
				}
			}
		}
	}
}

func TestOHLCInvariantWithGapNoise(t *testing.T) {
	e := New(WithGapNoise(true))
	req := testRequest(1000, models.ScenarioSideways)
	candles, err := e.Generate(context.Background(), req)
	require.NoError(t, err)
	for i, c := range candles {
		require.True(t, c.Valid(), "bar %d invalid with gaps enabled: %+v", i, c)
	}
}

func TestSingleBar(t *testing.T) {
	for _, sc := range []models.Scenario{models.ScenarioAuto, models.ScenarioBull, models.ScenarioBear, models.ScenarioSideways} {
		candles := generate(t, testRequest(1, sc))
		c := candles[0]
		require.True(t, c.Valid(), "scenario=%s candle %+v", sc, c)
		require.Equal(t, testStart, c.Timestamp)
		require.Greater(t, c.Open, 0.0, "first open must be well-defined")
	}
}

func TestLengthAndSpacing(t *testing.T) {
	req := Request{
		Symbol:    "SOLUSDT",
		Timeframe: repository.TF15m,
		BarCount:  500,
		Start:     testStart,
		Scenario:  models.ScenarioAuto,
		Seed:      1,
	}
	candles := generate(t, req)
	dt := req.Timeframe.Duration()
	for i, c := range candles {
		want := testStart.Add(time.Duration(i) * dt)
		require.True(t, c.Timestamp.Equal(want), "bar %d timestamp %v, want %v", i, c.Timestamp, want)
	}
}

func logReturns(candles []models.Candle) []float64 {
	rs := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		rs = append(rs, math.Log(candles[i].Close/candles[i-1].Close))
	}
	return rs
}

func lag1Autocorr(xs []float64) float64 {
	n := len(xs)
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(n)

	var num, den float64
	for i := 0; i < n-1; i++ {
		num += (xs[i] - mean) * (xs[i+1] - mean)
	}
	for _, x := range xs {
		den += (x - mean) * (x - mean)
	}
	return num / den
}

func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func TestVolatilityClustering(t *testing.T) {
	req := testRequest(5000, models.ScenarioSideways)
	candles := generate(t, req)
	rs := logReturns(candles)

	sq := make([]float64, len(rs))
	for i, r := range rs {
		sq[i] = r * r
	}
	acf := lag1Autocorr(sq)
	require.Greater(t, acf, 0.05, "squared returns must cluster, got lag-1 acf %.4f", acf)
}

func TestDriftSignByScenario(t *testing.T) {
	baseline := baselineVolByTF[repository.TF1h]

	bull := generate(t, testRequest(2000, models.ScenarioBull))
	require.Greater(t, median(logReturns(bull)), 0.0, "bull median log return must be positive")

	bear := generate(t, testRequest(2000, models.ScenarioBear))
	require.Less(t, median(logReturns(bear)), 0.0, "bear median log return must be negative")

	side := generate(t, testRequest(3000, models.ScenarioSideways))
	m := median(logReturns(side))
	require.Less(t, math.Abs(m), 0.15*baseline, "sideways median log return %.6f not near zero", m)
}

func TestPricesStayPositive(t *testing.T) {
	req := testRequest(5000, models.ScenarioBear)
	for _, c := range generate(t, req) {
		require.Greater(t, c.Low, 0.0)
		require.Greater(t, c.Close, 0.0)
	}
}

func TestAutoScenarioStability(t *testing.T) {
	req := testRequest(500, models.ScenarioAuto)
	a := generate(t, req)
	b := generate(t, req)
	require.Equal(t, a, b, "auto scenario must be stable for identical symbol+timeframe+seed")

	require.Equal(t, symbolRegimeV1("BTCUSDT"), symbolRegimeV1("BTCUSDT"))
}

func TestGenerateRejectsInvalidRequests(t *testing.T) {
	e := New()
	cases := []struct {
		name string
		req  Request
	}{
		{"zero bars", Request{Symbol: "X", Timeframe: repository.TF1h, Scenario: models.ScenarioAuto, Start: testStart}},
		{"negative bars", Request{Symbol: "X", Timeframe: repository.TF1h, BarCount: -5, Scenario: models.ScenarioAuto, Start: testStart}},
		{"unknown timeframe", Request{Symbol: "X", Timeframe: "7m", BarCount: 10, Scenario: models.ScenarioAuto, Start: testStart}},
		{"unknown scenario", Request{Symbol: "X", Timeframe: repository.TF1h, BarCount: 10, Scenario: "crab", Start: testStart}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Generate(context.Background(), tc.req)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestGenerateCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Generate(ctx, testRequest(10000, models.ScenarioAuto))
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNonStationaryCalibrationRejected(t *testing.T) {
	_, err := NewCalibration(repository.TF1h, 0.3, 0.7, 50000)
	require.ErrorIs(t, err, ErrNonStationary)

	_, err = NewCalibration(repository.TF1h, 0.5, 0.6, 50000)
	require.ErrorIs(t, err, ErrNonStationary)

	_, err = NewVolatilityState(Calibration{Alpha: 0.2, Beta: 0.8})
	require.ErrorIs(t, err, ErrNonStationary)
}

func TestVolatilityFloor(t *testing.T) {
	cal, err := NewCalibration(repository.TF1h, defaultAlpha, defaultBeta, 50000)
	require.NoError(t, err)
	v, err := NewVolatilityState(cal)
	require.NoError(t, err)

	// feed zero shocks until the recursion bottoms out
	var sigma float64
	for i := 0; i < 500; i++ {
		sigma = v.Update(0)
	}
	require.GreaterOrEqual(t, sigma, math.Sqrt(cal.FloorVar))
	require.Greater(t, sigma, 0.0)
}

func TestCalibrationCacheConcurrentLookup(t *testing.T) {
	cache := NewCalibrationCache(50000)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for _, tf := range repository.Timeframes() {
				if _, err := cache.Get(tf); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	a, err := cache.Get(repository.TF1h)
	require.NoError(t, err)
	b, err := cache.Get(repository.TF1h)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestShockDistributionFatTails(t *testing.T) {
	s := NewStream(99)
	n := 200000
	var m2, m4 float64
	for i := 0; i < n; i++ {
		z := drawShock(s)
		m2 += z * z
		m4 += z * z * z * z
	}
	m2 /= float64(n)
	m4 /= float64(n)

	require.InDelta(t, 1.0, m2, 0.05, "shock variance must be ~1")
	kurtosis := m4 / (m2 * m2)
	require.Greater(t, kurtosis, 3.3, "shock must have positive excess kurtosis, got %.2f", kurtosis)
}

func TestSeedForIsStable(t *testing.T) {
	a := SeedFor(42, "BTCUSDT", "1h")
	b := SeedFor(42, "BTCUSDT", "1h")
	require.Equal(t, a, b)
	require.NotEqual(t, a, SeedFor(43, "BTCUSDT", "1h"))
	require.NotEqual(t, a, SeedFor(42, "ETHUSDT", "1h"))
	require.NotEqual(t, a, SeedFor(42, "BTCUSDT", "4h"))
}
