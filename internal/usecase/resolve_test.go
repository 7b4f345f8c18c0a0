package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mockflow/internal/domain/models"
	"mockflow/internal/domain/repository"
	"mockflow/internal/engine"
)

func TestResolveExplicitLimit(t *testing.T) {
	req, err := Resolve(ResolveParams{Symbol: "BTCUSDT", TF: "1h", Limit: 720, Scenario: "bull", Seed: 42})
	require.NoError(t, err)
	require.Equal(t, 720, req.BarCount)
	require.Equal(t, repository.TF1h, req.Timeframe)
	require.Equal(t, models.ScenarioBull, req.Scenario)

	// explicit limit honored verbatim, above the derived caps
	req, err = Resolve(ResolveParams{Symbol: "BTCUSDT", TF: "1m", Limit: 30000})
	require.NoError(t, err)
	require.Equal(t, 30000, req.BarCount)
}

func TestResolveDays(t *testing.T) {
	req, err := Resolve(ResolveParams{Symbol: "BTCUSDT", TF: "1h", Days: 7})
	require.NoError(t, err)
	require.Equal(t, 7*24, req.BarCount)
	require.Equal(t, time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC), req.Start)
}

func TestResolveDefaultDays(t *testing.T) {
	req, err := Resolve(ResolveParams{Symbol: "BTCUSDT", TF: "1d"})
	require.NoError(t, err)
	require.Equal(t, 30, req.BarCount)
	require.Equal(t, models.ScenarioAuto, req.Scenario)
}

func TestResolveDefaultTimeframe(t *testing.T) {
	req, err := Resolve(ResolveParams{Symbol: "BTCUSDT", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, repository.DefaultTimeframe(), req.Timeframe)
}

func TestResolveDateRange(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	req, err := Resolve(ResolveParams{Symbol: "ETHUSDT", TF: "1h", Start: start, End: end})
	require.NoError(t, err)
	require.Equal(t, 24, req.BarCount)
	require.Equal(t, start, req.Start)
}

func TestResolveDerivedCaps(t *testing.T) {
	// 365 days of 1m bars would be >500k; sub-hour derived cap applies
	req, err := Resolve(ResolveParams{Symbol: "BTCUSDT", TF: "1m", Days: 365})
	require.NoError(t, err)
	require.Equal(t, subHourDeriveCap, req.BarCount)

	// 365 days of 1h bars derive 8760 bars, under the global cap
	req, err = Resolve(ResolveParams{Symbol: "BTCUSDT", TF: "1h", Days: 365})
	require.NoError(t, err)
	require.Equal(t, 8760, req.BarCount)
}

func TestResolveRejections(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	cases := []struct {
		name string
		p    ResolveParams
	}{
		{"missing symbol", ResolveParams{TF: "1h", Limit: 10}},
		{"unknown timeframe", ResolveParams{Symbol: "X", TF: "7m", Limit: 10}},
		{"unknown scenario", ResolveParams{Symbol: "X", TF: "1h", Limit: 10, Scenario: "crab"}},
		{"days and limit", ResolveParams{Symbol: "X", TF: "1h", Days: 7, Limit: 10}},
		{"days and range", ResolveParams{Symbol: "X", TF: "1h", Days: 7, Start: start, End: end}},
		{"limit and range", ResolveParams{Symbol: "X", TF: "1h", Limit: 10, Start: start, End: end}},
		{"start only", ResolveParams{Symbol: "X", TF: "1h", Start: start}},
		{"start after end", ResolveParams{Symbol: "X", TF: "1h", Start: end, End: start}},
		{"days over max", ResolveParams{Symbol: "X", TF: "1h", Days: 400}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.p)
			require.ErrorIs(t, err, engine.ErrInvalidRequest)
		})
	}
}
