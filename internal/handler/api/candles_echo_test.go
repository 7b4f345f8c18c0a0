package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"mockflow/internal/engine"
	"mockflow/internal/service/ratelimit"
	"mockflow/internal/usecase"
	applogger "mockflow/pkg/logger"
)

func newTestHandler(t *testing.T, limiter *ratelimit.Limiter, capacity, refill float64) (*echo.Echo, *CandlesEchoHandler) {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)

	uc := usecase.NewGenerateUseCase(engine.New(), nil, l)
	h := NewCandlesEchoHandler(l, uc, limiter, capacity, refill)

	e := echo.New()
	h.RegisterRoutes(e)
	return e, h
}

func doGet(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCandlesEndpoint(t *testing.T) {
	e, _ := newTestHandler(t, nil, 0, 0)

	rec := doGet(e, "/api/candles?symbol=BTCUSDT&tf=1h&limit=24")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status int                    `json:"status"`
		Data   usecase.GenerateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, http.StatusOK, body.Status)
	require.Equal(t, "BTCUSDT", body.Data.Symbol)
	require.Equal(t, "1h", body.Data.Timeframe)
	require.Equal(t, 24, body.Data.Count)
	require.NotNil(t, body.Data.Frame)
	require.Len(t, body.Data.Frame.Index, 24)
}

func TestCandlesEndpointDeterministic(t *testing.T) {
	e, _ := newTestHandler(t, nil, 0, 0)

	a := doGet(e, "/api/candles?symbol=ETHUSDT&tf=5m&limit=100&seed=7")
	b := doGet(e, "/api/candles?symbol=ETHUSDT&tf=5m&limit=100&seed=7")
	require.Equal(t, http.StatusOK, a.Code)
	require.Equal(t, a.Body.String(), b.Body.String())
}

func TestCandlesEndpointValidation(t *testing.T) {
	e, _ := newTestHandler(t, nil, 0, 0)

	cases := []struct {
		name   string
		target string
	}{
		{"missing symbol", "/api/candles?tf=1h"},
		{"unknown timeframe", "/api/candles?symbol=BTCUSDT&tf=42h"},
		{"limit too large", "/api/candles?symbol=BTCUSDT&limit=99999"},
		{"limit and days together", "/api/candles?symbol=BTCUSDT&limit=10&days=3"},
		{"bad scenario", "/api/candles?symbol=BTCUSDT&scenario=crab"},
		{"half a date range", "/api/candles?symbol=BTCUSDT&start=2024-01-01T00:00:00Z&end=nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doGet(e, tc.target)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCandlesEndpointRateLimited(t *testing.T) {
	e, _ := newTestHandler(t, ratelimit.New(), 1, 0.0001)

	first := doGet(e, "/api/candles?symbol=BTCUSDT&limit=5")
	require.Equal(t, http.StatusOK, first.Code)

	second := doGet(e, "/api/candles?symbol=BTCUSDT&limit=5")
	require.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestHealthEndpoint(t *testing.T) {
	e, _ := newTestHandler(t, nil, 0, 0)

	rec := doGet(e, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ok")
}
