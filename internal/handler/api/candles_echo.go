package api

import (
	"errors"
	"net/http"

	models "mockflow/internal/domain/models"
	"mockflow/internal/engine"
	"mockflow/internal/service/ratelimit"
	"mockflow/internal/usecase"
	xhttp "mockflow/pkg/http"
	xlogger "mockflow/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CandlesEchoHandler implements Echo-based HTTP handlers for candle generation.
type CandlesEchoHandler struct {
	logger  *xlogger.Logger
	gen     *usecase.GenerateUseCase
	limiter *ratelimit.Limiter

	limitCapacity float64
	limitRefill   float64
}

// NewCandlesEchoHandler creates the handler. limiter may be nil to disable
// request rate limiting.
func NewCandlesEchoHandler(logger *xlogger.Logger, gen *usecase.GenerateUseCase, limiter *ratelimit.Limiter, capacity, refillPerSec float64) *CandlesEchoHandler {
	return &CandlesEchoHandler{
		logger:        logger,
		gen:           gen,
		limiter:       limiter,
		limitCapacity: capacity,
		limitRefill:   refillPerSec,
	}
}

func (h *CandlesEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/candles", h.Candles)
	g.GET("/stream", h.Stream)
	e.GET("/healthz", h.Health)
}

func (h *CandlesEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CandlesEchoHandler) Candles(c echo.Context) error {
	if !h.allow(c) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", http.StatusTooManyRequests))
	}

	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	params := usecase.ResolveParams{
		Symbol:   req.Symbol,
		TF:       req.TF,
		Limit:    req.Limit,
		Days:     req.Days,
		Scenario: req.Scenario,
		Seed:     req.Seed,
	}
	if req.Start != "" || req.End != "" {
		start, okStart := xhttp.ParseTime(req.Start)
		end, okEnd := xhttp.ParseTime(req.End)
		if !okStart || !okEnd {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("start and end must both be RFC3339 or unix timestamps"))
		}
		params.Start = start
		params.End = end
	}

	res, err := h.gen.Generate(c.Request().Context(), params)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidRequest) || errors.Is(err, engine.ErrNonStationary) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
		}
		h.logger.Error("generate usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	// Deterministic output: clients may cache aggressively.
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.SuccessResponse(c, res)
}

func (h *CandlesEchoHandler) allow(c echo.Context) bool {
	if h.limiter == nil {
		return true
	}
	return h.limiter.Allow(c.RealIP(), h.limitCapacity, h.limitRefill)
}
