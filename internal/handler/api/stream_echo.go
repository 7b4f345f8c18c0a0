package api

import (
	"errors"
	"net/http"
	"time"

	models "mockflow/internal/domain/models"
	"mockflow/internal/engine"
	"mockflow/internal/usecase"
	xhttp "mockflow/pkg/http"
	xlogger "mockflow/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Playback data is synthetic and public, no origin restriction.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type streamBar struct {
	Symbol string  `json:"symbol"`
	TF     string  `json:"tf"`
	T      int64   `json:"t"`
	O      float64 `json:"o"`
	H      float64 `json:"h"`
	L      float64 `json:"l"`
	C      float64 `json:"c"`
	V      int64   `json:"v"`
}

// Stream upgrades the connection to WebSocket and replays a generated
// candle sequence one bar at a time, paced by pace_ms. The same request
// always replays the same sequence.
func (h *CandlesEchoHandler) Stream(c echo.Context) error {
	if !h.allow(c) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", http.StatusTooManyRequests))
	}

	req := &models.StreamRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	resolved, err := usecase.Resolve(usecase.ResolveParams{
		Symbol:   req.Symbol,
		TF:       req.TF,
		Limit:    req.Limit,
		Scenario: req.Scenario,
		Seed:     req.Seed,
	})
	if err != nil {
		if errors.Is(err, engine.ErrInvalidRequest) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
		}
		return xhttp.AppErrorResponse(c, err)
	}

	candles, err := h.gen.GenerateCandles(c.Request().Context(), resolved)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidRequest) || errors.Is(err, engine.ErrNonStationary) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
		}
		h.logger.Error("stream generation failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()

	// Detect client disconnect; control frames are handled inside ReadMessage.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pace := time.Duration(req.PaceMs) * time.Millisecond
	var ticker *time.Ticker
	if pace > 0 {
		ticker = time.NewTicker(pace)
		defer ticker.Stop()
	}

	for _, cd := range candles {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-clientGone:
				return nil
			case <-ticker.C:
			}
		}
		bar := streamBar{
			Symbol: resolved.Symbol,
			TF:     string(resolved.Timeframe),
			T:      cd.Timestamp.Unix(),
			O:      cd.Open,
			H:      cd.High,
			L:      cd.Low,
			C:      cd.Close,
			V:      cd.Volume,
		}
		if err := conn.WriteJSON(bar); err != nil {
			return nil
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
	return nil
}
