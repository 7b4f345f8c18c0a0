package models

// Requests for candle generation HTTP endpoints. Defined in domain for consistency and reuse.

type CandlesRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required,min=1,max=32"`
	TF       string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w"`
	Limit    int    `query:"limit" json:"limit" validate:"gte=0,lte=50000"`
	Days     int    `query:"days" json:"days" validate:"gte=0,lte=365"`
	Start    string `query:"start" json:"start"`
	End      string `query:"end" json:"end"`
	Scenario string `query:"scenario" json:"scenario" default:"auto" validate:"oneof=auto bull bear sideways"`
	Seed     int64  `query:"seed" json:"seed" default:"42"`
}

type StreamRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required,min=1,max=32"`
	TF       string `query:"tf" json:"tf" default:"1m" validate:"oneof=1m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w"`
	Limit    int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=10000"`
	Scenario string `query:"scenario" json:"scenario" default:"auto" validate:"oneof=auto bull bear sideways"`
	Seed     int64  `query:"seed" json:"seed" default:"42"`
	PaceMs   int    `query:"pace_ms" json:"pace_ms" default:"100" validate:"gte=0,lte=10000"`
}
