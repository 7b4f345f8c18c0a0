package models

import "time"

// Frame is the indexed, columnar form of a candle sequence: a timestamp
// index plus floating-point OHLC columns and an integer volume column.
type Frame struct {
	Index  []time.Time `json:"index"`
	Open   []float64   `json:"open"`
	High   []float64   `json:"high"`
	Low    []float64   `json:"low"`
	Close  []float64   `json:"close"`
	Volume []int64     `json:"volume"`
}

// NewFrame converts an ordered candle sequence into its columnar form.
func NewFrame(candles []Candle) *Frame {
	f := &Frame{
		Index:  make([]time.Time, len(candles)),
		Open:   make([]float64, len(candles)),
		High:   make([]float64, len(candles)),
		Low:    make([]float64, len(candles)),
		Close:  make([]float64, len(candles)),
		Volume: make([]int64, len(candles)),
	}
	for i, c := range candles {
		f.Index[i] = c.Timestamp
		f.Open[i] = c.Open
		f.High[i] = c.High
		f.Low[i] = c.Low
		f.Close[i] = c.Close
		f.Volume[i] = c.Volume
	}
	return f
}

// Len returns the number of rows in the frame.
func (f *Frame) Len() int { return len(f.Index) }
