package models

import (
	"time"

	"github.com/ishanbais13-gif/stackiq-go/internal/utils"
)

// Candles holds a daily OHLCV history as parallel, time-ascending arrays.
// This mirrors the provider wire format: t/o/h/l/c/v of equal length.
type Candles struct {
	Symbol string    `json:"symbol"`
	T      []int64   `json:"t"`
	O      []float64 `json:"o"`
	H      []float64 `json:"h"`
	L      []float64 `json:"l"`
	C      []float64 `json:"c"`
	V      []float64 `json:"v"`
}

// Len returns the number of bars.
func (c *Candles) Len() int {
	return len(c.T)
}

// Validate checks the parallel-array invariant and rejects payloads without
// close prices.
func (c *Candles) Validate() error {
	n := len(c.T)
	if n == 0 || len(c.C) == 0 {
		return utils.NewInvalidSnapshotError(c.Symbol, "candle payload has no close prices")
	}
	if len(c.O) != n || len(c.H) != n || len(c.L) != n || len(c.C) != n || len(c.V) != n {
		return utils.NewInvalidSnapshotError(c.Symbol, "candle arrays are not the same length")
	}
	return nil
}

// BarDate returns the calendar date of bar i in UTC.
func (c *Candles) BarDate(i int) time.Time {
	return time.Unix(c.T[i], 0).UTC()
}

// IndexAtOrAfter returns the first bar index whose timestamp is >= the given
// date, or the last index when every bar is earlier.
func (c *Candles) IndexAtOrAfter(date time.Time) int {
	t := date.Unix()
	for i, ts := range c.T {
		if ts >= t {
			return i
		}
	}
	return len(c.T) - 1
}
