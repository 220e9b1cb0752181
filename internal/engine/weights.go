package engine

// Component names, in canonical order. This order is shared by
// Weights.Slice and WeightsFromSlice.
var ComponentNames = []string{
	"momentum", "trend", "meanrev", "breakout", "altdata", "vol", "event",
}

// Weights holds the per-component scoring weights. It is a plain value
// passed explicitly into every scoring and backtest call; there is no shared
// mutable table anywhere in the engine, which makes per-symbol and
// per-variant work safe to run concurrently.
type Weights struct {
	Momentum float64 `json:"momentum"`
	Trend    float64 `json:"trend"`
	MeanRev  float64 `json:"meanrev"`
	Breakout float64 `json:"breakout"`
	AltData  float64 `json:"altdata"`
	Vol      float64 `json:"vol"`
	Event    float64 `json:"event"`
}

// DefaultWeights returns the hand-tuned baseline weights.
func DefaultWeights() Weights {
	return Weights{
		Momentum: 0.27,
		Trend:    0.18,
		MeanRev:  0.20,
		Breakout: 0.12,
		AltData:  0.15,
		Vol:      0.05,
		Event:    0.03,
	}
}

// Slice returns the weights in canonical component order.
func (w Weights) Slice() []float64 {
	return []float64{w.Momentum, w.Trend, w.MeanRev, w.Breakout, w.AltData, w.Vol, w.Event}
}

// WeightsFromSlice rebuilds a Weights value from canonical component order.
func WeightsFromSlice(v []float64) Weights {
	var w Weights
	if len(v) != len(ComponentNames) {
		return w
	}
	w.Momentum, w.Trend, w.MeanRev, w.Breakout = v[0], v[1], v[2], v[3]
	w.AltData, w.Vol, w.Event = v[4], v[5], v[6]
	return w
}

// Sum returns the total of all component weights.
func (w Weights) Sum() float64 {
	total := 0.0
	for _, v := range w.Slice() {
		total += v
	}
	return total
}

// Normalize scales the weights to sum to 1. A zero sum leaves the weights
// untouched (the divisor is treated as 1).
func (w Weights) Normalize() Weights {
	sum := w.Sum()
	if sum == 0 {
		return w
	}
	vals := w.Slice()
	for i := range vals {
		vals[i] /= sum
	}
	return WeightsFromSlice(vals)
}
