// Package engine implements the ensemble scoring model: seven independent
// component scorers combined through a weighted sum into a confidence value
// in (0,100), plus the position plan derived from it.
package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/ishanbais13-gif/stackiq-go/internal/features"
)

// Signal is the trading decision derived from a confidence score.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// Default decision thresholds.
const (
	DefaultBuyThreshold  = 67.0
	DefaultSellThreshold = 33.0
)

type componentScore struct {
	name  string
	value float64
	notes []string
}

// Score runs all seven component scorers against a feature snapshot and
// folds them into a confidence value using the given weights. The raw
// weighted sum is unbounded; tanh(raw*1.5) maps it smoothly into (0,100) so
// extreme scores asymptote instead of clipping.
func Score(f *features.Snapshot, w Weights) (float64, []string) {
	weightOf := map[string]float64{
		"momentum": w.Momentum,
		"trend":    w.Trend,
		"meanrev":  w.MeanRev,
		"breakout": w.Breakout,
		"altdata":  w.AltData,
		"vol":      w.Vol,
		"event":    w.Event,
	}

	parts := make([]componentScore, 0, len(ComponentNames))
	for _, name := range ComponentNames {
		var v float64
		var notes []string
		switch name {
		case "momentum":
			v, notes = scoreMomentum(f)
		case "trend":
			v, notes = scoreTrend(f)
		case "meanrev":
			v, notes = scoreMeanReversion(f)
		case "breakout":
			v, notes = scoreBreakout(f)
		case "altdata":
			v, notes = scoreAltData(f)
		case "vol":
			v, notes = scoreVolatilityGuard(f)
		case "event":
			v, notes = scoreEventRisk(f)
		}
		parts = append(parts, componentScore{name: name, value: v, notes: notes})
	}

	raw := 0.0
	rationale := make([]string, 0, len(parts))
	for _, p := range parts {
		weight := weightOf[p.name]
		raw += weight * p.value
		rationale = append(rationale, fmt.Sprintf("%s: %+.3f (w=%g) | %s",
			p.name, p.value, weight, strings.Join(p.notes, " ; ")))
	}

	confidence := (math.Tanh(raw*1.5) + 1) / 2 * 100.0
	return confidence, rationale
}

// Decide maps a confidence value onto a trading signal given the buy and
// sell thresholds.
func Decide(confidence, buyThreshold, sellThreshold float64) Signal {
	switch {
	case confidence >= buyThreshold:
		return SignalBuy
	case confidence <= sellThreshold:
		return SignalSell
	default:
		return SignalHold
	}
}
