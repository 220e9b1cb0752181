package engine

import (
	"math"

	"github.com/ishanbais13-gif/stackiq-go/internal/features"
)

// Plan is the sized position proposal for one symbol.
type Plan struct {
	Signal     Signal   `json:"signal"`
	Confidence float64  `json:"confidence"`
	Entry      float64  `json:"entry"`
	Target     float64  `json:"target"`
	Stop       float64  `json:"stop"`
	ATR        *float64 `json:"atr"`
	Shares     int      `json:"shares"`
	BudgetUsed float64  `json:"budget_used"`
	Rationale  []string `json:"rationale"`
}

// maxRationale caps the explanatory strings carried on a plan.
const maxRationale = 8

// RiskMultiple selects the target distance in ATR units from the current
// volatility regime (ATR as a share of price).
func RiskMultiple(atrPercent float64) float64 {
	switch {
	case atrPercent <= 0.01:
		return 0.75
	case atrPercent <= 0.03:
		return 1.0
	case atrPercent <= 0.06:
		return 1.2
	default:
		return 1.5
	}
}

// Shares sizes a position as the minimum of three independent caps, all in
// whole shares: a Kelly-style fraction of budget scaled by the confidence
// edge, a fixed-risk cap (1% of budget, floor $10) divided by the stop
// distance, and the hard budget cap.
func Shares(confidence, entry, stop, budget float64) int {
	if entry <= 0 {
		return 0
	}

	edge := math.Max(-0.25, math.Min(0.25, (confidence-50.0)/100.0))
	kellyFraction := math.Max(0.0, math.Min(0.1, 2*edge))

	riskCap := math.Max(0.01*budget, 10.0)
	stopDist := math.Abs(entry - stop)
	if stopDist == 0 {
		stopDist = 0.02 * entry
	}

	sharesKelly := int(kellyFraction * budget / entry)
	sharesRisk := 0
	if stopDist > 0 {
		sharesRisk = int(riskCap / stopDist)
	}
	sharesBudget := int(budget / entry)

	shares := sharesKelly
	if sharesRisk < shares {
		shares = sharesRisk
	}
	if sharesBudget < shares {
		shares = sharesBudget
	}
	if shares < 0 {
		shares = 0
	}
	return shares
}

// PlanPosition scores a feature snapshot and turns the result into a sized
// position plan against the given budget.
func PlanPosition(f *features.Snapshot, budget, buyThreshold, sellThreshold float64, w Weights) *Plan {
	price := f.Price
	atr := 0.0
	if f.ATR != nil {
		atr = *f.ATR
	}
	atrp := 0.0
	if f.ATRPercent != nil {
		atrp = *f.ATRPercent
	}

	confidence, rationale := Score(f, w)
	signal := Decide(confidence, buyThreshold, sellThreshold)
	r := RiskMultiple(atrp)

	entry := price
	target := price + r*atr
	stop := price - atr
	if signal == SignalSell {
		target = price - r*atr
		stop = price + atr
	}

	shares := Shares(confidence, entry, stop, budget)

	if len(rationale) > maxRationale {
		rationale = rationale[:maxRationale]
	}

	plan := &Plan{
		Signal:     signal,
		Confidence: roundTo(confidence, 1),
		Entry:      roundTo(entry, 4),
		Target:     roundTo(target, 4),
		Stop:       roundTo(stop, 4),
		Shares:     shares,
		BudgetUsed: roundTo(float64(shares)*entry, 2),
		Rationale:  rationale,
	}
	if f.ATR != nil {
		rounded := roundTo(atr, 4)
		plan.ATR = &rounded
	}
	return plan
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
