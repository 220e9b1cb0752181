package engine

import (
	"fmt"
	"math"

	"github.com/ishanbais13-gif/stackiq-go/internal/features"
)

// Each scorer returns a bounded contribution plus human-readable rationale
// fragments. A nil feature contributes nothing.

func clampScore(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func scoreMomentum(f *features.Snapshot) (float64, []string) {
	mom := 0.0
	for _, part := range []struct {
		w float64
		v *float64
	}{
		{0.5, f.R5}, {0.35, f.R20}, {0.15, f.R60},
	} {
		if part.v != nil {
			mom += part.w * *part.v
		}
	}
	notes := []string{fmt.Sprintf("Momentum 5/20/60 = %.1f%% / %.1f%% / %.1f%%",
		orZero(f.R5)*100, orZero(f.R20)*100, orZero(f.R60)*100)}
	return clampScore(mom, -0.25, 0.25), notes
}

func scoreTrend(f *features.Snapshot) (float64, []string) {
	up := 0.0
	for _, part := range []struct {
		w float64
		v *float64
	}{
		{0.3, f.DistSMA20}, {0.35, f.DistSMA50}, {0.35, f.DistSMA200},
	} {
		if part.v != nil {
			up += part.w * (-*part.v)
		}
	}
	if f.MACD != nil && *f.MACD != 0 && f.MACDSignal != nil && *f.MACDSignal != 0 {
		if *f.MACD > *f.MACDSignal {
			up += 0.15
		} else {
			up -= 0.15
		}
	}
	notes := []string{fmt.Sprintf("Trend dist to SMAs: 20:%.1f%% 50:%.1f%% 200:%.1f%%",
		orZero(f.DistSMA20)*100, orZero(f.DistSMA50)*100, orZero(f.DistSMA200)*100)}
	return clampScore(up, -1, 1), notes
}

func scoreMeanReversion(f *features.Snapshot) (float64, []string) {
	s := 0.0
	var notes []string
	if f.RSI14 != nil {
		if *f.RSI14 < 30 {
			s += 0.6
		} else if *f.RSI14 > 70 {
			s -= 0.6
		}
		notes = append(notes, fmt.Sprintf("RSI=%.0f", *f.RSI14))
	}
	if f.BBP != nil {
		s += 0.4 * (0.5 - *f.BBP)
		notes = append(notes, fmt.Sprintf("BB%%=%.2f", *f.BBP))
	}
	return clampScore(s, -1, 1), notes
}

func scoreBreakout(f *features.Snapshot) (float64, []string) {
	s := 0.0
	adx := orZero(f.ADX)
	hist := orZero(f.MACDHist)
	if adx >= 20 {
		s += 0.2
	}
	if hist > 0 {
		s += 0.2
	}
	notes := []string{fmt.Sprintf("ADX=%.1f MACD_hist=%.3f", adx, hist)}
	return clampScore(s, -1, 1), notes
}

func scoreAltData(f *features.Snapshot) (float64, []string) {
	s := 0.0
	var notes []string
	if f.NewsBias != nil {
		s += 0.25 * *f.NewsBias
		notes = append(notes, fmt.Sprintf("News bias=%+.2f", *f.NewsBias))
	}
	if f.RecBias != nil {
		s += 0.25 * *f.RecBias
		notes = append(notes, fmt.Sprintf("Recs bias=%+.2f", *f.RecBias))
	}
	return clampScore(s, -1, 1), notes
}

func scoreVolatilityGuard(f *features.Snapshot) (float64, []string) {
	atrp := orZero(f.ATRPercent)
	bonus := 0.0
	switch {
	case atrp >= 0.01 && atrp <= 0.05:
		bonus = 0.15
	case atrp > 0.08:
		bonus = -0.25
	}
	return bonus, []string{fmt.Sprintf("ATR%%=%.1f%%", atrp*100)}
}

func scoreEventRisk(f *features.Snapshot) (float64, []string) {
	if f.UpcomingEarnings {
		return -0.35, []string{"Earnings < 7 days"}
	}
	return 0, nil
}
