package indicators

import "math"

// SMA computes the trailing arithmetic mean over period values. The first
// period-1 entries are undefined.
func SMA(values []float64, period int) Series {
	out := NewSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the recursive exponential average with smoothing factor
// k = 2/(period+1), seeded with the first value. Defined at every index of a
// non-empty input.
func EMA(values []float64, period int) Series {
	out := NewSeries(len(values))
	if len(values) == 0 || period <= 0 {
		return out
	}
	k := 2.0 / (float64(period) + 1.0)
	ema := values[0]
	out[0] = ema
	for i := 1; i < len(values); i++ {
		ema = values[i]*k + ema*(1.0-k)
		out[i] = ema
	}
	return out
}

// RSI computes the Wilder relative strength index. The first average
// gain/loss is a plain mean of the first period per-step gains/losses;
// subsequent averages use Wilder smoothing. Entries before index period are
// undefined. When the average loss is zero the RSI is pinned at 100.
func RSI(values []float64, period int) Series {
	out := NewSeries(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiFromAverages(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// TrueRange computes the per-bar true range. Bar 0 has no previous close, so
// its true range is simply high-low.
func TrueRange(high, low, close []float64) Series {
	out := NewSeries(len(close))
	for i := range close {
		if i == 0 {
			out[i] = high[i] - low[i]
			continue
		}
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ATR computes the trailing simple average of the true range over period
// bars, undefined until the window fills.
func ATR(high, low, close []float64, period int) Series {
	return rollingMean(TrueRange(high, low, close), period)
}

// MACD computes the MACD line (fast EMA minus slow EMA), the signal line
// (an EMA of the MACD line's defined values re-aligned onto the original
// index positions) and the histogram (MACD minus signal).
func MACD(values []float64, fast, slow, signal int) (line, sig, hist Series) {
	n := len(values)
	line = NewSeries(n)
	sig = NewSeries(n)
	hist = NewSeries(n)
	if n == 0 {
		return line, sig, hist
	}

	emaFast := EMA(values, fast)
	emaSlow := EMA(values, slow)
	for i := 0; i < n; i++ {
		if emaFast.Valid(i) && emaSlow.Valid(i) {
			line[i] = emaFast[i] - emaSlow[i]
		}
	}

	// Signal EMA runs over the defined stretch of the MACD line only, then
	// lands back on the source indices.
	idx := make([]int, 0, n)
	defined := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if line.Valid(i) {
			idx = append(idx, i)
			defined = append(defined, line[i])
		}
	}
	sigCompact := EMA(defined, signal)
	for j, i := range idx {
		if sigCompact.Valid(j) {
			sig[i] = sigCompact[j]
		}
	}

	for i := 0; i < n; i++ {
		if line.Valid(i) && sig.Valid(i) {
			hist[i] = line[i] - sig[i]
		}
	}
	return line, sig, hist
}

// BollingerPercent computes %B against a band built from the trailing mean
// plus/minus kUp/kDown population standard deviations. Undefined while the
// window has not filled or when the band width is zero.
func BollingerPercent(values []float64, period int, kUp, kDown float64) Series {
	out := NewSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		mean := 0.0
		for _, v := range window {
			mean += v
		}
		mean /= float64(period)

		variance := 0.0
		for _, v := range window {
			d := v - mean
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))

		upper := mean + kUp*sd
		lower := mean - kDown*sd
		width := upper - lower
		if width == 0 {
			continue
		}
		out[i] = (values[i] - lower) / width
	}
	return out
}

// DMIADX computes +DI, -DI and ADX per Wilder's directional movement rules:
// the larger positive move wins, ties cancel both, and the DM/TR smoothing is
// a trailing sum over period bars. ADX is a trailing simple average of DX.
// All three are undefined while any denominator is zero or a window has not
// filled.
func DMIADX(high, low, close []float64, period int) (pdi, mdi, adx Series) {
	n := len(close)
	pdi = NewSeries(n)
	mdi = NewSeries(n)
	adx = NewSeries(n)
	if period <= 0 || n <= period {
		return pdi, mdi, adx
	}

	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr := TrueRange(high, low, close)
	for i := 1; i < n; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	dx := NewSeries(n)
	for i := period; i < n; i++ {
		var sumPlus, sumMinus, sumTR float64
		for j := i - period + 1; j <= i; j++ {
			sumPlus += plusDM[j]
			sumMinus += minusDM[j]
			sumTR += tr[j]
		}
		if sumTR == 0 {
			continue
		}
		p := 100.0 * sumPlus / sumTR
		m := 100.0 * sumMinus / sumTR
		pdi[i] = p
		mdi[i] = m
		if p+m == 0 {
			continue
		}
		dx[i] = 100.0 * math.Abs(p-m) / (p + m)
	}

	adx = rollingMean(dx, period)
	return pdi, mdi, adx
}

// Returns computes the trailing n-bar simple return series:
// (c[i] - c[i-n]) / c[i-n]. Undefined for the leading bars and wherever the
// reference price is zero.
func Returns(values []float64, n int) Series {
	out := NewSeries(len(values))
	if n <= 0 {
		return out
	}
	for i := n + 1; i < len(values); i++ {
		prev := values[i-n]
		if prev == 0 {
			continue
		}
		out[i] = (values[i] - prev) / prev
	}
	return out
}
