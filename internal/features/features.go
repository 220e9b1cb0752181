package features

import (
	"github.com/ishanbais13-gif/stackiq-go/internal/indicators"
	"github.com/ishanbais13-gif/stackiq-go/internal/models"
)

// Snapshot is the complete feature view of one symbol at one bar. Optional
// fields are nil where the underlying indicator window has not filled or a
// denominator was zero.
type Snapshot struct {
	Price float64 `json:"price"`

	SMA20  *float64 `json:"sma20"`
	SMA50  *float64 `json:"sma50"`
	SMA200 *float64 `json:"sma200"`
	RSI14  *float64 `json:"rsi14"`
	ATR    *float64 `json:"atr"`

	MACD       *float64 `json:"macd"`
	MACDSignal *float64 `json:"macd_sig"`
	MACDHist   *float64 `json:"macd_hist"`
	BBP        *float64 `json:"bbp"`

	PDI *float64 `json:"pdi"`
	MDI *float64 `json:"mdi"`
	ADX *float64 `json:"adx"`

	R5  *float64 `json:"r5"`
	R20 *float64 `json:"r20"`
	R60 *float64 `json:"r60"`

	DistSMA20  *float64 `json:"dist_sma20"`
	DistSMA50  *float64 `json:"dist_sma50"`
	DistSMA200 *float64 `json:"dist_sma200"`
	ATRPercent *float64 `json:"atrp"`

	RecBias          *float64 `json:"rec_bias"`
	NewsBias         *float64 `json:"news_bias"`
	UpcomingEarnings bool     `json:"upcoming_earnings"`
}

// Ready reports whether the snapshot carries enough indicator coverage to
// drive a trading decision: the three SMAs, RSI14 and ATR must all be
// defined.
func (s *Snapshot) Ready() bool {
	return s.SMA20 != nil && s.SMA50 != nil && s.SMA200 != nil && s.RSI14 != nil && s.ATR != nil
}

// SeriesSet holds the full per-bar indicator series for one price history.
// Computed once per backtest run, never per bar.
type SeriesSet struct {
	Close []float64

	SMA20  indicators.Series
	SMA50  indicators.Series
	SMA200 indicators.Series
	RSI14  indicators.Series
	ATR    indicators.Series

	MACD       indicators.Series
	MACDSignal indicators.Series
	MACDHist   indicators.Series
	BBP        indicators.Series

	PDI indicators.Series
	MDI indicators.Series
	ADX indicators.Series

	R5  indicators.Series
	R20 indicators.Series
	R60 indicators.Series
}

// BuildSeriesSet computes every indicator series over the whole history.
func BuildSeriesSet(high, low, close []float64) *SeriesSet {
	macdLine, macdSignal, macdHist := indicators.MACD(close, 12, 26, 9)
	pdi, mdi, adx := indicators.DMIADX(high, low, close, 14)

	return &SeriesSet{
		Close:      close,
		SMA20:      indicators.SMA(close, 20),
		SMA50:      indicators.SMA(close, 50),
		SMA200:     indicators.SMA(close, 200),
		RSI14:      indicators.RSI(close, 14),
		ATR:        indicators.ATR(high, low, close, 14),
		MACD:       macdLine,
		MACDSignal: macdSignal,
		MACDHist:   macdHist,
		BBP:        indicators.BollingerPercent(close, 20, 2.0, 2.0),
		PDI:        pdi,
		MDI:        mdi,
		ADX:        adx,
		R5:         indicators.Returns(close, 5),
		R20:        indicators.Returns(close, 20),
		R60:        indicators.Returns(close, 60),
	}
}

// At assembles the feature snapshot for bar i, stamping in the shared
// alternative-data view.
func (ss *SeriesSet) At(i int, alt models.AltDataSnapshot) *Snapshot {
	snap := &Snapshot{
		Price:            ss.Close[i],
		SMA20:            ss.SMA20.At(i),
		SMA50:            ss.SMA50.At(i),
		SMA200:           ss.SMA200.At(i),
		RSI14:            ss.RSI14.At(i),
		ATR:              ss.ATR.At(i),
		MACD:             ss.MACD.At(i),
		MACDSignal:       ss.MACDSignal.At(i),
		MACDHist:         ss.MACDHist.At(i),
		BBP:              ss.BBP.At(i),
		PDI:              ss.PDI.At(i),
		MDI:              ss.MDI.At(i),
		ADX:              ss.ADX.At(i),
		R5:               ss.R5.At(i),
		R20:              ss.R20.At(i),
		R60:              ss.R60.At(i),
		RecBias:          alt.RecBias,
		NewsBias:         alt.NewsBias,
		UpcomingEarnings: alt.UpcomingEarnings,
	}
	snap.fillDerived()
	return snap
}

// Latest assembles the live feature snapshot: the last defined value of
// every series, trailing returns from the newest bar, and the current
// alt-data view.
func (ss *SeriesSet) Latest(alt models.AltDataSnapshot) *Snapshot {
	n := len(ss.Close)
	snap := &Snapshot{
		Price:            ss.Close[n-1],
		SMA20:            ss.SMA20.Last(),
		SMA50:            ss.SMA50.Last(),
		SMA200:           ss.SMA200.Last(),
		RSI14:            ss.RSI14.Last(),
		ATR:              ss.ATR.Last(),
		MACD:             ss.MACD.Last(),
		MACDSignal:       ss.MACDSignal.Last(),
		MACDHist:         ss.MACDHist.Last(),
		BBP:              ss.BBP.Last(),
		PDI:              ss.PDI.Last(),
		MDI:              ss.MDI.Last(),
		ADX:              ss.ADX.Last(),
		R5:               ss.R5.Last(),
		R20:              ss.R20.Last(),
		R60:              ss.R60.Last(),
		RecBias:          alt.RecBias,
		NewsBias:         alt.NewsBias,
		UpcomingEarnings: alt.UpcomingEarnings,
	}
	snap.fillDerived()
	return snap
}

// fillDerived computes the distance-to-SMA ratios and ATR as a share of
// price from the already-populated base fields.
func (s *Snapshot) fillDerived() {
	dist := func(sma *float64) *float64 {
		if sma == nil || *sma == 0 {
			return nil
		}
		d := (s.Price - *sma) / *sma
		return &d
	}
	s.DistSMA20 = dist(s.SMA20)
	s.DistSMA50 = dist(s.SMA50)
	s.DistSMA200 = dist(s.SMA200)

	if s.ATR != nil && s.Price != 0 {
		atrp := *s.ATR / s.Price
		s.ATRPercent = &atrp
	}
}
