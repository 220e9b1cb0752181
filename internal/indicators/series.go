package indicators

import "math"

// Series is a per-bar indicator sequence aligned to its source price array.
// Entries are NaN where the indicator is undefined (window not yet filled or
// a zero denominator).
type Series []float64

// NewSeries returns a Series of length n with every entry undefined.
func NewSeries(n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// Valid reports whether the entry at index i holds a defined value.
func (s Series) Valid(i int) bool {
	return i >= 0 && i < len(s) && !math.IsNaN(s[i])
}

// At returns the value at index i, or nil when undefined.
func (s Series) At(i int) *float64 {
	if !s.Valid(i) {
		return nil
	}
	v := s[i]
	return &v
}

// Last returns the most recent defined value, or nil when the series holds
// no defined entries at all.
func (s Series) Last() *float64 {
	for i := len(s) - 1; i >= 0; i-- {
		if !math.IsNaN(s[i]) {
			v := s[i]
			return &v
		}
	}
	return nil
}

// rollingMean produces the trailing mean over period entries of src. The
// output is defined only where every entry of the trailing window is defined.
func rollingMean(src Series, period int) Series {
	out := NewSeries(len(src))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(src); i++ {
		sum := 0.0
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(src[j]) {
				ok = false
				break
			}
			sum += src[j]
		}
		if ok {
			out[i] = sum / float64(period)
		}
	}
	return out
}
