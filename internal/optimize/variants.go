package optimize

import (
	"fmt"
	"math"
	"strings"

	"github.com/ishanbais13-gif/stackiq-go/internal/engine"
)

// maxVariants caps how many unique weight candidates one grid explores.
const maxVariants = 50

// Variants builds the candidate weight grid around a base: each component
// is multiplied by {1-scale, 1, 1+scale} one at a time, then every
// component jointly by the same multipliers. Candidates are floored at
// zero, renormalized to sum to 1 and de-duplicated on the 4-decimal rounded
// weight tuple, keeping generation order.
func Variants(base engine.Weights, scale float64) []engine.Weights {
	mults := []float64{1.0 - scale, 1.0, 1.0 + scale}
	baseVals := base.Slice()

	raw := make([][]float64, 0, len(baseVals)*len(mults)+len(mults))
	for i := range baseVals {
		for _, m := range mults {
			v := append([]float64(nil), baseVals...)
			v[i] = math.Max(0.0, v[i]*m)
			raw = append(raw, v)
		}
	}
	for _, m := range mults {
		v := make([]float64, len(baseVals))
		for i, b := range baseVals {
			v[i] = math.Max(0.0, b*m)
		}
		raw = append(raw, v)
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]engine.Weights, 0, len(raw))
	for _, v := range raw {
		sum := 0.0
		for _, x := range v {
			sum += x
		}
		if sum == 0 {
			sum = 1.0
		}
		for i := range v {
			v[i] /= sum
		}

		key := variantKey(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, engine.WeightsFromSlice(v))
		if len(out) == maxVariants {
			break
		}
	}
	return out
}

func variantKey(v []float64) string {
	var b strings.Builder
	for _, x := range v {
		fmt.Fprintf(&b, "%.4f|", x)
	}
	return b.String()
}
