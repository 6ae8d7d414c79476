package normalize

import (
	"fmt"
	"math"

	"github.com/featprep/featprep/stats"
)

// FitOption configures Fit.
type FitOption func(*fitOptions)

type fitOptions struct {
	missing float64
}

// WithMissingValue configures the fitted Normalizer to substitute non-finite
// inputs with v before applying the affine transform.
func WithMissingValue(v float64) FitOption {
	return func(o *fitOptions) {
		o.missing = v
	}
}

// Fit derives a Normalizer from a flat row-major sample matrix.
//
// samples holds len(samples)/dim rows of dim feature columns. For each column
// the finite values are streamed into a stats.RunningStats accumulator;
// non-finite values are skipped. A column with no finite observations keeps
// offset 0 and scale 1. A constant column produces an infinite scale under
// both ModeMeanVariance and ModeMinMax; this is propagated, not guarded.
func Fit(mode Mode, samples []float32, dim int, opts ...FitOption) (*Normalizer, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("normalize: invalid dimension %d", dim)
	}
	if len(samples)%dim != 0 {
		return nil, fmt.Errorf("normalize: sample length %d is not a multiple of dimension %d", len(samples), dim)
	}

	o := fitOptions{missing: math.NaN()}
	for _, opt := range opts {
		opt(&o)
	}

	nm := Identity(dim)
	nm.missing = o.missing
	if mode == ModeNone {
		return nm, nil
	}

	nRows := len(samples) / dim
	acc := make([]stats.RunningStats, dim)
	for r := 0; r < nRows; r++ {
		row := samples[r*dim : (r+1)*dim]
		for c, v := range row {
			acc[c].Push(float64(v))
		}
	}

	for c := range acc {
		if acc[c].Count() == 0 {
			continue // cannot normalize an empty column
		}
		switch mode {
		case ModeMeanVariance:
			nm.offsets[c] = -acc[c].Mean()
			nm.scales[c] = 1 / acc[c].StdDev()
		case ModeMinMax:
			nm.offsets[c] = -acc[c].Min()
			nm.scales[c] = 1 / acc[c].Range()
		default:
			return nil, fmt.Errorf("normalize: unsupported mode %s", mode)
		}
	}

	return nm, nil
}
