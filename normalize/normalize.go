// Package normalize provides per-feature affine rescaling of feature vectors.
//
// A Normalizer holds one (offset, scale) pair per feature plus an optional
// substitute for missing values. It is fitted once from sample data (see Fit)
// and immutable afterwards, so a single instance may be shared across
// concurrent extraction calls.
package normalize

import (
	"fmt"
	"math"
)

// Mode selects how offsets and scales are derived from sample data.
type Mode int

const (
	// ModeNone leaves values unchanged (offset 0, scale 1).
	ModeNone Mode = iota
	// ModeMeanVariance centers each feature on its mean and divides by its
	// standard deviation.
	ModeMeanVariance
	// ModeMinMax maps the observed [min, max] range of each feature to [0, 1].
	ModeMinMax
)

// String returns a stable name for the mode, used in persisted documents.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeMeanVariance:
		return "meanVariance"
	case ModeMinMax:
		return "minMax"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Normalizer applies a fitted per-feature affine transform.
//
// A feature value v becomes (v + offset[i]) * scale[i]. A degenerate fitted
// column (zero variance or zero range) legally yields a non-finite scale;
// such values are propagated unchanged rather than clamped, leaving the
// downstream consumer to tolerate or reject them.
type Normalizer struct {
	offsets []float64
	scales  []float64

	// missing substitutes for non-finite inputs before the affine transform.
	// NaN means no substitution.
	missing float64
}

// New creates a Normalizer from explicit parameters.
// offsets and scales must have equal length. missing may be NaN to disable
// missing-value substitution.
func New(offsets, scales []float64, missing float64) (*Normalizer, error) {
	if len(offsets) != len(scales) {
		return nil, fmt.Errorf("normalize: offsets/scales length mismatch: %d != %d", len(offsets), len(scales))
	}

	n := &Normalizer{
		offsets: make([]float64, len(offsets)),
		scales:  make([]float64, len(scales)),
		missing: missing,
	}
	copy(n.offsets, offsets)
	copy(n.scales, scales)
	return n, nil
}

// Identity returns a Normalizer that leaves all of its n features unchanged.
func Identity(n int) *Normalizer {
	nm := &Normalizer{
		offsets: make([]float64, n),
		scales:  make([]float64, n),
		missing: math.NaN(),
	}
	for i := range nm.scales {
		nm.scales[i] = 1
	}
	return nm
}

// NumFeatures returns the number of features the Normalizer was fitted for.
func (n *Normalizer) NumFeatures() int { return len(n.offsets) }

// Normalize transforms a single value of feature i.
//
// If v is non-finite and a finite missing-value substitute is configured,
// the substitute replaces v before the affine transform; otherwise the
// non-finite value propagates through the transform.
func (n *Normalizer) Normalize(i int, v float32) float32 {
	x := float64(v)
	if (math.IsNaN(x) || math.IsInf(x, 0)) && !math.IsNaN(n.missing) {
		x = n.missing
	}
	return float32((x + n.offsets[i]) * n.scales[i])
}

// Offset returns the fitted offset for feature i.
func (n *Normalizer) Offset(i int) float64 { return n.offsets[i] }

// Scale returns the fitted scale for feature i.
func (n *Normalizer) Scale(i int) float64 { return n.scales[i] }

// Offsets returns a copy of the fitted offsets.
func (n *Normalizer) Offsets() []float64 {
	out := make([]float64, len(n.offsets))
	copy(out, n.offsets)
	return out
}

// Scales returns a copy of the fitted scales.
func (n *Normalizer) Scales() []float64 {
	out := make([]float64, len(n.scales))
	copy(out, n.scales)
	return out
}

// MissingValue returns the missing-value substitute, or NaN if none is set.
func (n *Normalizer) MissingValue() float64 { return n.missing }

// IsIdentity reports whether every feature has offset 0 and scale 1.
func (n *Normalizer) IsIdentity() bool {
	for i := range n.offsets {
		if n.offsets[i] != 0 || n.scales[i] != 1 {
			return false
		}
	}
	return true
}
