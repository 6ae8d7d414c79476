package feature

import (
	"errors"

	"github.com/featprep/featprep/normalize"
)

// ErrNilNormalizer is returned when a Normalizing decorator is constructed
// without a fitted Normalizer.
var ErrNilNormalizer = errors.New("feature: nil normalizer")

// Normalizing is a decorator that rescales the wrapped extractor's output in
// place using a fitted Normalizer. Feature identity and count are unchanged;
// normalization is strictly a post-pass over the slots the inner extractor
// just wrote, never a separate allocation.
type Normalizing struct {
	inner Extractor
	norm  *normalize.Normalizer
}

// NewNormalizing wraps inner with a Normalizer fitted for exactly
// inner.NumFeatures() features. A width mismatch fails fast.
func NewNormalizing(inner Extractor, norm *normalize.Normalizer) (*Normalizing, error) {
	if inner == nil {
		return nil, ErrNilInner
	}
	if norm == nil {
		return nil, ErrNilNormalizer
	}
	if norm.NumFeatures() != inner.NumFeatures() {
		return nil, &ErrDimensionMismatch{Expected: norm.NumFeatures(), Actual: inner.NumFeatures()}
	}
	return &Normalizing{inner: inner, norm: norm}, nil
}

// Inner returns the wrapped extractor.
func (n *Normalizing) Inner() Extractor { return n.inner }

// Normalizer returns the fitted Normalizer.
func (n *Normalizing) Normalizer() *normalize.Normalizer { return n.norm }

// FeatureNames delegates unchanged to the wrapped extractor.
func (n *Normalizing) FeatureNames() []string { return n.inner.FeatureNames() }

// NumFeatures delegates unchanged to the wrapped extractor.
func (n *Normalizing) NumFeatures() int { return n.inner.NumFeatures() }

// ExtractFeatures delegates to the wrapped extractor, then rewrites each of
// the freshly written slots with its normalized value.
func (n *Normalizing) ExtractFeatures(img ImageData, objects []Object, buf *Buffer) error {
	start := buf.Pos()
	if err := n.inner.ExtractFeatures(img, objects, buf); err != nil {
		return err
	}

	nf := n.inner.NumFeatures()
	for i := start; i < buf.Pos(); i++ {
		f := (i - start) % nf
		buf.Set(i, n.norm.Normalize(f, buf.At(i)))
	}
	return nil
}

// MissingFeatures delegates unchanged to the wrapped extractor; normalization
// never hides or creates missing-feature information.
func (n *Normalizing) MissingFeatures(img ImageData, obj Object) []string {
	return n.inner.MissingFeatures(img, obj)
}
