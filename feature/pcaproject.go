package feature

import (
	"errors"
	"fmt"

	"github.com/featprep/featprep/internal/scratch"
	"github.com/featprep/featprep/pca"
)

// ErrNilProjector is returned when a PCAProjecting decorator is constructed
// without a fitted Projector.
var ErrNilProjector = errors.New("feature: nil projector")

// PCAProjecting is a decorator that replaces the wrapped extractor's raw
// output with its projection onto a fitted PCA basis. The output width is
// the projector's component count, usually narrower than the input.
type PCAProjecting struct {
	inner Extractor
	proj  *pca.Projector
}

// NewPCAProjecting wraps inner with a Projector fitted for exactly
// inner.NumFeatures() input dimensions. A width mismatch fails fast.
func NewPCAProjecting(inner Extractor, proj *pca.Projector) (*PCAProjecting, error) {
	if inner == nil {
		return nil, ErrNilInner
	}
	if proj == nil {
		return nil, ErrNilProjector
	}
	if proj.Dim() != inner.NumFeatures() {
		return nil, &ErrDimensionMismatch{Expected: proj.Dim(), Actual: inner.NumFeatures()}
	}
	return &PCAProjecting{inner: inner, proj: proj}, nil
}

// Inner returns the wrapped extractor.
func (p *PCAProjecting) Inner() Extractor { return p.inner }

// Projector returns the fitted Projector.
func (p *PCAProjecting) Projector() *pca.Projector { return p.proj }

// FeatureNames returns one synthetic name per retained component. Components
// have no correspondence to a single named measurement.
func (p *PCAProjecting) FeatureNames() []string {
	names := make([]string, p.proj.NumComponents())
	for i := range names {
		names[i] = fmt.Sprintf("component %d", i+1)
	}
	return names
}

// NumFeatures returns the number of retained components.
func (p *PCAProjecting) NumFeatures() int { return p.proj.NumComponents() }

// ExtractFeatures fills a transient intermediate buffer from the wrapped
// extractor, projects it in place, and appends the projected rows to buf.
// The intermediate buffer is released on every exit path.
func (p *PCAProjecting) ExtractFeatures(img ImageData, objects []Object, buf *Buffer) error {
	n := len(objects)
	d := p.inner.NumFeatures()
	k := p.proj.NumComponents()

	need := n * k
	if buf.Remaining() < need {
		return &ErrShortBuffer{Need: need, Have: buf.Remaining()}
	}

	raw := scratch.GetFloat32(n * d)
	defer scratch.PutFloat32(raw)

	inner := NewBuffer(raw)
	if err := p.inner.ExtractFeatures(img, objects, inner); err != nil {
		return err
	}
	if inner.Pos() != n*d {
		return &ErrExtractorWidth{Want: n * d, Got: inner.Pos()}
	}

	// In-place projection: output rows are narrower than input rows.
	if err := p.proj.Project(raw, raw, n); err != nil {
		return err
	}

	buf.AppendSlice(raw[:need])
	return nil
}

// MissingFeatures delegates to the wrapped extractor: missing-feature
// reporting always refers to the original raw measurement space.
func (p *PCAProjecting) MissingFeatures(img ImageData, obj Object) []string {
	return p.inner.MissingFeatures(img, obj)
}
