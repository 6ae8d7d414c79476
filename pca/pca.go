// Package pca provides principal component analysis for feature reduction.
//
// A Projector is fitted once from a sample matrix under a retained-variance
// target and is immutable afterwards, so a single instance may be shared
// across concurrent projection calls. Fitting runs in float64 via gonum's
// SVD; projection outputs are stored as float32 to match the feature buffer
// element type.
package pca

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/featprep/featprep/internal/scratch"
)

// whitenEpsilon regularizes whitening denominators against near-zero
// variance directions: each component j is divided by sqrt(eigenvalue[j] + ε).
const whitenEpsilon = 1e-5

var (
	// ErrReleased is returned when a released Projector is used.
	ErrReleased = errors.New("pca: projector released")

	// ErrFactorization is returned when the SVD of the sample matrix fails to
	// converge.
	ErrFactorization = errors.New("pca: factorization failed")

	// ErrDegenerateData is returned when the sample matrix carries no
	// variance at all, leaving nothing to project onto.
	ErrDegenerateData = errors.New("pca: sample matrix has zero variance")
)

// ErrTooFewSamples indicates a sample matrix with fewer rows than the fit
// requires. Fitting needs at least two rows, and at least as many rows as
// columns.
type ErrTooFewSamples struct {
	Rows int
	Cols int
}

func (e *ErrTooFewSamples) Error() string {
	return fmt.Sprintf("pca: too few samples: %d rows for %d columns", e.Rows, e.Cols)
}

// ErrInvalidRetainedVariance indicates a retained-variance target outside (0, 1].
type ErrInvalidRetainedVariance struct {
	Value float64
}

func (e *ErrInvalidRetainedVariance) Error() string {
	return fmt.Sprintf("pca: retained variance must be in (0, 1], got %v", e.Value)
}

// Projector applies a fitted PCA projection y = (x - mean) · Vᵗ, where V is
// the top-k eigenvector basis of the fitting data's covariance.
//
// All fitted state is immutable. The whitening denominators are derived from
// the eigenvalues eagerly at fit and construction time, never lazily, so
// shared concurrent use needs no synchronization.
type Projector struct {
	dim         int
	k           int
	mean        []float64
	components  []float64 // k x dim, row-major, rows orthonormal
	eigenvalues []float64 // descending
	whiten      bool

	// invSqrtEig is derived data, recomputed deterministically from the
	// eigenvalues. It is never persisted.
	invSqrtEig []float64

	released atomic.Bool
}

// Fit fits a Projector from a flat row-major sample matrix.
//
// samples holds len(samples)/dim rows of dim columns. retainedVariance
// selects the minimal prefix k of descending-eigenvalue components whose
// cumulative eigenvalue sum reaches that fraction of the total (k >= 1).
//
// Fitting errors are configuration errors: they occur only while building a
// Projector, never during routine projection.
func Fit(samples []float32, dim int, retainedVariance float64, whiten bool) (*Projector, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("pca: invalid dimension %d", dim)
	}
	if len(samples)%dim != 0 {
		return nil, fmt.Errorf("pca: sample length %d is not a multiple of dimension %d", len(samples), dim)
	}
	if retainedVariance <= 0 || retainedVariance > 1 {
		return nil, &ErrInvalidRetainedVariance{Value: retainedVariance}
	}

	rows := len(samples) / dim
	if rows < 2 || rows < dim {
		return nil, &ErrTooFewSamples{Rows: rows, Cols: dim}
	}

	mean := make([]float64, dim)
	for r := 0; r < rows; r++ {
		row := samples[r*dim : (r+1)*dim]
		for c, v := range row {
			mean[c] += float64(v)
		}
	}
	for c := range mean {
		mean[c] /= float64(rows)
	}

	// The centered matrix is transient scratch; it is released on every exit
	// path and never outlives the fit.
	centered := scratch.GetFloat64(rows * dim)
	defer scratch.PutFloat64(centered)

	for r := 0; r < rows; r++ {
		for c := 0; c < dim; c++ {
			centered[r*dim+c] = float64(samples[r*dim+c]) - mean[c]
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(mat.NewDense(rows, dim, centered), mat.SVDThin); !ok {
		return nil, ErrFactorization
	}

	// Eigenvalues of the covariance are squared singular values over n-1.
	sv := svd.Values(nil)
	eigen := make([]float64, len(sv))
	var total float64
	for i, s := range sv {
		eigen[i] = s * s / float64(rows-1)
		total += eigen[i]
	}
	if total == 0 {
		return nil, ErrDegenerateData
	}

	threshold := retainedVariance * total
	k := 0
	var cum float64
	for _, ev := range eigen {
		cum += ev
		k++
		if cum >= threshold {
			break
		}
	}

	var v mat.Dense
	svd.VTo(&v)

	components := make([]float64, k*dim)
	for i := 0; i < k; i++ {
		for j := 0; j < dim; j++ {
			components[i*dim+j] = v.At(j, i)
		}
	}

	return newProjector(mean, components, eigen[:k:k], whiten)
}

// NewProjector reconstructs a Projector from previously fitted parameters,
// typically during deserialization. components is row-major k x len(mean).
// The whitening denominators are recomputed from the eigenvalues.
func NewProjector(mean, components, eigenvalues []float64, whiten bool) (*Projector, error) {
	meanCopy := make([]float64, len(mean))
	copy(meanCopy, mean)
	compCopy := make([]float64, len(components))
	copy(compCopy, components)
	eigCopy := make([]float64, len(eigenvalues))
	copy(eigCopy, eigenvalues)
	return newProjector(meanCopy, compCopy, eigCopy, whiten)
}

func newProjector(mean, components, eigenvalues []float64, whiten bool) (*Projector, error) {
	dim := len(mean)
	k := len(eigenvalues)
	if dim == 0 || k == 0 {
		return nil, fmt.Errorf("pca: empty projector parameters")
	}
	if len(components) != k*dim {
		return nil, fmt.Errorf("pca: components length %d does not match %d components of dimension %d", len(components), k, dim)
	}

	invSqrt := make([]float64, k)
	for i, ev := range eigenvalues {
		invSqrt[i] = 1 / math.Sqrt(ev+whitenEpsilon)
	}

	return &Projector{
		dim:         dim,
		k:           k,
		mean:        mean,
		components:  components,
		eigenvalues: eigenvalues,
		whiten:      whiten,
		invSqrtEig:  invSqrt,
	}, nil
}

// Dim returns the input dimensionality.
func (p *Projector) Dim() int { return p.dim }

// NumComponents returns the number of retained components k.
func (p *Projector) NumComponents() int { return p.k }

// Whiten reports whether projected components are rescaled to unit variance.
func (p *Projector) Whiten() bool { return p.whiten }

// Mean returns a copy of the fitted column means.
func (p *Projector) Mean() []float64 {
	out := make([]float64, len(p.mean))
	copy(out, p.mean)
	return out
}

// Components returns a copy of the row-major k x Dim eigenvector basis.
func (p *Projector) Components() []float64 {
	out := make([]float64, len(p.components))
	copy(out, p.components)
	return out
}

// Eigenvalues returns a copy of the k retained eigenvalues, descending.
func (p *Projector) Eigenvalues() []float64 {
	out := make([]float64, len(p.eigenvalues))
	copy(out, p.eigenvalues)
	return out
}

// Project projects nRows row-major vectors from src into dst.
//
// src must hold at least nRows*Dim values and dst at least
// nRows*NumComponents. dst may alias src: each output row is narrower than
// its input row and rows are processed in order, so in-place projection is
// safe. Accumulation runs in float64; results are stored as float32.
func (p *Projector) Project(src, dst []float32, nRows int) error {
	if p.released.Load() {
		return ErrReleased
	}
	if nRows < 0 {
		return fmt.Errorf("pca: negative row count %d", nRows)
	}
	if len(src) < nRows*p.dim {
		return fmt.Errorf("pca: source holds %d values, need %d", len(src), nRows*p.dim)
	}
	if len(dst) < nRows*p.k {
		return fmt.Errorf("pca: destination holds %d values, need %d", len(dst), nRows*p.k)
	}

	row := scratch.GetFloat64(p.dim)
	defer scratch.PutFloat64(row)

	for r := 0; r < nRows; r++ {
		in := src[r*p.dim : (r+1)*p.dim]
		for j, v := range in {
			row[j] = float64(v) - p.mean[j]
		}
		out := dst[r*p.k : (r+1)*p.k]
		for i := 0; i < p.k; i++ {
			y := floats.Dot(p.components[i*p.dim:(i+1)*p.dim], row)
			if p.whiten {
				y *= p.invSqrtEig[i]
			}
			out[i] = float32(y)
		}
	}

	return nil
}

// Release marks the Projector as released. Subsequent Project calls return
// ErrReleased. Release is idempotent and safe to call concurrently with
// itself, but not with in-flight Project calls.
func (p *Projector) Release() {
	p.released.Store(true)
}
