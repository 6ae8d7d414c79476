package featprep

import (
	"context"
	"fmt"
	"time"

	"github.com/featprep/featprep/feature"
	"github.com/featprep/featprep/normalize"
	"github.com/featprep/featprep/pca"
)

// FitNormalizing fits a normalizer over the objects' raw features and wraps
// inner with it. samples must be extractable by inner; rows with missing
// measurements contribute nothing to the fitted statistics.
func FitNormalizing(inner feature.Extractor, img feature.ImageData, objects []feature.Object, mode normalize.Mode, opts ...normalize.FitOption) (*feature.Normalizing, error) {
	samples, err := rawSamples(inner, img, objects)
	if err != nil {
		return nil, err
	}

	norm, err := normalize.Fit(mode, samples, inner.NumFeatures(), opts...)
	if err != nil {
		return nil, err
	}
	return feature.NewNormalizing(inner, norm)
}

// FitPCAProjecting fits a PCA projector over the objects' features as
// produced by inner and wraps inner with it. The projection keeps the
// smallest number of leading components whose cumulative variance reaches
// retainedVariance; with whiten set, projected features additionally have
// unit variance.
func FitPCAProjecting(inner feature.Extractor, img feature.ImageData, objects []feature.Object, retainedVariance float64, whiten bool) (*feature.PCAProjecting, error) {
	samples, err := rawSamples(inner, img, objects)
	if err != nil {
		return nil, err
	}

	proj, err := pca.Fit(samples, inner.NumFeatures(), retainedVariance, whiten)
	if err != nil {
		return nil, err
	}
	return feature.NewPCAProjecting(inner, proj)
}

func rawSamples(inner feature.Extractor, img feature.ImageData, objects []feature.Object) ([]float32, error) {
	samples := make([]float32, len(objects)*inner.NumFeatures())
	if err := inner.ExtractFeatures(img, objects, feature.NewBuffer(samples)); err != nil {
		return nil, err
	}
	return samples, nil
}

// Normalized fits a normalizer over the objects' features as produced by the
// pipeline's current extractor and returns a new pipeline wrapping the
// decorated extractor. Options carry over.
func (p *Pipeline) Normalized(ctx context.Context, img feature.ImageData, objects []feature.Object, mode normalize.Mode, opts ...normalize.FitOption) (*Pipeline, error) {
	start := time.Now()
	ext, err := FitNormalizing(p.extractor, img, objects, mode, opts...)
	p.opts.metricsCollector.RecordFit(len(objects), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &Pipeline{extractor: ext, opts: p.opts}, nil
}

// PCAProjected fits a PCA projection over the objects' features as produced
// by the pipeline's current extractor and returns a new pipeline wrapping
// the decorated extractor. Options carry over.
func (p *Pipeline) PCAProjected(ctx context.Context, img feature.ImageData, objects []feature.Object, retainedVariance float64, whiten bool) (*Pipeline, error) {
	start := time.Now()
	ext, err := FitPCAProjecting(p.extractor, img, objects, retainedVariance, whiten)
	p.opts.metricsCollector.RecordFit(len(objects), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &Pipeline{extractor: ext, opts: p.opts}, nil
}

// ReshapeChannels converts per-channel sample slices into the flat
// object-major matrix layout the fitting functions consume: each channel
// becomes one feature column. All channels must have equal length.
func ReshapeChannels(channels ...[]float32) ([]float32, int, error) {
	if len(channels) == 0 {
		return nil, 0, nil
	}
	rows := len(channels[0])
	for i, ch := range channels {
		if len(ch) != rows {
			return nil, 0, fmt.Errorf("featprep: channel %d has %d samples, want %d", i, len(ch), rows)
		}
	}

	dim := len(channels)
	out := make([]float32, rows*dim)
	for c, ch := range channels {
		for r, v := range ch {
			out[r*dim+c] = v
		}
	}
	return out, dim, nil
}
