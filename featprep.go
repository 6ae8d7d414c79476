package featprep

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/featprep/featprep/codec"
	"github.com/featprep/featprep/feature"
	"github.com/featprep/featprep/modelstore"
	"github.com/featprep/featprep/persistence"
)

// Pipeline is the top-level handle for running a fitted feature extractor
// and persisting it as a model document.
//
// A Pipeline is safe for concurrent use as long as the wrapped extractor is;
// all extractors in the feature package are read-only after construction.
type Pipeline struct {
	extractor feature.Extractor
	opts      options
}

// New creates a Pipeline around a fitted extractor.
func New(extractor feature.Extractor, optFns ...Option) (*Pipeline, error) {
	if extractor == nil {
		return nil, ErrNilExtractor
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Pipeline{
		extractor: extractor,
		opts:      opts,
	}, nil
}

// Extractor returns the wrapped extractor.
func (p *Pipeline) Extractor() feature.Extractor { return p.extractor }

// FeatureNames returns the ordered names of the produced features.
func (p *Pipeline) FeatureNames() []string { return p.extractor.FeatureNames() }

// NumFeatures returns the number of features per object.
func (p *Pipeline) NumFeatures() int { return p.extractor.NumFeatures() }

// Extract runs the extractor over objects and returns a freshly allocated
// object-major feature matrix of len(objects) rows.
func (p *Pipeline) Extract(ctx context.Context, img feature.ImageData, objects []feature.Object) ([]float32, error) {
	out := make([]float32, len(objects)*p.extractor.NumFeatures())
	if err := p.ExtractInto(ctx, img, objects, feature.NewBuffer(out)); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractInto runs the extractor over objects, appending rows at buf's
// current write position. The caller owns the buffer.
func (p *Pipeline) ExtractInto(ctx context.Context, img feature.ImageData, objects []feature.Object, buf *feature.Buffer) error {
	start := time.Now()

	scratch := int64(len(objects)*p.extractor.NumFeatures()) * 4
	if err := p.opts.controller.AcquireScratch(ctx, scratch); err != nil {
		return err
	}
	defer p.opts.controller.ReleaseScratch(scratch)

	err := p.extractor.ExtractFeatures(img, objects, buf)
	p.opts.metricsCollector.RecordExtract(len(objects), time.Since(start), err)
	p.opts.logger.LogExtract(ctx, len(objects), p.extractor.NumFeatures(), err)
	return err
}

// ExtractBatches runs the extractor over objects in parallel batches of
// batchSize rows and returns the assembled object-major matrix. Row order
// matches the input order regardless of scheduling.
//
// Parallelism is bounded by the configured resource controller's worker
// budget, or by one goroutine per batch when no controller is set.
func (p *Pipeline) ExtractBatches(ctx context.Context, img feature.ImageData, objects []feature.Object, batchSize int) ([]float32, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrEmptyBatch, batchSize)
	}

	start := time.Now()
	nf := p.extractor.NumFeatures()
	out := make([]float32, len(objects)*nf)

	g, gctx := errgroup.WithContext(ctx)
	for begin := 0; begin < len(objects); begin += batchSize {
		end := begin + batchSize
		if end > len(objects) {
			end = len(objects)
		}
		batch := objects[begin:end]
		dst := out[begin*nf : end*nf]

		g.Go(func() error {
			if err := p.opts.controller.AcquireWorker(gctx); err != nil {
				return err
			}
			defer p.opts.controller.ReleaseWorker()

			// Batches write to disjoint regions of out.
			return p.extractor.ExtractFeatures(img, batch, feature.NewBuffer(dst))
		})
	}

	err := g.Wait()
	p.opts.metricsCollector.RecordExtract(len(objects), time.Since(start), err)
	p.opts.logger.LogExtract(ctx, len(objects), nf, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ScanMissing reports which measurements the extractor needs but the objects
// lack. Run it before extraction to surface data problems that would
// otherwise degrade silently to NaN features.
func (p *Pipeline) ScanMissing(img feature.ImageData, objects []feature.Object) *feature.MissingReport {
	return feature.ScanMissing(img, p.extractor, objects)
}

// Save writes the pipeline's extractor as a self-describing model document.
func (p *Pipeline) Save(w io.Writer) error {
	start := time.Now()
	err := p.save(w)
	p.opts.metricsCollector.RecordSave(time.Since(start), err)
	return err
}

func (p *Pipeline) save(w io.Writer) error {
	payload, err := feature.MarshalExtractor(p.opts.codec, p.extractor)
	if err != nil {
		return err
	}
	return persistence.WriteEnvelope(w, p.opts.codec.Name(), p.opts.compression, payload)
}

// Load reads a model document written by Save and reconstructs the pipeline.
// The codec recorded in the document is used for decoding; options only
// affect subsequent behavior of the returned pipeline.
func Load(r io.Reader, optFns ...Option) (*Pipeline, error) {
	start := time.Now()
	p, err := load(r, optFns...)
	if p != nil {
		p.opts.metricsCollector.RecordLoad(time.Since(start), err)
	}
	return p, err
}

func load(r io.Reader, optFns ...Option) (*Pipeline, error) {
	payload, codecName, err := persistence.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	c, ok := codec.ByName(codecName)
	if !ok {
		return nil, fmt.Errorf("featprep: unknown codec %q in model document", codecName)
	}

	ex, err := feature.UnmarshalExtractor(c, payload)
	if err != nil {
		return nil, err
	}

	return New(ex, optFns...)
}

// SaveTo saves the pipeline as a named document in a model store.
func (p *Pipeline) SaveTo(ctx context.Context, store modelstore.Store, name string) error {
	var buf bytes.Buffer
	err := p.Save(&buf)
	if err == nil {
		err = store.Put(ctx, name, buf.Bytes())
	}
	p.opts.logger.LogSave(ctx, name, buf.Len(), err)
	return err
}

// LoadFrom loads a named model document from a store.
func LoadFrom(ctx context.Context, store modelstore.Store, name string, optFns ...Option) (*Pipeline, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	p, err := Load(bytes.NewReader(data), optFns...)
	if p != nil {
		p.opts.logger.LogLoad(ctx, name, p.NumFeatures(), err)
	}
	return p, err
}
