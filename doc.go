// Package featprep provides feature extraction and preprocessing for
// object classification in image analysis.
//
// Extractors read per-object measurements from analyzed images and write them
// into flat float32 buffers, one row per object. Decorators compose on top of
// a base extractor to normalize features or project them onto principal
// components:
//
//	base, _ := feature.NewMeasurementList([]string{"area", "perimeter"})
//	norm, _ := normalize.Fit(normalize.ModeMeanVariance, samples, 2)
//	ext, _ := feature.NewNormalizing(base, norm)
//
//	p, _ := featprep.New(ext)
//	values, _ := p.Extract(ctx, img, objects)
//
// Fitted pipelines serialize to a self-describing document so a model trained
// in one process can classify in another:
//
//	var buf bytes.Buffer
//	_ = p.Save(&buf)
//	p2, _ := featprep.Load(&buf)
//
// Documents can be kept in any modelstore.Store backend: local filesystem,
// in-memory, S3, or MinIO.
package featprep
