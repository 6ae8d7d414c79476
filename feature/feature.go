// Package feature provides the feature-extraction pipeline for object
// classification.
//
// An Extractor turns a collection of detected objects into dense float32
// feature vectors, written object-major into a caller-supplied Buffer. Three
// composable implementations are provided: MeasurementList reads named scalar
// measurements directly off each object, Normalizing rescales a wrapped
// extractor's output in place, and PCAProjecting replaces it with a
// lower-dimensional projection. Decorators hold the wrapped extractor by
// composition; all three share the same interface.
//
// Extractor trees are immutable after construction and safe for concurrent
// extraction over disjoint object batches.
package feature

import (
	"errors"
	"fmt"
)

// Object is one detected object exposing named scalar measurements.
type Object interface {
	// HasMeasurement reports whether the object carries the named measurement.
	HasMeasurement(name string) bool

	// Measurement returns the named measurement value. For a missing
	// measurement, implementations should return NaN.
	Measurement(name string) float64
}

// ImageData is the opaque image context an extraction call runs against.
// The extractors in this package only pass it through; custom Extractor
// implementations may use it for pixel access.
type ImageData any

// Extractor computes feature vectors for objects.
type Extractor interface {
	// FeatureNames returns the ordered names of the produced features.
	FeatureNames() []string

	// NumFeatures returns the number of features per object.
	NumFeatures() int

	// ExtractFeatures writes len(objects) * NumFeatures() values into buf at
	// its current write position, object-major. Per-object data problems
	// (missing measurements) degrade to NaN values rather than errors;
	// returned errors indicate broken configuration or an undersized buffer.
	ExtractFeatures(img ImageData, objects []Object, buf *Buffer) error

	// MissingFeatures returns the measurement names this extractor needs but
	// obj lacks, as a pre-flight warning signal. The names always refer to
	// the raw measurement space, never to derived features.
	MissingFeatures(img ImageData, obj Object) []string
}

// ErrNilInner is returned when a decorator is constructed without an inner
// extractor.
var ErrNilInner = errors.New("feature: nil inner extractor")

// ErrDimensionMismatch indicates an extractor wired to a Normalizer or
// Projector fitted for a different width. It fails fast at construction
// rather than silently truncating or padding.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("feature: dimension mismatch: fitted for %d features, extractor produces %d", e.Expected, e.Actual)
}

// ErrShortBuffer indicates a caller buffer without room for the values an
// extraction call would write.
type ErrShortBuffer struct {
	Need int
	Have int
}

func (e *ErrShortBuffer) Error() string {
	return fmt.Sprintf("feature: buffer too small: need %d free slots, have %d", e.Need, e.Have)
}

// ErrExtractorWidth indicates an inner extractor that wrote a different
// number of values than its NumFeatures contract promises.
type ErrExtractorWidth struct {
	Want int
	Got  int
}

func (e *ErrExtractorWidth) Error() string {
	return fmt.Sprintf("feature: inner extractor wrote %d values, contract requires %d", e.Got, e.Want)
}

// Buffer is a caller-owned flat float32 feature buffer with a write cursor.
//
// Extractors append starting at the current cursor and never read positions
// they did not just write. The caller owns the backing slice; an extractor
// borrows it for the duration of one call.
type Buffer struct {
	data []float32
	pos  int
}

// NewBuffer wraps a caller-allocated slice. The cursor starts at 0.
func NewBuffer(data []float32) *Buffer {
	return &Buffer{data: data}
}

// Pos returns the current write position.
func (b *Buffer) Pos() int { return b.pos }

// Remaining returns the number of free slots after the cursor.
func (b *Buffer) Remaining() int { return len(b.data) - b.pos }

// Append writes v at the cursor and advances it. The caller must have
// checked Remaining; writing past the end panics like any slice overrun.
func (b *Buffer) Append(v float32) {
	b.data[b.pos] = v
	b.pos++
}

// AppendSlice copies values at the cursor and advances it.
func (b *Buffer) AppendSlice(values []float32) {
	n := copy(b.data[b.pos:], values)
	b.pos += n
}

// At returns the value at absolute position i.
func (b *Buffer) At(i int) float32 { return b.data[i] }

// Set overwrites the value at absolute position i. Only positions before the
// cursor may be rewritten.
func (b *Buffer) Set(i int, v float32) { b.data[i] = v }

// Values returns the written prefix of the backing slice.
func (b *Buffer) Values() []float32 { return b.data[:b.pos] }
