package feature

import (
	"errors"
	"math"
)

// MeasurementList is the base extractor: it reads a fixed ordered list of
// named measurements directly off each object. Missing measurements become
// NaN, never an error.
type MeasurementList struct {
	names []string
}

// NewMeasurementList creates a MeasurementList over the given measurement
// names. Order is preserved; duplicates are permitted but produce duplicate
// feature columns.
func NewMeasurementList(names []string) (*MeasurementList, error) {
	if len(names) == 0 {
		return nil, errors.New("feature: measurement list must not be empty")
	}
	m := &MeasurementList{names: make([]string, len(names))}
	copy(m.names, names)
	return m, nil
}

// FeatureNames returns the configured measurement names.
func (m *MeasurementList) FeatureNames() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// NumFeatures returns the number of configured measurements.
func (m *MeasurementList) NumFeatures() int { return len(m.names) }

// ExtractFeatures appends each object's measurements to buf in list order.
func (m *MeasurementList) ExtractFeatures(_ ImageData, objects []Object, buf *Buffer) error {
	need := len(objects) * len(m.names)
	if buf.Remaining() < need {
		return &ErrShortBuffer{Need: need, Have: buf.Remaining()}
	}

	for _, obj := range objects {
		for _, name := range m.names {
			v := math.NaN()
			if obj.HasMeasurement(name) {
				v = obj.Measurement(name)
			}
			buf.Append(float32(v))
		}
	}
	return nil
}

// MissingFeatures returns the configured names absent from obj.
func (m *MeasurementList) MissingFeatures(_ ImageData, obj Object) []string {
	var missing []string
	for _, name := range m.names {
		if !obj.HasMeasurement(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// MeasurementMap is a minimal map-backed Object implementation.
type MeasurementMap map[string]float64

// HasMeasurement reports whether the map contains name.
func (m MeasurementMap) HasMeasurement(name string) bool {
	_, ok := m[name]
	return ok
}

// Measurement returns the value for name, or NaN if absent.
func (m MeasurementMap) Measurement(name string) float64 {
	v, ok := m[name]
	if !ok {
		return math.NaN()
	}
	return v
}
