package feature

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/featprep/featprep/codec"
	"github.com/featprep/featprep/normalize"
	"github.com/featprep/featprep/pca"
)

// Discriminator tags identifying each concrete extractor kind in persisted
// documents. These are part of the on-disk format; never renumber or rename.
const (
	KindMeasurementList = "measurementList"
	KindNormalizing     = "normalizing"
	KindPCAProjecting   = "pcaProjecting"
)

// ErrUnknownKind indicates a persisted node whose discriminator tag has no
// registered decoder.
type ErrUnknownKind struct {
	Kind string
}

func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("feature: unknown extractor kind %q", e.Kind)
}

// node is the tagged document for one node of an extractor tree. Exactly one
// kind's field set is populated, selected by Kind.
type node struct {
	Kind string `json:"kind"`

	// KindMeasurementList
	Measurements []string `json:"measurements,omitempty"`

	// Decorators wrap exactly one inner node.
	Inner *node `json:"inner,omitempty"`

	// KindNormalizing
	Offsets      floatSlice  `json:"offsets,omitempty"`
	Scales       floatSlice  `json:"scales,omitempty"`
	MissingValue *floatValue `json:"missingValue,omitempty"`

	// KindPCAProjecting. Components is row-major k x D. The derived
	// whitening denominators are never persisted; they are recomputed from
	// the eigenvalues on load.
	Mean        floatSlice `json:"mean,omitempty"`
	Components  floatSlice `json:"components,omitempty"`
	Eigenvalues floatSlice `json:"eigenvalues,omitempty"`
	Whiten      bool       `json:"whiten,omitempty"`
}

// decodeFunc reconstructs one extractor kind from its document node.
type decodeFunc func(*node) (Extractor, error)

// kindRegistry maps each discriminator tag to its decoder. This is the
// explicit sum-type boundary: adding a kind means adding a tag, an encode
// case and a registry entry.
var kindRegistry map[string]decodeFunc

func init() {
	kindRegistry = map[string]decodeFunc{
		KindMeasurementList: decodeMeasurementList,
		KindNormalizing:     decodeNormalizing,
		KindPCAProjecting:   decodePCAProjecting,
	}
}

// MarshalExtractor serializes an extractor tree as a tagged polymorphic
// document using the given codec (codec.Default if nil).
func MarshalExtractor(c codec.Codec, ex Extractor) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	n, err := encodeNode(ex)
	if err != nil {
		return nil, err
	}
	return c.Marshal(n)
}

// UnmarshalExtractor reconstructs an extractor tree serialized by
// MarshalExtractor. The result reproduces the original tree's FeatureNames,
// NumFeatures and extraction output exactly.
func UnmarshalExtractor(c codec.Codec, data []byte) (Extractor, error) {
	if c == nil {
		c = codec.Default
	}
	var n node
	if err := c.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return decodeNode(&n)
}

func encodeNode(ex Extractor) (*node, error) {
	switch e := ex.(type) {
	case *MeasurementList:
		return &node{
			Kind:         KindMeasurementList,
			Measurements: e.FeatureNames(),
		}, nil

	case *Normalizing:
		inner, err := encodeNode(e.Inner())
		if err != nil {
			return nil, err
		}
		n := &node{
			Kind:    KindNormalizing,
			Inner:   inner,
			Offsets: floatSlice(e.Normalizer().Offsets()),
			Scales:  floatSlice(e.Normalizer().Scales()),
		}
		if mv := e.Normalizer().MissingValue(); !math.IsNaN(mv) {
			f := floatValue(mv)
			n.MissingValue = &f
		}
		return n, nil

	case *PCAProjecting:
		inner, err := encodeNode(e.Inner())
		if err != nil {
			return nil, err
		}
		proj := e.Projector()
		return &node{
			Kind:        KindPCAProjecting,
			Inner:       inner,
			Mean:        floatSlice(proj.Mean()),
			Components:  floatSlice(proj.Components()),
			Eigenvalues: floatSlice(proj.Eigenvalues()),
			Whiten:      proj.Whiten(),
		}, nil

	default:
		return nil, fmt.Errorf("feature: cannot serialize extractor type %T", ex)
	}
}

func decodeNode(n *node) (Extractor, error) {
	decode, ok := kindRegistry[n.Kind]
	if !ok {
		return nil, &ErrUnknownKind{Kind: n.Kind}
	}
	return decode(n)
}

func decodeMeasurementList(n *node) (Extractor, error) {
	return NewMeasurementList(n.Measurements)
}

func decodeNormalizing(n *node) (Extractor, error) {
	if n.Inner == nil {
		return nil, fmt.Errorf("feature: normalizing node without inner node")
	}
	inner, err := decodeNode(n.Inner)
	if err != nil {
		return nil, err
	}

	missing := math.NaN()
	if n.MissingValue != nil {
		missing = float64(*n.MissingValue)
	}
	nm, err := normalize.New([]float64(n.Offsets), []float64(n.Scales), missing)
	if err != nil {
		return nil, err
	}
	return NewNormalizing(inner, nm)
}

func decodePCAProjecting(n *node) (Extractor, error) {
	if n.Inner == nil {
		return nil, fmt.Errorf("feature: pcaProjecting node without inner node")
	}
	inner, err := decodeNode(n.Inner)
	if err != nil {
		return nil, err
	}

	proj, err := pca.NewProjector([]float64(n.Mean), []float64(n.Components), []float64(n.Eigenvalues), n.Whiten)
	if err != nil {
		return nil, err
	}
	return NewPCAProjecting(inner, proj)
}

// floatSlice marshals []float64 with exact round-tripping of non-finite
// values. Fitted scales may legally be ±Inf (degenerate columns) and JSON has
// no literal for them, so non-finite elements are encoded as the strings
// "NaN", "Inf" and "-Inf". Finite values use the shortest representation
// that parses back bit-for-bit.
type floatSlice []float64

func (s floatSlice) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, len(s)*8+2)
	out = append(out, '[')
	for i, v := range s {
		if i > 0 {
			out = append(out, ',')
		}
		out = appendFloat(out, v)
	}
	return append(out, ']'), nil
}

func (s *floatSlice) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	vals := make([]float64, len(raw))
	for i, e := range raw {
		v, err := parseFloatElem(e)
		if err != nil {
			return err
		}
		vals[i] = v
	}
	*s = vals
	return nil
}

// floatValue is a single float with the same non-finite encoding as
// floatSlice.
type floatValue float64

func (f floatValue) MarshalJSON() ([]byte, error) {
	return appendFloat(nil, float64(f)), nil
}

func (f *floatValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := parseFloatElem(raw)
	if err != nil {
		return err
	}
	*f = floatValue(v)
	return nil
}

func appendFloat(dst []byte, v float64) []byte {
	switch {
	case math.IsNaN(v):
		return append(dst, `"NaN"`...)
	case math.IsInf(v, 1):
		return append(dst, `"Inf"`...)
	case math.IsInf(v, -1):
		return append(dst, `"-Inf"`...)
	default:
		return strconv.AppendFloat(dst, v, 'g', -1, 64)
	}
}

func parseFloatElem(e any) (float64, error) {
	switch v := e.(type) {
	case float64:
		return v, nil
	case string:
		switch v {
		case "NaN":
			return math.NaN(), nil
		case "Inf":
			return math.Inf(1), nil
		case "-Inf":
			return math.Inf(-1), nil
		}
		return 0, fmt.Errorf("feature: invalid float literal %q", v)
	default:
		return 0, fmt.Errorf("feature: invalid float element of type %T", e)
	}
}
