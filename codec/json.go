package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Model documents are plain structs of strings, numbers and nested nodes, so
// JSON covers them fully. Non-finite floats are pre-encoded by the document
// layer before they reach the codec.
//
// Use JSON when the lowest-dependency option matters; otherwise GoJSON
// produces identical bytes faster.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }
